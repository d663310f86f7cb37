package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestCooldownAllowsFirstSubmission(t *testing.T) {
	repo := newFakeGrievanceRepo()
	gate := NewCooldownGate(repo, nil, 24*time.Hour, zap.NewNop())

	decision, err := gate.CheckAndReserve(context.Background(), "member-1", time.Now())
	if err != nil {
		t.Fatalf("CheckAndReserve() error = %v", err)
	}
	if !decision.Allowed {
		t.Error("first submission should be allowed")
	}
}

func TestCooldownDeniesWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		elapsed   time.Duration
		wantAllow bool
		wantRetry time.Duration
	}{
		{"one minute before expiry", 24*time.Hour - time.Minute, false, time.Minute},
		{"one hour in", time.Hour, false, 23 * time.Hour},
		{"just submitted", 0, false, 24 * time.Hour},
		{"exactly one window", 24 * time.Hour, true, 0},
		{"well past the window", 48 * time.Hour, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeGrievanceRepo()
			repo.latest = &domain.Grievance{
				TicketNumber: "SG25-1000",
				MemberID:     "member-1",
				SubmittedAt:  now.Add(-tc.elapsed),
			}
			gate := NewCooldownGate(repo, nil, 24*time.Hour, zap.NewNop())

			decision, err := gate.CheckAndReserve(context.Background(), "member-1", now)
			if err != nil {
				t.Fatalf("CheckAndReserve() error = %v", err)
			}
			if decision.Allowed != tc.wantAllow {
				t.Fatalf("Allowed = %v, want %v", decision.Allowed, tc.wantAllow)
			}
			if !tc.wantAllow && decision.RetryAfter != tc.wantRetry {
				t.Errorf("RetryAfter = %v, want %v", decision.RetryAfter, tc.wantRetry)
			}
		})
	}
}

func TestCooldownWindowIsRolling(t *testing.T) {
	// The window anchors on the latest submission, not on a calendar day.
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	repo := newFakeGrievanceRepo()
	repo.latest = &domain.Grievance{SubmittedAt: now.Add(-10 * time.Hour)}
	gate := NewCooldownGate(repo, nil, 24*time.Hour, zap.NewNop())

	decision, err := gate.CheckAndReserve(context.Background(), "member-1", now)
	if err != nil {
		t.Fatalf("CheckAndReserve() error = %v", err)
	}
	if decision.Allowed {
		t.Fatal("submission 10h after the previous one should be denied despite the date change")
	}
	if decision.RetryAfter != 14*time.Hour {
		t.Errorf("RetryAfter = %v, want 14h", decision.RetryAfter)
	}
}
