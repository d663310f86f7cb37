package domain

import "testing"

func TestParseBotStatus(t *testing.T) {
	cases := []struct {
		token  string
		want   GrievanceStatus
		wantOK bool
	}{
		{"pending", StatusPending, true},
		{"in-progress", StatusInProgress, true},
		{"completed", StatusCompleted, true},
		{"rejected", StatusRejected, true},
		{"In-Progress", StatusInProgress, true},
		{"  COMPLETED  ", StatusCompleted, true},
		{"in_progress", "", false},
		{"done", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseBotStatus(tc.token)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseBotStatus(%q) = (%q, %v), want (%q, %v)", tc.token, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseAdminStatus(t *testing.T) {
	cases := []struct {
		token  string
		want   GrievanceStatus
		wantOK bool
	}{
		{"In-Progress", StatusInProgress, true},
		{"in-progress", StatusInProgress, true},
		{"Pending", StatusPending, true},
		{"Completed", StatusCompleted, true},
		{"Rejected", StatusRejected, true},
		{"Closed", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseAdminStatus(tc.token)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseAdminStatus(%q) = (%q, %v), want (%q, %v)", tc.token, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestVocabularyRoundTrips(t *testing.T) {
	for _, status := range AllStatuses {
		if got, ok := ParseBotStatus(BotToken(status)); !ok || got != status {
			t.Errorf("bot round trip for %q failed: got (%q, %v)", status, got, ok)
		}
		if got, ok := ParseAdminStatus(AdminToken(status)); !ok || got != status {
			t.Errorf("admin round trip for %q failed: got (%q, %v)", status, got, ok)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range AllStatuses {
		if !IsValidStatus(status) {
			t.Errorf("IsValidStatus(%q) = false", status)
		}
	}
	for _, invalid := range []GrievanceStatus{"", "OPEN", "pending"} {
		if IsValidStatus(invalid) {
			t.Errorf("IsValidStatus(%q) = true", invalid)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	cases := map[GrievanceStatus]bool{
		StatusPending:    false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusRejected:   true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%q.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}
