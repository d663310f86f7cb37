package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
	"github.com/spec-kit/grievance-service/internal/observability"
)

type fakeTelegramChannel struct {
	sent   []string
	photos []string
	edits  []string
}

func (f *fakeTelegramChannel) Enabled() bool       { return true }
func (f *fakeTelegramChannel) AdminChatID() string { return "99" }

func (f *fakeTelegramChannel) SendMessage(ctx context.Context, chatID, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	f.sent = append(f.sent, text)
	return &telegram.Message{MessageID: int64(len(f.sent)), Chat: telegram.Chat{ID: 99}}, nil
}

func (f *fakeTelegramChannel) SendPhoto(ctx context.Context, chatID, photoURL, caption string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	f.photos = append(f.photos, caption)
	return &telegram.Message{MessageID: int64(len(f.photos)), Chat: telegram.Chat{ID: 99}}, nil
}

func (f *fakeTelegramChannel) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTelegramChannel) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string, keyboard *telegram.InlineKeyboardMarkup) error {
	f.edits = append(f.edits, caption)
	return nil
}

type fakeMessageRefRepo struct {
	refs []domain.MessageRef
}

func (f *fakeMessageRefRepo) Insert(ctx context.Context, ref *domain.MessageRef) error {
	ref.ID = fmt.Sprintf("ref-%d", len(f.refs)+1)
	ref.CreatedAt = time.Now()
	f.refs = append(f.refs, *ref)
	return nil
}

func (f *fakeMessageRefRepo) ListByTicket(ctx context.Context, ticketNumber string, channel domain.NotificationChannel) ([]domain.MessageRef, error) {
	var out []domain.MessageRef
	for _, ref := range f.refs {
		if ref.TicketNumber == ticketNumber && ref.Channel == channel {
			out = append(out, ref)
		}
	}
	return out, nil
}

func newTestNotificationService(grievances *fakeGrievanceRepo, members *fakeMemberRepo, channel *fakeTelegramChannel, refs *fakeMessageRefRepo) *NotificationService {
	return NewNotificationService(NotificationDependencies{
		Telegram:       channel,
		MessageRefRepo: refs,
		GrievanceRepo:  grievances,
		MemberRepo:     members,
		Metrics:        observability.NewMetrics(),
		SendTimeout:    time.Second,
		Logger:         zap.NewNop(),
	})
}

func TestStatusChangeFallbackRecordsRefForLaterEdits(t *testing.T) {
	grievances := newFakeGrievanceRepo()
	seedGrievance(grievances, "SG25-1234", domain.StatusInProgress)
	channel := &fakeTelegramChannel{}
	refs := &fakeMessageRefRepo{}
	svc := newTestNotificationService(grievances, newFakeMemberRepo(testMember()), channel, refs)

	// No prior ref: the first status change posts a fresh message and
	// must record where it landed.
	svc.notifyTelegramStatusChanged("SG25-1234", domain.StatusCompleted)
	if len(channel.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(channel.sent))
	}
	if len(refs.refs) != 1 {
		t.Fatalf("recorded %d refs, want 1", len(refs.refs))
	}

	// The next change edits that message instead of posting again.
	svc.notifyTelegramStatusChanged("SG25-1234", domain.StatusRejected)
	if len(channel.sent) != 1 {
		t.Errorf("sent %d messages, want still 1", len(channel.sent))
	}
	if len(channel.edits) != 1 {
		t.Errorf("edited %d messages, want 1", len(channel.edits))
	}
}

func TestStatusChangeEditsExistingMessage(t *testing.T) {
	grievances := newFakeGrievanceRepo()
	seedGrievance(grievances, "SG25-1234", domain.StatusInProgress)
	channel := &fakeTelegramChannel{}
	refs := &fakeMessageRefRepo{}
	_ = refs.Insert(context.Background(), &domain.MessageRef{
		TicketNumber: "SG25-1234",
		Channel:      domain.ChannelTelegram,
		ChatID:       99,
		MessageID:    7,
	})
	svc := newTestNotificationService(grievances, newFakeMemberRepo(testMember()), channel, refs)

	svc.notifyTelegramStatusChanged("SG25-1234", domain.StatusCompleted)
	if len(channel.sent) != 0 {
		t.Errorf("sent %d fresh messages, want 0", len(channel.sent))
	}
	if len(channel.edits) != 1 {
		t.Fatalf("edited %d messages, want 1", len(channel.edits))
	}
	if !strings.Contains(channel.edits[0], "Status updated to: <b>Completed</b>") {
		t.Errorf("edited text missing status line:\n%s", channel.edits[0])
	}
}

func TestBuildCreatedCaption(t *testing.T) {
	payload := events.GrievanceCreatedPayload{
		MemberName:  "Asha Rao",
		MemberPhone: "+911234567890",
		RegNumber:   "R-42",
		Category:    "Sanitation",
		SubCategory: "Garbage",
		Location:    "Block C",
		Description: "Overflowing bin",
		ImageURL:    "https://example.test/img.jpg",
		Status:      domain.StatusInProgress,
	}
	caption := BuildCreatedCaption("SG25-1234", payload)

	wantLines := []string{
		"<b>Ticket Number:</b> <b>SG25-1234</b>",
		"<b>Name:</b> Asha Rao",
		"<b>Contact:</b> +911234567890",
		"<b>Reg No:</b> R-42",
		"<b>Category:</b> Sanitation / Garbage",
		"<b>Location:</b> Block C",
		"<b>Description:</b> Overflowing bin",
		"<b>Image:</b> https://example.test/img.jpg",
	}
	lines := strings.Split(caption, "\n")
	if len(lines) != len(wantLines) {
		t.Fatalf("caption has %d lines, want %d:\n%s", len(lines), len(wantLines), caption)
	}
	for i, want := range wantLines {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestBuildCreatedCaptionDefaults(t *testing.T) {
	caption := BuildCreatedCaption("SG25-1234", events.GrievanceCreatedPayload{
		MemberName:  "Asha",
		MemberPhone: "+911234567890",
		Category:    "Water",
		SubCategory: "Leak",
		Description: "Pipe burst",
	})
	if !strings.Contains(caption, "<b>Location:</b> -") {
		t.Error("empty location should render as -")
	}
	if !strings.Contains(caption, "<b>Image:</b> N/A") {
		t.Error("empty image should render as N/A")
	}
}

func TestBuildCreatedCaptionEscapesUserText(t *testing.T) {
	caption := BuildCreatedCaption("SG25-1234", events.GrievanceCreatedPayload{
		MemberName:  "A <b> & co",
		MemberPhone: "+911234567890",
		Category:    "Misc",
		SubCategory: "Other",
		Description: "<script>alert(1)</script>",
	})
	if strings.Contains(caption, "<script>") {
		t.Error("description markup must be escaped")
	}
	if !strings.Contains(caption, "A &lt;b&gt; &amp; co") {
		t.Errorf("name not escaped:\n%s", caption)
	}
}
