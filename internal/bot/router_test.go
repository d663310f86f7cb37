package bot

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

type fakeLifecycle struct {
	grievances map[string]*domain.Grievance
	transitions []struct {
		Ticket string
		Target domain.GrievanceStatus
	}
}

func newFakeLifecycle(tickets ...*domain.Grievance) *fakeLifecycle {
	lc := &fakeLifecycle{grievances: map[string]*domain.Grievance{}}
	for _, ticket := range tickets {
		lc.grievances[ticket.TicketNumber] = ticket
	}
	return lc
}

func (f *fakeLifecycle) Transition(ctx context.Context, ticketNumber string, target domain.GrievanceStatus, actor events.Actor) (*domain.Grievance, error) {
	grievance, ok := f.grievances[ticketNumber]
	if !ok {
		return nil, apperrors.NewNotFound("grievance", nil)
	}
	f.transitions = append(f.transitions, struct {
		Ticket string
		Target domain.GrievanceStatus
	}{ticketNumber, target})
	grievance.Status = target
	copied := *grievance
	return &copied, nil
}

func (f *fakeLifecycle) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Grievance, error) {
	grievance, ok := f.grievances[ticketNumber]
	if !ok {
		return nil, apperrors.NewNotFound("grievance", nil)
	}
	copied := *grievance
	return &copied, nil
}

type fakeChannel struct {
	sent    []string
	answers []string
}

func (f *fakeChannel) SendMessage(ctx context.Context, chatID, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	f.sent = append(f.sent, text)
	return &telegram.Message{MessageID: int64(len(f.sent))}, nil
}

func (f *fakeChannel) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	f.answers = append(f.answers, callbackID)
	return nil
}

func newTestRouter(lifecycle Lifecycle, channel ChannelClient) *Router {
	return NewRouter(lifecycle, channel, nil, 0, zap.NewNop())
}

func callbackUpdate(id, data string) telegram.Update {
	return telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:      id,
		Data:    data,
		Message: &telegram.Message{Chat: telegram.Chat{ID: 42}},
	}}
}

func commandUpdate(text string) telegram.Update {
	return telegram.Update{Message: &telegram.Message{
		Text: text,
		Chat: telegram.Chat{ID: 42},
	}}
}

func TestRouteCallbackApplies(t *testing.T) {
	lifecycle := newFakeLifecycle(&domain.Grievance{TicketNumber: "SG25-1234", Status: domain.StatusInProgress})
	channel := &fakeChannel{}
	router := newTestRouter(lifecycle, channel)

	result := router.Route(context.Background(), callbackUpdate("cb-1", "status:completed:SG25-1234"))
	if result.Kind != ResultApplied {
		t.Fatalf("Kind = %q, reason %q", result.Kind, result.Reason)
	}
	if result.Status != domain.StatusCompleted {
		t.Errorf("Status = %q", result.Status)
	}
	if len(channel.answers) != 1 {
		t.Errorf("callback answered %d times, want 1", len(channel.answers))
	}
	if len(lifecycle.transitions) != 1 {
		t.Errorf("applied %d transitions, want 1", len(lifecycle.transitions))
	}
}

func TestRouteCallbackUnknownTicket(t *testing.T) {
	channel := &fakeChannel{}
	router := newTestRouter(newFakeLifecycle(), channel)

	result := router.Route(context.Background(), callbackUpdate("cb-1", "status:completed:SG25-9999"))
	if result.Kind != ResultErrored {
		t.Fatalf("Kind = %q", result.Kind)
	}
	// The query must still be answered and the chat told what happened.
	if len(channel.answers) != 1 {
		t.Errorf("callback answered %d times, want 1", len(channel.answers))
	}
	if len(channel.sent) != 1 {
		t.Errorf("sent %d replies, want 1", len(channel.sent))
	}
}

func TestRouteCallbackMalformedData(t *testing.T) {
	channel := &fakeChannel{}
	router := newTestRouter(newFakeLifecycle(), channel)

	for _, data := range []string{"", "garbage", "status:unknown:SG25-1", "other:completed:SG25-1"} {
		result := router.Route(context.Background(), callbackUpdate("cb-x", data))
		if result.Kind != ResultErrored {
			t.Errorf("Route(%q).Kind = %q, want %q", data, result.Kind, ResultErrored)
		}
	}
	if len(channel.answers) != 4 {
		t.Errorf("every callback must be answered; got %d of 4", len(channel.answers))
	}
}

func TestRouteStatusCommandShowsCurrent(t *testing.T) {
	lifecycle := newFakeLifecycle(&domain.Grievance{TicketNumber: "SG25-1234", Status: domain.StatusPending})
	channel := &fakeChannel{}
	router := newTestRouter(lifecycle, channel)

	result := router.Route(context.Background(), commandUpdate("/status sg25-1234"))
	if result.Kind != ResultShowStatus {
		t.Fatalf("Kind = %q, reason %q", result.Kind, result.Reason)
	}
	if result.TicketNumber != "SG25-1234" {
		t.Errorf("TicketNumber = %q", result.TicketNumber)
	}
	if len(lifecycle.transitions) != 0 {
		t.Error("bare /status must not transition")
	}
	if len(channel.sent) != 1 {
		t.Errorf("sent %d replies, want 1", len(channel.sent))
	}
}

func TestRouteStatusCommandWithTarget(t *testing.T) {
	lifecycle := newFakeLifecycle(&domain.Grievance{TicketNumber: "SG25-1234", Status: domain.StatusPending})
	router := newTestRouter(lifecycle, &fakeChannel{})

	result := router.Route(context.Background(), commandUpdate("/status SG25-1234 completed"))
	if result.Kind != ResultApplied {
		t.Fatalf("Kind = %q, reason %q", result.Kind, result.Reason)
	}
	if result.Status != domain.StatusCompleted {
		t.Errorf("Status = %q", result.Status)
	}
}

func TestRouteStatusCommandBadInput(t *testing.T) {
	lifecycle := newFakeLifecycle(&domain.Grievance{TicketNumber: "SG25-1234", Status: domain.StatusPending})
	router := newTestRouter(lifecycle, &fakeChannel{})

	cases := []string{
		"/status",
		"/status SG25-1234 archived",
		"/status SG25-9999",
	}
	for _, text := range cases {
		result := router.Route(context.Background(), commandUpdate(text))
		if result.Kind != ResultErrored {
			t.Errorf("Route(%q).Kind = %q, want %q", text, result.Kind, ResultErrored)
		}
	}
	if len(lifecycle.transitions) != 0 {
		t.Error("bad input must not transition")
	}
}

func TestRouteIgnoresUnrelatedUpdates(t *testing.T) {
	router := newTestRouter(newFakeLifecycle(), &fakeChannel{})

	for _, update := range []telegram.Update{
		{},
		commandUpdate("hello there"),
		commandUpdate("/start"),
	} {
		if result := router.Route(context.Background(), update); result.Kind != ResultIgnored {
			t.Errorf("Kind = %q, want %q", result.Kind, ResultIgnored)
		}
	}
}
