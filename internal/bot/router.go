package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
	"github.com/spec-kit/grievance-service/internal/ticketid"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// ResultKind classifies what the router did with an inbound payload.
type ResultKind string

const (
	ResultIgnored    ResultKind = "IGNORED"
	ResultShowStatus ResultKind = "SHOW_STATUS"
	ResultApplied    ResultKind = "APPLIED"
	ResultErrored    ResultKind = "ERRORED"
)

// Result reports the routing outcome. Errors never escape the router
// as faults; they are folded into Result and a best-effort chat reply.
type Result struct {
	Kind         ResultKind
	TicketNumber string
	Status       domain.GrievanceStatus
	Reason       string
}

// Lifecycle is the slice of the grievance service the router needs.
type Lifecycle interface {
	Transition(ctx context.Context, ticketNumber string, target domain.GrievanceStatus, actor events.Actor) (*domain.Grievance, error)
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Grievance, error)
}

// ChannelClient is the outbound surface the router replies through.
type ChannelClient interface {
	SendMessage(ctx context.Context, chatID, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// Router parses heterogeneous chat-bot payloads (button callbacks and
// slash commands), resolves them to a ticket and a requested
// transition, and applies idempotency/dedup before touching the
// lifecycle.
type Router struct {
	lifecycle Lifecycle
	channel   ChannelClient
	redis     *redis.Client
	dedupTTL  time.Duration
	logger    *zap.Logger
}

// NewRouter constructs the router. redisClient may be nil; the dedup
// cache is a noise-reduction measure, not a correctness requirement
// (duplicate transitions are idempotent by construction).
func NewRouter(lifecycle Lifecycle, channel ChannelClient, redisClient *redis.Client, dedupTTL time.Duration, logger *zap.Logger) *Router {
	return &Router{
		lifecycle: lifecycle,
		channel:   channel,
		redis:     redisClient,
		dedupTTL:  dedupTTL,
		logger:    logger,
	}
}

// Route dispatches one inbound update. It never returns an error: the
// channel protocol has no notion of a rejected callback beyond the
// delivery acknowledgement, so every failure becomes a chat reply.
func (r *Router) Route(ctx context.Context, update telegram.Update) Result {
	switch {
	case update.CallbackQuery != nil:
		return r.routeCallback(ctx, update.CallbackQuery)
	case update.Message != nil && strings.HasPrefix(strings.TrimSpace(update.Message.Text), "/status"):
		return r.routeStatusCommand(ctx, update.Message)
	default:
		return Result{Kind: ResultIgnored}
	}
}

func (r *Router) routeCallback(ctx context.Context, query *telegram.CallbackQuery) Result {
	ack := "" // filled in below; the query is always answered
	defer func() {
		if err := r.channel.AnswerCallbackQuery(ctx, query.ID, ack); err != nil {
			r.logger.Warn("answer callback query failed", zap.Error(err))
		}
	}()

	if r.seenCallback(ctx, query.ID) {
		ack = "Already processed"
		return Result{Kind: ResultIgnored, Reason: "duplicate callback"}
	}

	callback, ok := ParseStatusCallback(query.Data)
	if !ok {
		ack = "Unrecognized action"
		return Result{Kind: ResultErrored, Reason: "malformed callback data"}
	}

	var chatID int64
	if query.Message != nil {
		chatID = query.Message.Chat.ID
	}

	grievance, err := r.lifecycle.Transition(ctx, callback.TicketNumber, callback.Target, events.BotActor(chatID))
	if err != nil {
		ack = "Update failed"
		return r.errorResult(ctx, chatID, callback.TicketNumber, err)
	}

	ack = "Status updated to " + domain.StatusLabel(grievance.Status)
	return Result{Kind: ResultApplied, TicketNumber: grievance.TicketNumber, Status: grievance.Status}
}

func (r *Router) routeStatusCommand(ctx context.Context, msg *telegram.Message) Result {
	chatID := msg.Chat.ID
	fields := strings.Fields(msg.Text)

	if len(fields) < 2 {
		r.reply(ctx, chatID, "Usage: /status &lt;ticket_number&gt; [pending|in-progress|completed|rejected]", nil)
		return Result{Kind: ResultErrored, Reason: "missing ticket number"}
	}

	ticket := ticketid.Normalize(fields[1])

	// Bare "/status <ticket>" shows current state plus action controls.
	if len(fields) == 2 {
		grievance, err := r.lifecycle.GetByTicketNumber(ctx, ticket)
		if err != nil {
			return r.errorResult(ctx, chatID, ticket, err)
		}
		text := fmt.Sprintf("Ticket <b>%s</b> is currently <b>%s</b>.",
			telegram.EscapeHTML(grievance.TicketNumber), domain.StatusLabel(grievance.Status))
		r.reply(ctx, chatID, text, StatusKeyboard(grievance.Status, grievance.TicketNumber))
		return Result{Kind: ResultShowStatus, TicketNumber: grievance.TicketNumber, Status: grievance.Status}
	}

	target, ok := domain.ParseBotStatus(fields[2])
	if !ok {
		r.reply(ctx, chatID, fmt.Sprintf("Unknown status %q. Use pending, in-progress, completed or rejected.",
			telegram.EscapeHTML(fields[2])), nil)
		return Result{Kind: ResultErrored, Reason: "unknown status token"}
	}

	grievance, err := r.lifecycle.Transition(ctx, ticket, target, events.BotActor(chatID))
	if err != nil {
		return r.errorResult(ctx, chatID, ticket, err)
	}

	r.reply(ctx, chatID, fmt.Sprintf("✅ Ticket <b>%s</b> updated to <b>%s</b>.",
		telegram.EscapeHTML(grievance.TicketNumber), domain.StatusLabel(grievance.Status)), nil)
	return Result{Kind: ResultApplied, TicketNumber: grievance.TicketNumber, Status: grievance.Status}
}

func (r *Router) errorResult(ctx context.Context, chatID int64, ticket string, err error) Result {
	switch {
	case apperrors.HasCode(err, apperrors.CodeNotFound):
		r.reply(ctx, chatID, fmt.Sprintf("Ticket <b>%s</b> was not found.", telegram.EscapeHTML(ticket)), nil)
		return Result{Kind: ResultErrored, TicketNumber: ticket, Reason: "not found"}
	case apperrors.HasCode(err, apperrors.CodeAmbiguousTicket):
		r.reply(ctx, chatID, fmt.Sprintf("Ticket <b>%s</b> matches more than one record; refusing to update.",
			telegram.EscapeHTML(ticket)), nil)
		return Result{Kind: ResultErrored, TicketNumber: ticket, Reason: "ambiguous ticket"}
	case apperrors.HasCode(err, apperrors.CodeInvalidTransition):
		r.reply(ctx, chatID, fmt.Sprintf("Ticket <b>%s</b> is closed and cannot be updated.",
			telegram.EscapeHTML(ticket)), nil)
		return Result{Kind: ResultErrored, TicketNumber: ticket, Reason: "invalid transition"}
	default:
		r.logger.Error("callback routing failed", zap.String("ticket_number", ticket), zap.Error(err))
		r.reply(ctx, chatID, "Something went wrong while updating the ticket. Please try again.", nil)
		return Result{Kind: ResultErrored, TicketNumber: ticket, Reason: "internal error"}
	}
}

func (r *Router) reply(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) {
	if chatID == 0 {
		return
	}
	if _, err := r.channel.SendMessage(ctx, strconv.FormatInt(chatID, 10), text, keyboard); err != nil {
		r.logger.Warn("bot reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// seenCallback marks the callback id in Redis and reports whether it
// was already there. Callbacks are delivered at least once; the TTL
// only needs to outlive the channel's retry horizon.
func (r *Router) seenCallback(ctx context.Context, callbackID string) bool {
	if r.redis == nil || callbackID == "" {
		return false
	}
	ok, err := r.redis.SetNX(ctx, "bot:callback:"+callbackID, 1, r.dedupTTL).Result()
	if err != nil {
		r.logger.Warn("callback dedup check failed", zap.Error(err))
		return false
	}
	return !ok
}
