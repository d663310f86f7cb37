package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/bot"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// TelegramChannel is the slice of the Telegram client the dispatcher uses.
type TelegramChannel interface {
	Enabled() bool
	AdminChatID() string
	SendMessage(ctx context.Context, chatID, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	SendPhoto(ctx context.Context, chatID, photoURL, caption string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	EditMessageCaption(ctx context.Context, chatID int64, messageID int64, caption string, keyboard *telegram.InlineKeyboardMarkup) error
}

// WhatsAppChannel is the slice of the WhatsApp client the dispatcher uses.
type WhatsAppChannel interface {
	Enabled() bool
	SendTemplate(ctx context.Context, to, templateName string, params []string) error
}

// NotificationService fans grievance events out to the configured
// channels. Every channel send is failure-isolated: an error is
// logged and counted, never propagated, and never blocks delivery to
// the other channels.
type NotificationService struct {
	dispatcher      events.Dispatcher
	telegram        TelegramChannel
	whatsapp        WhatsAppChannel
	refs            repository.MessageRefRepository
	grievances      repository.GrievanceRepository
	members         repository.MemberRepository
	metrics         *observability.Metrics
	sendTimeout     time.Duration
	confirmTemplate string
	logger          *zap.Logger
}

// NotificationDependencies bundles collaborators for the dispatcher.
type NotificationDependencies struct {
	Dispatcher      events.Dispatcher
	Telegram        TelegramChannel
	WhatsApp        WhatsAppChannel
	MessageRefRepo  repository.MessageRefRepository
	GrievanceRepo   repository.GrievanceRepository
	MemberRepo      repository.MemberRepository
	Metrics         *observability.Metrics
	SendTimeout     time.Duration
	ConfirmTemplate string
	Logger          *zap.Logger
}

// NewNotificationService creates the dispatcher.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		dispatcher:      deps.Dispatcher,
		telegram:        deps.Telegram,
		whatsapp:        deps.WhatsApp,
		refs:            deps.MessageRefRepo,
		grievances:      deps.GrievanceRepo,
		members:         deps.MemberRepo,
		metrics:         deps.Metrics,
		sendTimeout:     deps.SendTimeout,
		confirmTemplate: deps.ConfirmTemplate,
		logger:          deps.Logger,
	}
}

// RegisterHandlers subscribes to grievance events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventGrievanceCreated, n.handleCreated)
	n.dispatcher.Subscribe(events.EventGrievanceStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.GrievanceCreatedPayload)
	if !ok {
		return nil
	}
	n.notifyTelegramCreated(event.TicketNumber, payload)
	n.notifyWhatsAppCreated(event.TicketNumber, payload)
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.GrievanceStatusChangedPayload)
	if !ok {
		return nil
	}
	n.notifyTelegramStatusChanged(event.TicketNumber, payload.NewStatus)
	return nil
}

func (n *NotificationService) notifyTelegramCreated(ticketNumber string, payload events.GrievanceCreatedPayload) {
	if n.telegram == nil || !n.telegram.Enabled() {
		return
	}
	// Notification delivery is decoupled from the triggering request:
	// the grievance write already committed, and a slow channel must
	// not hold the handler open.
	ctx, cancel := n.sendContext()
	defer cancel()

	caption := BuildCreatedCaption(ticketNumber, payload)
	keyboard := bot.StatusKeyboard(payload.Status, ticketNumber)
	chatID := n.telegram.AdminChatID()

	var msg *telegram.Message
	var err error
	if payload.ImageURL != "" {
		msg, err = n.telegram.SendPhoto(ctx, chatID, payload.ImageURL, caption, keyboard)
	} else {
		msg, err = n.telegram.SendMessage(ctx, chatID, caption, keyboard)
	}
	if err != nil {
		n.channelFailure("telegram", ticketNumber, err)
		return
	}

	n.recordMessageRef(ctx, ticketNumber, msg)
}

func (n *NotificationService) recordMessageRef(ctx context.Context, ticketNumber string, msg *telegram.Message) {
	ref := &domain.MessageRef{
		TicketNumber: ticketNumber,
		Channel:      domain.ChannelTelegram,
		ChatID:       msg.Chat.ID,
		MessageID:    msg.MessageID,
	}
	if err := n.refs.Insert(ctx, ref); err != nil {
		n.logger.Warn("message ref persist failed",
			zap.String("ticket_number", ticketNumber), zap.Error(err))
	}
}

func (n *NotificationService) notifyWhatsAppCreated(ticketNumber string, payload events.GrievanceCreatedPayload) {
	if n.whatsapp == nil || !n.whatsapp.Enabled() {
		return
	}
	ctx, cancel := n.sendContext()
	defer cancel()

	to := strings.TrimPrefix(payload.MemberPhone, "+")
	if err := n.whatsapp.SendTemplate(ctx, to, n.confirmTemplate, []string{ticketNumber}); err != nil {
		n.channelFailure("whatsapp", ticketNumber, err)
	}
}

func (n *NotificationService) notifyTelegramStatusChanged(ticketNumber string, newStatus domain.GrievanceStatus) {
	if n.telegram == nil || !n.telegram.Enabled() {
		return
	}
	ctx, cancel := n.sendContext()
	defer cancel()

	refs, err := n.refs.ListByTicket(ctx, ticketNumber, domain.ChannelTelegram)
	if err != nil {
		n.channelFailure("telegram", ticketNumber, err)
		return
	}

	text, hasImage := n.rebuildCaption(ctx, ticketNumber, newStatus)
	keyboard := bot.StatusKeyboard(newStatus, ticketNumber)

	// No prior message to edit: post one and record it so the next
	// status change edits instead of posting again.
	if len(refs) == 0 {
		msg, err := n.telegram.SendMessage(ctx, n.telegram.AdminChatID(), text, keyboard)
		if err != nil {
			n.channelFailure("telegram", ticketNumber, err)
			return
		}
		n.recordMessageRef(ctx, ticketNumber, msg)
		return
	}

	// Edit the original message in place rather than posting again.
	for _, ref := range refs {
		if hasImage {
			err = n.telegram.EditMessageCaption(ctx, ref.ChatID, ref.MessageID, text, keyboard)
		} else {
			err = n.telegram.EditMessageText(ctx, ref.ChatID, ref.MessageID, text, keyboard)
		}
		if err != nil {
			n.channelFailure("telegram", ticketNumber, err)
		}
	}
}

// rebuildCaption reconstructs the full creation caption from the store
// and appends the status line. Falls back to a short status line when
// the record cannot be re-read.
func (n *NotificationService) rebuildCaption(ctx context.Context, ticketNumber string, status domain.GrievanceStatus) (string, bool) {
	statusLine := fmt.Sprintf("✅ Status updated to: <b>%s</b>", domain.StatusLabel(status))

	grievance, err := n.grievances.GetByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return fmt.Sprintf("Ticket <b>%s</b>\n\n%s", telegram.EscapeHTML(ticketNumber), statusLine), false
	}
	member, err := n.members.GetByID(ctx, grievance.MemberID)
	if err != nil {
		return fmt.Sprintf("Ticket <b>%s</b>\n\n%s", telegram.EscapeHTML(ticketNumber), statusLine), false
	}

	payload := events.GrievanceCreatedPayload{
		MemberName:  member.DisplayName(),
		MemberPhone: member.Phone,
		RegNumber:   stringOrEmpty(member.RegNumber),
		Category:    grievance.Category,
		SubCategory: grievance.SubCategory,
		Location:    stringOrEmpty(grievance.LocationDetail),
		Description: grievance.Description,
		ImageURL:    stringOrEmpty(grievance.ImageURL),
	}
	return BuildCreatedCaption(ticketNumber, payload) + "\n\n" + statusLine, payload.ImageURL != ""
}

// BuildCreatedCaption renders the structured notification body. The
// layout is stable and labeled so an operator can act on it without
// the dashboard, and so template/router parsing stays possible.
func BuildCreatedCaption(ticketNumber string, payload events.GrievanceCreatedPayload) string {
	location := payload.Location
	if location == "" {
		location = "-"
	}
	image := payload.ImageURL
	if image == "" {
		image = "N/A"
	}
	lines := []string{
		fmt.Sprintf("<b>Ticket Number:</b> <b>%s</b>", telegram.EscapeHTML(ticketNumber)),
		fmt.Sprintf("<b>Name:</b> %s", telegram.EscapeHTML(payload.MemberName)),
		fmt.Sprintf("<b>Contact:</b> %s", telegram.EscapeHTML(payload.MemberPhone)),
		fmt.Sprintf("<b>Reg No:</b> %s", telegram.EscapeHTML(payload.RegNumber)),
		fmt.Sprintf("<b>Category:</b> %s", telegram.EscapeHTML(payload.Category+" / "+payload.SubCategory)),
		fmt.Sprintf("<b>Location:</b> %s", telegram.EscapeHTML(location)),
		fmt.Sprintf("<b>Description:</b> %s", telegram.EscapeHTML(payload.Description)),
		fmt.Sprintf("<b>Image:</b> %s", telegram.EscapeHTML(image)),
	}
	return strings.Join(lines, "\n")
}

func (n *NotificationService) sendContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), n.sendTimeout)
}

func (n *NotificationService) channelFailure(channel, ticketNumber string, err error) {
	n.metrics.RecordNotificationFailure(channel)
	n.logger.Warn("notification send failed",
		zap.String("channel", channel),
		zap.String("ticket_number", ticketNumber),
		zap.Error(err))
}
