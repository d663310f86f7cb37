package handlers

import (
	"crypto/subtle"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/bot"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
)

// WebhookHandler receives inbound chat-bot updates. The channel retries
// non-200 responses indefinitely, so every outcome, including payloads
// this service cannot parse, is answered 200; the routing result is
// logged instead.
type WebhookHandler struct {
	router *bot.Router
	secret string
	logger *zap.Logger
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(router *bot.Router, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{router: router, secret: secret, logger: logger}
}

// Inbound POST /notifications/inbound.
func (h *WebhookHandler) Inbound(c *fiber.Ctx) error {
	if h.secret != "" {
		provided := c.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			h.logger.Warn("webhook secret mismatch")
			return c.SendStatus(fiber.StatusOK)
		}
	}

	var update telegram.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		h.logger.Warn("unparseable webhook payload", zap.Error(err))
		return c.SendStatus(fiber.StatusOK)
	}

	result := h.router.Route(c.UserContext(), update)
	switch result.Kind {
	case bot.ResultIgnored:
		// nothing to log at info level
	case bot.ResultErrored:
		h.logger.Warn("inbound update not applied",
			zap.String("ticket_number", result.TicketNumber),
			zap.String("reason", result.Reason))
	default:
		h.logger.Info("inbound update handled",
			zap.String("kind", string(result.Kind)),
			zap.String("ticket_number", result.TicketNumber),
			zap.String("status", string(result.Status)))
	}
	return c.SendStatus(fiber.StatusOK)
}
