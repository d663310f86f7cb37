package bot

import (
	"fmt"
	"strings"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/notify/telegram"
	"github.com/spec-kit/grievance-service/internal/ticketid"
)

const callbackAction = "status"

// StatusCallback is one decoded button payload.
type StatusCallback struct {
	TicketNumber string
	Target       domain.GrievanceStatus
}

// EncodeStatusCallback renders the callback payload attached to an
// action button: "status:<target>:<ticket_number>". The outbound
// dispatcher and this package must agree on the format, so both sides
// live here.
func EncodeStatusCallback(target domain.GrievanceStatus, ticketNumber string) string {
	return fmt.Sprintf("%s:%s:%s", callbackAction, domain.BotToken(target), ticketNumber)
}

// ParseStatusCallback decodes a button payload. The ticket number is
// normalized to its canonical uppercase form.
func ParseStatusCallback(data string) (StatusCallback, bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) != 3 || parts[0] != callbackAction {
		return StatusCallback{}, false
	}
	target, ok := domain.ParseBotStatus(parts[1])
	if !ok {
		return StatusCallback{}, false
	}
	ticket := ticketid.Normalize(parts[2])
	if ticket == "" {
		return StatusCallback{}, false
	}
	return StatusCallback{TicketNumber: ticket, Target: target}, true
}

// StatusKeyboard builds the inline keyboard offering every status
// reachable from current. One button per row keeps the callback data
// within Telegram's 64-byte limit regardless of prefix length.
func StatusKeyboard(current domain.GrievanceStatus, ticketNumber string) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, status := range domain.AllStatuses {
		if status == current {
			continue
		}
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         "Mark as " + domain.StatusLabel(status),
			CallbackData: EncodeStatusCallback(status, ticketNumber),
		}})
	}
	if len(rows) == 0 {
		return nil
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
