package domain

import "time"

// Grievance is the complaint ticket aggregate. TicketNumber is the
// human-facing identifier; it is unique and immutable once assigned.
type Grievance struct {
	ID             string
	TicketNumber   string
	MemberID       string
	Category       string
	SubCategory    string
	Description    string
	LocationDetail *string
	ImageURL       *string
	Status         GrievanceStatus
	SubmittedAt    time.Time
	UpdatedAt      time.Time
}

// NotificationChannel identifies an outbound notification surface.
type NotificationChannel string

const (
	ChannelTelegram NotificationChannel = "TELEGRAM"
	ChannelWhatsApp NotificationChannel = "WHATSAPP"
)

// MessageRef records an outbound notification message tied to a
// ticket. The Telegram channel edits its prior message in place when
// the status changes, so the chat and message ids must survive the
// original send.
type MessageRef struct {
	ID           string
	TicketNumber string
	Channel      NotificationChannel
	ChatID       int64
	MessageID    int64
	CreatedAt    time.Time
}
