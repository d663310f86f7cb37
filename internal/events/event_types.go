package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventGrievanceCreated       EventType = "grievance_created"
	EventGrievanceStatusChanged EventType = "grievance_status_changed"
)

// Actor encapsulates who triggered an event. Bot-origin actions carry
// the chat id they came from so replies can target the right chat.
type Actor struct {
	Type     domain.SubjectType `json:"type"`
	MemberID *string            `json:"member_id,omitempty"`
	ChatID   *int64             `json:"chat_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketNumber string      `json:"ticket_number"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// GrievanceCreatedPayload carries everything the notification channels
// need to render a creation message without re-reading the store.
type GrievanceCreatedPayload struct {
	MemberID    string                 `json:"member_id"`
	MemberName  string                 `json:"member_name"`
	MemberPhone string                 `json:"member_phone"`
	RegNumber   string                 `json:"reg_number,omitempty"`
	Category    string                 `json:"category"`
	SubCategory string                 `json:"sub_category"`
	Location    string                 `json:"location,omitempty"`
	Description string                 `json:"description"`
	ImageURL    string                 `json:"image_url,omitempty"`
	Status      domain.GrievanceStatus `json:"status"`
}

// GrievanceStatusChangedPayload carries the transition endpoints.
type GrievanceStatusChangedPayload struct {
	OldStatus domain.GrievanceStatus `json:"old_status"`
	NewStatus domain.GrievanceStatus `json:"new_status"`
}

// MemberActor builds an actor for a member-origin action.
func MemberActor(memberID string) Actor {
	return Actor{Type: domain.SubjectTypeMember, MemberID: &memberID}
}

// AdminActor builds an actor for an admin-origin action.
func AdminActor() Actor {
	return Actor{Type: domain.SubjectTypeAdmin}
}

// BotActor builds an actor for a chat-bot-origin action.
func BotActor(chatID int64) Actor {
	return Actor{Type: domain.SubjectTypeBot, ChatID: &chatID}
}
