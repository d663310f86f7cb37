package domain

import "strings"

// GrievanceStatus enumerates lifecycle states for grievances.
type GrievanceStatus string

const (
	StatusPending    GrievanceStatus = "PENDING"
	StatusInProgress GrievanceStatus = "IN_PROGRESS"
	StatusCompleted  GrievanceStatus = "COMPLETED"
	StatusRejected   GrievanceStatus = "REJECTED"
)

// AllStatuses lists every member of the closed status set.
var AllStatuses = []GrievanceStatus{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusRejected,
}

// IsValidStatus reports whether s belongs to the closed set.
func IsValidStatus(s GrievanceStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether s is one of the closed-out states.
// Whether those states refuse further transitions is a service-level
// policy switch, not a property of the status itself.
func (s GrievanceStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Each external channel speaks its own status vocabulary. The maps
// below are the single place where channel tokens and the canonical
// enum meet; parsing is case-insensitive, rendering uses the exact
// token the channel expects.

var botStatusTokens = map[string]GrievanceStatus{
	"pending":     StatusPending,
	"in-progress": StatusInProgress,
	"completed":   StatusCompleted,
	"rejected":    StatusRejected,
}

var botTokenByStatus = map[GrievanceStatus]string{
	StatusPending:    "pending",
	StatusInProgress: "in-progress",
	StatusCompleted:  "completed",
	StatusRejected:   "rejected",
}

var adminStatusTokens = map[string]GrievanceStatus{
	"pending":     StatusPending,
	"in-progress": StatusInProgress,
	"completed":   StatusCompleted,
	"rejected":    StatusRejected,
}

var adminTokenByStatus = map[GrievanceStatus]string{
	StatusPending:    "Pending",
	StatusInProgress: "In-Progress",
	StatusCompleted:  "Completed",
	StatusRejected:   "Rejected",
}

var statusLabels = map[GrievanceStatus]string{
	StatusPending:    "Pending",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusRejected:   "Rejected",
}

// ParseBotStatus resolves a chat-bot token ("in-progress", "completed", ...)
// to the canonical status.
func ParseBotStatus(token string) (GrievanceStatus, bool) {
	status, ok := botStatusTokens[strings.ToLower(strings.TrimSpace(token))]
	return status, ok
}

// BotToken renders the canonical status in the chat-bot vocabulary.
func BotToken(s GrievanceStatus) string {
	return botTokenByStatus[s]
}

// ParseAdminStatus resolves an admin UI token ("In-Progress", "Completed", ...)
// to the canonical status.
func ParseAdminStatus(token string) (GrievanceStatus, bool) {
	status, ok := adminStatusTokens[strings.ToLower(strings.TrimSpace(token))]
	return status, ok
}

// AdminToken renders the canonical status in the admin UI vocabulary.
func AdminToken(s GrievanceStatus) string {
	return adminTokenByStatus[s]
}

// StatusLabel returns the human-readable label used in notification text.
func StatusLabel(s GrievanceStatus) string {
	return statusLabels[s]
}
