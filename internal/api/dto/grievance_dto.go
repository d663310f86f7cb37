package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// SubmitGrievanceRequest payload. Profile fields are optional and
// merged into the member record when present.
type SubmitGrievanceRequest struct {
	Category       string  `json:"category"`
	SubCategory    string  `json:"sub_category"`
	Description    string  `json:"description"`
	LocationDetail string  `json:"location_detail"`
	ImageURL       string  `json:"image_url"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	RegNumber      *string `json:"reg_number"`
	Email          *string `json:"email"`
}

// UpdateStatusRequest payload for the admin surface. Status uses the
// admin vocabulary ("In-Progress", "Completed", ...).
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// GrievanceResponse renders one ticket. Status uses the admin
// vocabulary on the way out.
type GrievanceResponse struct {
	ID             string    `json:"id"`
	TicketNumber   string    `json:"ticket_number"`
	Category       string    `json:"category"`
	SubCategory    string    `json:"sub_category"`
	Description    string    `json:"description"`
	LocationDetail *string   `json:"location_detail,omitempty"`
	ImageURL       *string   `json:"image_url,omitempty"`
	Status         string    `json:"status"`
	SubmittedAt    time.Time `json:"submitted_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GrievanceStats carries dashboard counts.
type GrievanceStats struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Rejected   int64 `json:"rejected"`
	Total      int64 `json:"total"`
}

// AdminGrievanceListResponse combines the stats with the page of rows.
type AdminGrievanceListResponse struct {
	Stats GrievanceStats      `json:"stats"`
	Items []GrievanceResponse `json:"items"`
}

// UploadResponse returns the stored image URL.
type UploadResponse struct {
	URL string `json:"url"`
}

// FromGrievance maps the domain aggregate to its response shape.
func FromGrievance(g *domain.Grievance) GrievanceResponse {
	return GrievanceResponse{
		ID:             g.ID,
		TicketNumber:   g.TicketNumber,
		Category:       g.Category,
		SubCategory:    g.SubCategory,
		Description:    g.Description,
		LocationDetail: g.LocationDetail,
		ImageURL:       g.ImageURL,
		Status:         domain.AdminToken(g.Status),
		SubmittedAt:    g.SubmittedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}
