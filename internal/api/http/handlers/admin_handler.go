package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// AdminHandler manages the dashboard endpoints.
type AdminHandler struct {
	auth       *service.AuthService
	grievances *service.GrievanceService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, grievanceService *service.GrievanceService) *AdminHandler {
	return &AdminHandler{auth: authService, grievances: grievanceService}
}

// Login POST /auth/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.auth.AdminLogin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}})
}

// List GET /admin/grievances.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	filter := parseAdminQuery(c)
	grievances, err := h.grievances.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return err
	}
	counts, err := h.grievances.StatusCounts(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.GrievanceResponse, 0, len(grievances))
	for i := range grievances {
		items = append(items, dto.FromGrievance(&grievances[i]))
	}
	stats := dto.GrievanceStats{
		Pending:    counts[domain.StatusPending],
		InProgress: counts[domain.StatusInProgress],
		Completed:  counts[domain.StatusCompleted],
		Rejected:   counts[domain.StatusRejected],
	}
	stats.Total = stats.Pending + stats.InProgress + stats.Completed + stats.Rejected

	return c.JSON(fiber.Map{"data": dto.AdminGrievanceListResponse{
		Stats: stats,
		Items: items,
	}})
}

// UpdateStatus PATCH /admin/grievances/:ticket_number. The request uses
// the dashboard status vocabulary; setting the current status again is
// accepted as a no-op.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	target, ok := domain.ParseAdminStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	grievance, err := h.grievances.Transition(c.UserContext(), c.Params("ticket_number"), target, events.AdminActor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromGrievance(grievance)})
}

func parseAdminQuery(c *fiber.Ctx) repository.GrievanceFilter {
	filter := repository.GrievanceFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if status, ok := domain.ParseAdminStatus(strings.TrimSpace(part)); ok {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
