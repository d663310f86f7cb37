package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// GrievancesHandler manages the member-facing grievance endpoints.
type GrievancesHandler struct {
	service *service.GrievanceService
}

// NewGrievancesHandler constructs handler.
func NewGrievancesHandler(grievanceService *service.GrievanceService) *GrievancesHandler {
	return &GrievancesHandler{service: grievanceService}
}

// Submit POST /grievances.
func (h *GrievancesHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Member == nil {
		return apperrors.NewUnauthorized("member required")
	}
	var req dto.SubmitGrievanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SubmitInput{
		MemberID:       principal.Member.ID,
		Category:       req.Category,
		SubCategory:    req.SubCategory,
		Description:    req.Description,
		LocationDetail: req.LocationDetail,
		ImageURL:       req.ImageURL,
		Profile: repository.MemberProfile{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			RegNumber: req.RegNumber,
			Email:     req.Email,
		},
	}
	grievance, err := h.service.Submit(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromGrievance(grievance)})
}

// List GET /grievances.
func (h *GrievancesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Member == nil {
		return apperrors.NewUnauthorized("member required")
	}
	limit, offset := parsePage(c)
	grievances, err := h.service.ListForMember(c.UserContext(), principal.Member.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.GrievanceResponse, 0, len(grievances))
	for i := range grievances {
		items = append(items, dto.FromGrievance(&grievances[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /grievances/:ticket_number.
func (h *GrievancesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Member == nil {
		return apperrors.NewUnauthorized("member required")
	}
	grievance, err := h.service.GetByTicketNumber(c.UserContext(), c.Params("ticket_number"))
	if err != nil {
		return err
	}
	// Members only see their own tickets; respond as if absent.
	if grievance.MemberID != principal.Member.ID {
		return apperrors.NewNotFound("grievance", map[string]any{"ticket_number": grievance.TicketNumber})
	}
	return c.JSON(fiber.Map{"data": dto.FromGrievance(grievance)})
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
