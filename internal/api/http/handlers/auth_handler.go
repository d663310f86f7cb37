package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// AuthHandler manages the OTP login flow for members.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// SendOTP POST /auth/otp/send.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req dto.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SendOTP(c.UserContext(), req.Phone); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// VerifyOTP POST /auth/otp/verify.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, session, err := h.service.VerifyOTP(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VerifyOTPResponse{
		MemberID: member.ID,
		Phone:    member.Phone,
		Session: dto.SessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
		},
	}})
}
