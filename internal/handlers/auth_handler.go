package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/services"
)

type AuthHandler struct {
	auth      *services.AuthService
	approvals *services.ApprovalService
}

func NewAuthHandler(auth *services.AuthService, approvals *services.ApprovalService) *AuthHandler {
	return &AuthHandler{auth: auth, approvals: approvals}
}

// Register submits an organization registration for staff review.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.approvals.Register(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Authenticate(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Invalid email or password",
			})
		}
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.StaffLogin(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAccessCode) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Incorrect password. Please try again.",
			})
		}
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) StudentSession(c *fiber.Ctx) error {
	resp, err := h.auth.StudentSession()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.auth.Refresh(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Invalid or expired refresh token",
			})
		}
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.auth.Logout(c.Context(), &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
