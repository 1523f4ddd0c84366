package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
	"github.com/mammoth-reserve/reserve-backend/internal/services"
)

// ApprovalHandler exposes the staff registration-review screen.
type ApprovalHandler struct {
	approvals *services.ApprovalService
}

func NewApprovalHandler(approvals *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

func (h *ApprovalHandler) List(c *fiber.Ctx) error {
	users, err := h.approvals.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	var req dto.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.approvals.Approve(c.Context(), userID, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.approvals.Reject)
}

func (h *ApprovalHandler) Revoke(c *fiber.Ctx) error {
	return h.transition(c, h.approvals.Revoke)
}

func (h *ApprovalHandler) Recover(c *fiber.Ctx) error {
	return h.transition(c, h.approvals.Recover)
}

func (h *ApprovalHandler) Delete(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}
	if err := h.approvals.Delete(c.Context(), userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ApprovalHandler) transition(c *fiber.Ctx, op func(ctx context.Context, id uuid.UUID) (*models.PendingUser, error)) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}
	user, err := op(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
