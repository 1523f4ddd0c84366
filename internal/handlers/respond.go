package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/services"
	"github.com/mammoth-reserve/reserve-backend/internal/store"
)

// respondError maps service errors onto the API error taxonomy:
// validation failures become field-level 400s, unknown ids become 404s,
// everything else is a logged 500.
func respondError(c *fiber.Ctx, err error) error {
	if ve, ok := services.AsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: ve.Message,
			Field:   ve.Field,
		})
	}
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Not found",
		})
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
