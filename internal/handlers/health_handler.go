package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mammoth-reserve/reserve-backend/internal/config"
	"github.com/mammoth-reserve/reserve-backend/internal/database"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storage := h.cfg.StorageBackend
	if storage == "postgres" {
		if err := database.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{
				Status:    "degraded",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Storage:   "postgres: unreachable",
			})
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Storage:   storage,
	})
}
