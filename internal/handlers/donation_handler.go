package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/middleware"
	"github.com/mammoth-reserve/reserve-backend/internal/services"
)

type DonationHandler struct {
	donations *services.DonationService
}

func NewDonationHandler(donations *services.DonationService) *DonationHandler {
	return &DonationHandler{donations: donations}
}

func (h *DonationHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	donation, err := h.donations.Create(c.Context(), middleware.Role(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}

func (h *DonationHandler) Dashboard(c *fiber.Ctx) error {
	resp, err := h.donations.Dashboard(c.Context(), middleware.Role(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *DonationHandler) Available(c *fiber.Ctx) error {
	donations, err := h.donations.Available(c.Context(), middleware.Role(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donations)
}

func (h *DonationHandler) Reserve(c *fiber.Ctx) error {
	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid donation ID")
	}

	var req dto.ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	reservation, err := h.donations.Reserve(c.Context(), donationID, middleware.Role(c), req.PickupTime, req.ServingsTaken)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reservation)
}

func (h *DonationHandler) CancelReservation(c *fiber.Ctx) error {
	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid donation ID")
	}
	reservationID, err := uuid.Parse(c.Params("reservation_id"))
	if err != nil {
		return badRequest(c, "Invalid reservation ID")
	}

	donation, err := h.donations.CancelReservation(c.Context(), donationID, reservationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donation)
}

func (h *DonationHandler) CompletePickup(c *fiber.Ctx) error {
	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid donation ID")
	}
	reservationID, err := uuid.Parse(c.Params("reservation_id"))
	if err != nil {
		return badRequest(c, "Invalid reservation ID")
	}

	donation, err := h.donations.CompletePickup(c.Context(), donationID, reservationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donation)
}

func (h *DonationHandler) ReservationHistory(c *fiber.Ctx) error {
	entries, err := h.donations.ReservationHistory(c.Context(), middleware.Role(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func (h *DonationHandler) Confirmations(c *fiber.Ctx) error {
	resp, err := h.donations.Confirmations(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Analyze runs the image-analysis collaborator for the donation form.
func (h *DonationHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ImageData != "" && len(req.ImageData) > 4*1024*1024 {
		return badRequest(c, "Image data too large. Maximum 4MB base64.")
	}

	analysis, err := h.donations.AnalyzeImage(c.Context(), req.ImageData)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(analysis)
}
