package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/pharmatchapp/pharmatch-backend/internal/services"
)

type MissionHandler struct {
	listingService *services.ListingService
	feeService     *services.FeeService
	invoiceService *services.InvoiceService
}

func NewMissionHandler(listingService *services.ListingService, feeService *services.FeeService, invoiceService *services.InvoiceService) *MissionHandler {
	return &MissionHandler{
		listingService: listingService,
		feeService:     feeService,
		invoiceService: invoiceService,
	}
}

// Publish creates a mission if the laboratory's monthly quota allows it.
func (h *MissionHandler) Publish(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.PublishMissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Title is required",
		})
	}

	mission, status, err := h.listingService.PublishMission(c.Context(), userID, services.PublishMissionInput{
		Title:     req.Title,
		City:      req.City,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUserType):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Only laboratories can publish missions",
			})
		case errors.Is(err, services.ErrInvalidDates):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("mission publish failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to publish mission",
		})
	}
	if mission == nil {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"outcome": "limit_reached",
			"limit":   status,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"mission": mission,
		"limit":   status,
	})
}

// FeePreview quotes the confirmation fee for a mission without persisting
// anything, so the client can show the amount up front.
func (h *MissionHandler) FeePreview(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	missionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid mission id",
		})
	}

	quote, err := h.feeService.CheckFeeStatus(c.Context(), userID, missionID)
	if err != nil {
		if errors.Is(err, services.ErrMissionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("fee preview failed", "error", err, "mission_id", missionID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute fee",
		})
	}

	return c.JSON(quote)
}

// Confirm freezes the fee decision for a mission and emits its invoice line.
// Confirming twice returns the same fee row.
func (h *MissionHandler) Confirm(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	missionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid mission id",
		})
	}

	fee, err := h.feeService.ConfirmMission(c.Context(), userID, missionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotMissionOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("mission confirm failed", "error", err, "mission_id", missionID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to confirm mission",
		})
	}

	return c.JSON(fee)
}

// List returns the laboratory's own missions.
func (h *MissionHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	missions, err := h.listingService.ListMissionsForLab(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load missions",
		})
	}
	return c.JSON(fiber.Map{"missions": missions})
}

// Invoices lists the caller's invoice lines.
func (h *MissionHandler) Invoices(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	invoices, err := h.invoiceService.ListForUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load invoices",
		})
	}
	return c.JSON(fiber.Map{"invoices": invoices})
}
