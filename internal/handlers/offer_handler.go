package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/pharmatchapp/pharmatch-backend/internal/services"
)

type OfferHandler struct {
	listingService *services.ListingService
}

func NewOfferHandler(listingService *services.ListingService) *OfferHandler {
	return &OfferHandler{listingService: listingService}
}

// Create posts a job or internship offer.
func (h *OfferHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateOfferRequest
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

	offer, err := h.listingService.CreateOffer(c.Context(), userID, services.CreateOfferInput{
		Title:      req.Title,
		City:       req.City,
		Internship: req.Internship,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidUserType) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Only employers can post offers",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create offer",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(offer)
}

// List returns the employer's own offers.
func (h *OfferHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	offers, err := h.listingService.ListOffersForEmployer(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load offers",
		})
	}
	return c.JSON(fiber.Map{"offers": offers})
}
