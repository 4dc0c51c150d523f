package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/services"
)

type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteHandler(favoriteService *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.FavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid target_id",
		})
	}

	result, err := h.favoriteService.Add(c.Context(), userID, models.TargetType(req.TargetType), targetID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTargetType) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to add favorite",
		})
	}

	status := fiber.StatusCreated
	switch result.Outcome {
	case services.FavoriteAlready:
		status = fiber.StatusOK
	case services.FavoriteLimitReached:
		status = fiber.StatusPaymentRequired
	}
	return c.Status(status).JSON(result)
}

func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	targetID, err := uuid.Parse(c.Params("target_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid target_id",
		})
	}
	targetType := models.TargetType(c.Query("target_type"))
	if !targetType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid target_type",
		})
	}

	result, err := h.favoriteService.Remove(c.Context(), userID, targetType, targetID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to remove favorite",
		})
	}
	if result.Outcome == services.FavoriteNotFound {
		return c.Status(fiber.StatusNotFound).JSON(result)
	}
	return c.JSON(result)
}

func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	favorites, err := h.favoriteService.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load favorites",
		})
	}
	return c.JSON(fiber.Map{"favorites": favorites})
}
