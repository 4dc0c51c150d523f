package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/pharmatchapp/pharmatch-backend/internal/services"
)

type SwipeHandler struct {
	swipeService *services.SwipeService
	matchService *services.MatchService
}

func NewSwipeHandler(swipeService *services.SwipeService, matchService *services.MatchService) *SwipeHandler {
	return &SwipeHandler{swipeService: swipeService, matchService: matchService}
}

// Create records a swipe. A quota denial comes back 200 with outcome
// limit_reached; the client shows the upsell, it is not an error path.
func (h *SwipeHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SwipeRequest
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

	var contextID *uuid.UUID
	if req.ContextID != "" {
		id, err := uuid.Parse(req.ContextID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid context_id",
			})
		}
		contextID = &id
	}

	result, err := h.swipeService.RecordSwipe(c.Context(), userID,
		models.TargetType(req.TargetType), targetID,
		models.SwipeAction(req.Action), contextID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAction),
			errors.Is(err, services.ErrInvalidTargetType),
			errors.Is(err, services.ErrSelfSwipe),
			errors.Is(err, services.ErrMissingContext):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotMissionOwner):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("swipe failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record swipe",
		})
	}

	return c.JSON(result)
}

// FeedExclusions returns the target IDs the caller already swiped today.
func (h *SwipeHandler) FeedExclusions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	ids, err := h.swipeService.FeedExclusions(c.Context(), userID)
	if err != nil {
		slog.Error("feed exclusions failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load exclusions",
		})
	}

	return c.JSON(fiber.Map{"excluded_target_ids": ids})
}

// Matches lists the caller's matches.
func (h *SwipeHandler) Matches(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	matches, err := h.matchService.ListForUser(c.Context(), userID)
	if err != nil {
		slog.Error("match list failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load matches",
		})
	}

	return c.JSON(fiber.Map{"matches": matches})
}
