package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/middleware"
	"github.com/pharmatchapp/pharmatch-backend/internal/plans"
	"github.com/pharmatchapp/pharmatch-backend/internal/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	quotaService        *services.QuotaService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, quotaService *services.QuotaService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		quotaService:        quotaService,
	}
}

// Status returns the caller's effective tier and the full used/max quota
// table for the subscription screen.
func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	tier, statuses, err := h.quotaService.Statuses(c.Context(), userID)
	if err != nil {
		slog.Error("quota status failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load subscription status",
		})
	}

	sub, err := h.subscriptionService.Current(c.Context(), userID)
	if err != nil {
		slog.Error("subscription lookup failed", "error", err, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load subscription status",
		})
	}

	return c.JSON(fiber.Map{
		"tier":         tier,
		"limits":       statuses,
		"subscription": sub,
	})
}

// AdminSetTier overrides a user's subscription, for support cases.
func (h *SubscriptionHandler) AdminSetTier(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user_id",
		})
	}

	var req dto.SetTierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	expiresAt := time.Now().AddDate(0, 1, 0)
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid expires_at, want RFC3339",
			})
		}
		expiresAt = parsed
	}

	sub, err := h.subscriptionService.SetTier(c.Context(), userID, plans.Tier(req.Tier), req.ProductID, time.Now(), expiresAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(sub)
}
