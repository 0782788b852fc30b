package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	subscriptions *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

func (h *SubscriptionHandler) CreateTier(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.CreateTierRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	tier, err := h.subscriptions.CreateTier(c.UserContext(), id, req.Name, req.PriceCents, req.MaxClients)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tier)
}

func (h *SubscriptionHandler) HandleEvent(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.SubscriptionEventRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	err := h.subscriptions.HandleEvent(c.UserContext(), id, services.SubscriptionEvent{Type: req.Type, TierID: req.TierID})
	if errors.Is(err, services.ErrNoActiveSubscription) {
		return errorJSON(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "processed"})
}

func (h *SubscriptionHandler) History(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	history, err := h.subscriptions.History(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": history})
}
