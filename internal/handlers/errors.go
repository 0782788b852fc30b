package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/credential"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func internalError(c *fiber.Ctx, err error) error {
	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

// serviceError maps service and lifecycle errors onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrClinicNameRequired),
		errors.Is(err, services.ErrInvalidLogoURL),
		errors.Is(err, credential.ErrEmptyPassword):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, services.ErrEmailTaken.Error())
	case errors.Is(err, lifecycle.ErrConstraintViolation):
		return errorJSON(c, fiber.StatusConflict, lifecycle.ErrConstraintViolation.Error())
	case errors.Is(err, lifecycle.ErrTransactionFailure):
		slog.Error("lifecycle transaction failed", "path", c.Path(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, lifecycle.ErrTransactionFailure.Error())
	}
	return internalError(c, err)
}

// parseID reads a uuid path parameter. On failure it has already written a
// 400 response and ok is false.
func parseID(c *fiber.Ctx, param string) (id uuid.UUID, ok bool) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = errorJSON(c, fiber.StatusBadRequest, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
