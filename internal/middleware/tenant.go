package middleware

import (
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ClinicAccess guards /clinics/:id routes. Platform admins reach any clinic;
// clinic admins only the clinic in their token.
func ClinicAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clinicID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid clinic id",
			})
		}

		claims, err := tenant.GetClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		switch {
		case claims.Role == models.RoleAdmin:
		case claims.Role == models.RoleClinicAdmin && claims.ClinicID != nil && *claims.ClinicID == clinicID:
		default:
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "No access to this clinic",
			})
		}

		return c.Next()
	}
}
