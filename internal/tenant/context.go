package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the identity fields carried in an access token.
type Claims struct {
	AccountID uuid.UUID
	Email     string
	Role      string
	ClinicID  *uuid.UUID
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// GetAccountID extracts the account UUID from JWT claims in context.
func GetAccountID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// GetClaims returns the full identity from the access token in context.
func GetClaims(c *fiber.Ctx) (*Claims, error) {
	id, err := GetAccountID(c)
	if err != nil {
		return nil, err
	}
	claims, _ := claimsFromCtx(c)

	out := &Claims{AccountID: id}
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	if raw, ok := claims["clinic_id"].(string); ok && raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.New("invalid clinic_id claim")
		}
		out.ClinicID = &clinicID
	}
	return out, nil
}
