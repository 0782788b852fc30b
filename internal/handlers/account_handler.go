package handlers

import (
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	accounts  *services.AccountService
	directory *services.DirectoryService
}

func NewAccountHandler(accounts *services.AccountService, directory *services.DirectoryService) *AccountHandler {
	return &AccountHandler{accounts: accounts, directory: directory}
}

func (h *AccountHandler) Me(c *fiber.Ctx) error {
	id, err := tenant.GetAccountID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	account, err := h.accounts.GetByID(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if account == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}
	return c.JSON(account)
}

// UpdateMe lets an account change its own name, email and phone. Role and
// status are kept; a clinic admin's changes are copied onto the clinic.
func (h *AccountHandler) UpdateMe(c *fiber.Ctx) error {
	id, err := tenant.GetAccountID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	var req dto.UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	current, err := h.accounts.GetByID(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if current == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}

	updated, err := h.accounts.UpdateProfile(c.UserContext(), id, services.UpdateProfileInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       current.Role,
		IsActive:   current.IsActive,
		SyncClinic: current.Role == models.RoleClinicAdmin,
	})
	if err != nil {
		return serviceError(c, err)
	}
	if updated == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}
	return c.JSON(updated)
}

// Create answers 201 for a new account and 200 when the email was already
// registered and the existing account is returned.
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	account, created, err := h.accounts.EnsureAccount(c.UserContext(), services.CreateAccountInput{
		Role:     req.Role,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		ClinicID: req.ClinicID,
		CoachID:  req.CoachID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	if !created {
		return c.JSON(account)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *AccountHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	current, err := h.accounts.GetByID(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if current == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}
	in := services.UpdateProfileInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Role:          req.Role,
		IsActive:      current.IsActive,
		PreviousEmail: req.PreviousEmail,
	}
	if in.Role == "" {
		in.Role = current.Role
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}

	updated, err := h.accounts.UpdateProfile(c.UserContext(), id, in)
	if err != nil {
		return serviceError(c, err)
	}
	if updated == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}
	return c.JSON(updated)
}

func (h *AccountHandler) UpdateCoach(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	coach, err := h.accounts.UpdateCoach(c.UserContext(), id, req.Name, req.Email, req.Phone)
	if err != nil {
		return serviceError(c, err)
	}
	if coach == nil {
		return errorJSON(c, fiber.StatusNotFound, "Coach not found")
	}
	return c.JSON(coach)
}

func (h *AccountHandler) ResetPassword(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	account, err := h.accounts.ResetPassword(c.UserContext(), id, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	if account == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}
	return c.JSON(account)
}

func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	account, err := h.accounts.DeleteByID(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	if account == nil {
		return errorJSON(c, fiber.StatusNotFound, "Account not found")
	}
	return c.JSON(account)
}

// DeleteClient removes a client by email. Stray email-keyed rows are cleared
// even when no account exists, so the response is 200 either way.
func (h *AccountHandler) DeleteClient(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Email is required")
	}
	account, err := h.accounts.DeleteAccount(c.UserContext(), email)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": account != nil, "account": account})
}

func (h *AccountHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.directory.Dashboard(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(d)
}

func (h *AccountHandler) ListCoaches(c *fiber.Ctx) error {
	coaches, err := h.directory.ListCoaches(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"coaches": coaches, "count": len(coaches)})
}

func (h *AccountHandler) ListAdmins(c *fiber.Ctx) error {
	admins, err := h.directory.ListAdmins(c.UserContext())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"admins": admins, "count": len(admins)})
}
