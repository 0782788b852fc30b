package handlers

import (
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ClinicHandler struct {
	clinics   *services.ClinicService
	directory *services.DirectoryService
}

func NewClinicHandler(clinics *services.ClinicService, directory *services.DirectoryService) *ClinicHandler {
	return &ClinicHandler{clinics: clinics, directory: directory}
}

func (h *ClinicHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateClinicRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	clinic, err := h.clinics.CreateClinic(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(clinic)
}

func (h *ClinicHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	clinic, err := h.clinics.GetClinic(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if clinic == nil {
		return errorJSON(c, fiber.StatusNotFound, "Clinic not found")
	}
	admin, err := h.directory.ClinicAdmin(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"clinic": clinic, "admin": admin})
}

func (h *ClinicHandler) Name(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	name, err := h.clinics.ClinicName(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	if name == "" {
		return errorJSON(c, fiber.StatusNotFound, "Clinic not found")
	}
	return c.JSON(fiber.Map{"name": name})
}

func (h *ClinicHandler) UpdateSettings(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.UpdateClinicRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	clinic, err := h.clinics.UpdateSettings(c.UserContext(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	if clinic == nil {
		return errorJSON(c, fiber.StatusNotFound, "Clinic not found")
	}
	return c.JSON(clinic)
}

func (h *ClinicHandler) ListCoaches(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	coaches, err := h.directory.ListCoachesByClinic(c.UserContext(), id)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"coaches": coaches, "count": len(coaches)})
}

func (h *ClinicHandler) SetLogo(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req dto.SetLogoRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	clinic, err := h.clinics.SetLogo(c.UserContext(), id, req.URL)
	if err != nil {
		return serviceError(c, err)
	}
	if clinic == nil {
		return errorJSON(c, fiber.StatusNotFound, "Clinic not found")
	}
	return c.JSON(clinic)
}

func (h *ClinicHandler) ClearLogo(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	clinic, err := h.clinics.ClearLogo(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	if clinic == nil {
		return errorJSON(c, fiber.StatusNotFound, "Clinic not found")
	}
	return c.JSON(clinic)
}

func (h *ClinicHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	report, err := h.clinics.DeleteClinic(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	if report.Rows["final.delete_clinic"] == 0 {
		return errorJSON(c, fiber.StatusNotFound, "Clinic not found")
	}
	return c.JSON(report)
}

func (h *ClinicHandler) DeleteMembers(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	report, err := h.clinics.DeleteMembers(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(report)
}
