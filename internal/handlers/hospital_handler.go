package handlers

import (
	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type HospitalHandler struct {
	hospitalService *services.HospitalService
}

func NewHospitalHandler(hospitalService *services.HospitalService) *HospitalHandler {
	return &HospitalHandler{hospitalService: hospitalService}
}

// GET /api/hospitals
func (h *HospitalHandler) ListAll(c *fiber.Ctx) error {
	hospitals, err := h.hospitalService.ListAll(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(hospitals)
}

// GET /api/hospitals/my-requests
func (h *HospitalHandler) MyRequests(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	requests, err := h.hospitalService.MyRequests(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(requests)
}

// POST /api/hospitals/request
func (h *HospitalHandler) CreateRequest(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BloodRequestInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	requests, err := h.hospitalService.AddRequest(c.UserContext(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(requests)
}

// PUT /api/hospitals/request/:id
func (h *HospitalHandler) UpdateRequest(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	var req dto.UpdateBloodRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	updated, err := h.hospitalService.UpdateRequest(c.UserContext(), id, requestID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(updated)
}

// PUT /api/hospitals/request/:id/status
func (h *HospitalHandler) SetStatus(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	updated, err := h.hospitalService.SetStatus(c.UserContext(), id, requestID, req.Status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(updated)
}

// DELETE /api/hospitals/request/:id
func (h *HospitalHandler) DeleteRequest(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	if err := h.hospitalService.DeleteRequest(c.UserContext(), id, requestID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Request deleted successfully"})
}
