package handlers

import (
	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DonorHandler struct {
	donorService *services.DonorService
}

func NewDonorHandler(donorService *services.DonorService) *DonorHandler {
	return &DonorHandler{donorService: donorService}
}

// GET /api/donors
func (h *DonorHandler) ListAll(c *fiber.Ctx) error {
	donors, err := h.donorService.ListAll(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(donors)
}

// GET /api/donors/my-donations
func (h *DonorHandler) MyDonations(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	donations, err := h.donorService.MyDonations(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(donations)
}

// POST /api/donors/donate
func (h *DonorHandler) Donate(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.DonateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	donations, err := h.donorService.AddDonation(c.UserContext(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(donations)
}

// PUT /api/donors/donate
func (h *DonorHandler) UpdateDonation(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	donation, err := h.donorService.UpdateDonation(c.UserContext(), id, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(donation)
}

// DELETE /api/donors/donate/:id
func (h *DonorHandler) DeleteDonation(c *fiber.Ctx) error {
	id, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	donationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	if err := h.donorService.DeleteDonation(c.UserContext(), id, donationID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Donation deleted successfully"})
}
