package handlers

import (
	"github.com/bloodbank/bloodbank-api/internal/dto"
	"github.com/bloodbank/bloodbank-api/internal/identity"
	"github.com/bloodbank/bloodbank-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(users)
}

// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, err := identity.FromContext(c)
	if err != nil {
		return unauthorized(c)
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c)
	}

	if err := h.adminService.DeleteUser(c.UserContext(), actor, userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

// GET /api/admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	items, err := h.adminService.Inventory(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(items)
}

// GET /api/admin/audit-logs?limit=50&offset=0
func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	page, err := h.adminService.AuditLogs(c.UserContext(), c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(page)
}
