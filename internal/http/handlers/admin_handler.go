package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aaf11/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// GET /admin/summary
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	s, err := h.Admin.Summary(c.UserContext())
	if err != nil {
		return writeError(c, "admin.summary", err)
	}
	return c.JSON(s)
}
