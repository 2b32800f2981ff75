package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aaf11/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /categories lists category labels with product counts.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return writeError(c, "categories.list", err)
	}
	return c.JSON(cats)
}
