package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aaf11/internal/services"
	"aaf11/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /products/:id/availability
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "validation_failed", Message: "missing productId",
			Fields: map[string]string{"id": "required"}})
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), productID)
	if err != nil {
		return writeError(c, "availability", err)
	}
	return c.JSON(avail)
}
