package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "aaf11/internal/log"
	"aaf11/internal/services"
	"aaf11/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type statusInput struct {
	Status string `json:"status"`
}

func pathID(c *fiber.Ctx) (string, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
	}
	return id, ok
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: "not_found", Message: "The requested record does not exist."})
}

// GET /orders (admin)
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.UserContext())
	if err != nil {
		return writeError(c, "orders.list", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, "orders.get", err)
	}
	return c.JSON(o)
}

// POST /orders places an order from the client-side cart.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.OrderInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "orders.place", err)
	}
	o, err := h.Orders.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, "orders.place", err)
	}
	applog.Audit(c, "orders.place", map[string]any{
		"order_id": o.ID, "total": o.TotalAmount.String(), "items": len(o.Items),
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// PATCH /orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in statusInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "orders.status", err)
	}
	o, err := h.Orders.UpdateStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return writeError(c, "orders.status", err)
	}
	applog.Audit(c, "orders.status", map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}
