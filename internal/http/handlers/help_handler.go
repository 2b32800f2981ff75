package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "aaf11/internal/log"
	"aaf11/internal/services"
)

type HelpHandler struct {
	Help *services.HelpService
}

func (h *HelpHandler) List(c *fiber.Ctx) error {
	reqs, err := h.Help.List(c.UserContext())
	if err != nil {
		return writeError(c, "help.list", err)
	}
	return c.JSON(reqs)
}

func (h *HelpHandler) Detail(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	r, err := h.Help.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, "help.get", err)
	}
	return c.JSON(r)
}

func (h *HelpHandler) Create(c *fiber.Ctx) error {
	var in services.HelpRequestInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "help.create", err)
	}
	r, err := h.Help.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, "help.create", err)
	}
	applog.Audit(c, "help.create", map[string]any{"help_id": r.ID, "deposit": r.DepositAmount.String()})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// PATCH /help-requests/:id/status (admin) with {status?, paymentStatus?}
func (h *HelpHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in services.HelpStatusInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "help.status", err)
	}
	r, err := h.Help.UpdateStatus(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, "help.status", err)
	}
	applog.Audit(c, "help.status", map[string]any{"help_id": id, "status": r.Status, "payment_status": r.PaymentStatus})
	return c.JSON(r)
}
