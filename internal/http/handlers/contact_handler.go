package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "aaf11/internal/log"
	"aaf11/internal/services"
)

type ContactHandler struct {
	Contact *services.ContactService
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var in services.ContactInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "contact.create", err)
	}
	m, err := h.Contact.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, "contact.create", err)
	}
	applog.Info(c, "contact.create", map[string]any{"contact_id": m.ID})
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *ContactHandler) List(c *fiber.Ctx) error {
	msgs, err := h.Contact.List(c.UserContext())
	if err != nil {
		return writeError(c, "contact.list", err)
	}
	return c.JSON(msgs)
}

func (h *ContactHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	var in statusInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "contact.status", err)
	}
	m, err := h.Contact.UpdateStatus(c.UserContext(), id, in.Status)
	if err != nil {
		return writeError(c, "contact.status", err)
	}
	applog.Audit(c, "contact.status", map[string]any{"contact_id": id, "status": m.Status})
	return c.JSON(m)
}
