package handlers

import (
	"github.com/gofiber/fiber/v2"

	"aaf11/internal/domain"
	applog "aaf11/internal/log"
	"aaf11/internal/services"
)

// AttachUser puts the session's user, if any, into c.Locals("user").
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			if sid := c.Cookies("sid"); sid != "" {
				u, _ = auth.CurrentUser(c.UserContext(), sid)
			}
		}
		if u == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "unauthorized", Message: "Please log in."})
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user": u.Username})
			return c.Status(fiber.StatusForbidden).JSON(errorBody{Error: "forbidden", Message: "Access denied"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			if sid := c.Cookies("sid"); sid != "" {
				u, _ = auth.CurrentUser(c.UserContext(), sid)
			}
		}
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "unauthorized", Message: "Please log in."})
		}
		c.Locals("user", u)
		return c.Next()
	}
}
