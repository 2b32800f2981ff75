package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"aaf11/internal/log"
	"aaf11/internal/services"
	"aaf11/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func setSID(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
		Expires:  expires,
	})
}

// CSRF hands the SPA the token it must echo in X-Csrf-Token on writes.
func (h *AuthHandler) CSRF(c *fiber.Ctx) error {
	tok, _ := c.Locals("csrf").(string)
	return c.JSON(fiber.Map{"csrfToken": tok})
}

// POST /login. A fresh session id is issued on every successful login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "auth.login", err)
	}
	username, ok := validate.Username(in.Username)
	if !ok || in.Password == "" || len(in.Password) > 72 {
		log.Security(c, "auth.login.fail", map[string]any{"username": in.Username, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "bad_credentials", Message: "Invalid username or password"})
	}
	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, username, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.login.fail", map[string]any{"username": username})
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody{Error: "bad_credentials", Message: "Invalid username or password"})
		}
		return writeError(c, "auth.login", err)
	}
	if old := c.Cookies("sid"); old != "" {
		_ = h.Auth.Logout(c.UserContext(), old)
	}
	setSID(c, sid, time.Time{})
	c.Locals("user", u)
	log.Audit(c, "auth.login.success", map[string]any{"username": username})
	return c.JSON(u)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return writeError(c, "auth.logout", err)
		}
		log.Audit(c, "auth.logout", nil)
	}
	setSID(c, "", time.Now().Add(-1*time.Hour))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}
