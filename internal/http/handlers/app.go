package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"aaf11/internal/config"
	applog "aaf11/internal/log"
)

const (
	defaultRateLimit = 60
	// room for a base64 proof plus the JSON around it
	bodyOverhead = 64 << 10
)

func NewApp(cfg config.Config, d *Deps) *fiber.App {
	maxProof := d.PaymentHandler.MaxBytes
	app := fiber.New(fiber.Config{
		AppName:      "aaf11",
		ErrorHandler: ErrorHandler,
		BodyLimit:    maxProof*4/3 + bodyOverhead,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, " + csrf.HeaderName,
		AllowCredentials: origins != "*",
	}))
	app.Use(AttachUser(d.Auth))
	rate := cfg.RateLimit
	if rate <= 0 {
		rate = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{Error: "rate_limited", Message: "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:" + csrf.HeaderName,
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).JSON(errorBody{Error: "csrf", Message: "Security check failed. Please refresh and try again."})
		},
	}))

	api := app.Group("/api")
	requireAdmin := RequireAdmin(d.Auth)

	// Catalog
	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/products/:id/availability", d.InventoryHandler.Check)
	api.Post("/products", requireAdmin, d.ProductHandler.Create)
	api.Post("/init-products", requireAdmin, d.ProductHandler.InitProducts)
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/search", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|search"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{Error: "rate_limited", Message: "rate limit exceeded, retry soon"})
		},
	}), d.SearchHandler.Search)

	// Orders
	api.Get("/orders", requireAdmin, d.OrderHandler.List)
	api.Get("/orders/:id", d.OrderHandler.Detail)
	api.Post("/orders", d.OrderHandler.Place)
	api.Patch("/orders/:id/status", requireAdmin, d.OrderHandler.UpdateStatus)
	api.Post("/orders/:id/payment-proof", d.PaymentHandler.OrderProof)

	// Help requests
	api.Get("/help-requests", requireAdmin, d.HelpHandler.List)
	api.Get("/help-requests/:id", d.HelpHandler.Detail)
	api.Post("/help-requests", d.HelpHandler.Create)
	api.Patch("/help-requests/:id/status", requireAdmin, d.HelpHandler.UpdateStatus)
	api.Post("/help-requests/:id/payment-proof", d.PaymentHandler.HelpProof)

	// Contact
	api.Post("/contact", d.ContactHandler.Create)
	api.Get("/contact", requireAdmin, d.ContactHandler.List)
	api.Patch("/contact/:id/status", requireAdmin, d.ContactHandler.UpdateStatus)

	// Payments
	api.Post("/generate-qr", d.PaymentHandler.GenerateQR)
	api.Get("/media/*", requireAdmin, d.MediaHandler.Serve)

	// Auth routes (login throttled)
	api.Get("/csrf", d.AuthHandler.CSRF)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{Error: "rate_limited", Message: "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	api.Post("/logout", d.AuthHandler.Logout)
	api.Get("/me", RequireUser(d.Auth), d.AuthHandler.Me)

	// Admin
	api.Get("/admin/summary", requireAdmin, d.AdminHandler.Dashboard)

	// Health & 404
	api.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: "not_found", Message: "Page not found"})
	})
	return app
}
