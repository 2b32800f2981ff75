package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"aaf11/internal/log"
	"aaf11/internal/repos"
	"aaf11/internal/services"
	"aaf11/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /products?category=&q=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repos.ProductFilter{Category: strings.TrimSpace(c.Query("category"))}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "validation_failed", Message: "Enter a valid keyword (letters/numbers only)",
				Fields: map[string]string{"q": "letters, digits, spaces and - _ ' . only"}})
		}
		f.Q = q
	}
	if len(f.Category) > 60 {
		f.Category = f.Category[:60]
	}
	products, err := h.Catalog.ListProducts(c.UserContext(), f)
	if err != nil {
		return writeError(c, "products.list", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: "not_found", Message: "This item is no longer available"})
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, "products.get", err)
	}
	return c.JSON(p)
}

// POST /products (admin)
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "products.create", err)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, "products.create", err)
	}
	log.Audit(c, "products.create", map[string]any{"product_id": p.ID, "name": p.Name, "stock": p.Stock})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// POST /init-products (admin) seeds the sample catalog.
func (h *ProductHandler) InitProducts(c *fiber.Ctx) error {
	n, err := h.Catalog.SeedSampleProducts(c.UserContext())
	if err != nil {
		return writeError(c, "products.seed", err)
	}
	log.Audit(c, "products.seed", map[string]any{"created": n})
	return c.JSON(fiber.Map{"message": "Sample products initialized", "created": n})
}
