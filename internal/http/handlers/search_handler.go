package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"aaf11/internal/log"
	"aaf11/internal/repos"
	"aaf11/internal/services"
	"aaf11/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

type searchResult struct {
	Q        string `json:"q"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
	Products any    `json:"products"`
}

// GET /search?q=&category= requires a keyword, unlike GET /products.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "validation_failed", Message: "Enter a valid keyword (letters/numbers only)",
			Fields: map[string]string{"q": "required, letters, digits, spaces and - _ ' . only"}})
	}
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if category, ok = validate.Text(category, 60); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: "validation_failed", Message: "Invalid category",
				Fields: map[string]string{"category": "at most 60 characters"}})
		}
	}
	products, err := h.Catalog.ListProducts(c.UserContext(), repos.ProductFilter{Q: q, Category: category})
	if err != nil {
		return writeError(c, "search", err)
	}
	return c.JSON(searchResult{Q: q, Category: category, Count: len(products), Products: products})
}
