package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "aaf11/internal/log"
)

type MediaHandler struct {
	Dir string
}

// Serve streams a stored payment proof. Guarded against path traversal.
func (h *MediaHandler) Serve(c *fiber.Ctx) error {
	path := c.Params("*")
	rawLower := strings.ToLower(path)
	// Block encoded traversal attempts as well as raw .. or null bytes
	if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
		applog.Security(c, "media.traversal.block", map[string]any{"path": path})
		return notFound(c)
	}
	clean := filepath.Clean(path)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) || clean != filepath.Base(clean) {
		applog.Security(c, "media.traversal.block", map[string]any{"path": path})
		return notFound(c)
	}
	if err := c.SendFile(filepath.Join(h.Dir, clean), false); err != nil {
		return notFound(c)
	}
	return nil
}
