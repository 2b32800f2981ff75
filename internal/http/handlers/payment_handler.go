package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"aaf11/internal/domain"
	applog "aaf11/internal/log"
	"aaf11/internal/media"
	"aaf11/internal/services"
)

type PaymentHandler struct {
	Payments *services.PaymentService
	MaxBytes int
}

// POST /generate-qr
func (h *PaymentHandler) GenerateQR(c *fiber.Ctx) error {
	var in services.QRInput
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, "payment.qr", err)
	}
	qr, err := h.Payments.GenerateQR(in)
	if err != nil {
		return writeError(c, "payment.qr", err)
	}
	return c.JSON(qr)
}

// readProof accepts a multipart "screenshot" file or a JSON body
// {"screenshot": "data:image/png;base64,..."}.
func (h *PaymentHandler) readProof(c *fiber.Ctx) ([]byte, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("screenshot")
		if err != nil {
			return nil, domain.FieldError("screenshot", "required")
		}
		if fh.Size > int64(h.MaxBytes) {
			return nil, domain.FieldError("screenshot", "image is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, int64(h.MaxBytes)+1))
	}
	var in struct {
		Screenshot string `json:"screenshot"`
	}
	if err := bindJSON(c, &in); err != nil {
		return nil, err
	}
	if in.Screenshot == "" {
		return nil, domain.FieldError("screenshot", "required")
	}
	img, err := media.DecodeDataURI(in.Screenshot)
	if errors.Is(err, media.ErrBadDataURI) {
		return nil, domain.FieldError("screenshot", "must be a base64 image data URI")
	}
	return img, err
}

// POST /orders/:id/payment-proof
func (h *PaymentHandler) OrderProof(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	img, err := h.readProof(c)
	if err != nil {
		return writeError(c, "payment.proof.order", err)
	}
	o, err := h.Payments.AttachOrderProof(c.UserContext(), id, img)
	if err != nil {
		return writeError(c, "payment.proof.order", err)
	}
	applog.Audit(c, "payment.proof.order", map[string]any{"order_id": id, "bytes": len(img)})
	return c.JSON(o)
}

// POST /help-requests/:id/payment-proof
func (h *PaymentHandler) HelpProof(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}
	img, err := h.readProof(c)
	if err != nil {
		return writeError(c, "payment.proof.help", err)
	}
	r, err := h.Payments.AttachHelpProof(c.UserContext(), id, img)
	if err != nil {
		return writeError(c, "payment.proof.help", err)
	}
	applog.Audit(c, "payment.proof.help", map[string]any{"help_id": id, "bytes": len(img)})
	return c.JSON(r)
}
