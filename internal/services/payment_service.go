package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	qrcode "github.com/skip2/go-qrcode"

	"aaf11/internal/domain"
	"aaf11/internal/media"
	"aaf11/internal/repos"
	"aaf11/internal/validate"
)

const qrSize = 256

// ProofStore persists proof images and hands back a reference for the record.
type ProofStore interface {
	Save(kind, id string, img []byte) (string, error)
	Remove(ref string) error
}

type PaymentService struct {
	DB        *sqlx.DB
	Orders    *repos.OrderRepo
	Help      *repos.HelpRequestRepo
	Proofs    ProofStore
	Payee     string
	PayeeName string
}

func NewPaymentService(db *sqlx.DB, orders *repos.OrderRepo, help *repos.HelpRequestRepo, proofs ProofStore, payee, payeeName string) *PaymentService {
	return &PaymentService{DB: db, Orders: orders, Help: help, Proofs: proofs, Payee: payee, PayeeName: payeeName}
}

func proofError(err error) error {
	switch {
	case errors.Is(err, media.ErrEmpty):
		return domain.FieldError("screenshot", "required")
	case errors.Is(err, media.ErrTooLarge):
		return domain.FieldError("screenshot", "image is too large")
	case errors.Is(err, media.ErrUnsupportedType):
		return domain.FieldError("screenshot", "must be a PNG, JPEG, GIF or WebP image")
	}
	return err
}

// AttachOrderProof stores the screenshot and moves the order pending -> paid.
// The file is removed again if the transition does not commit.
func (s *PaymentService) AttachOrderProof(ctx context.Context, id string, img []byte) (domain.Order, error) {
	if _, err := s.Orders.Get(ctx, id); err != nil {
		return domain.Order{}, err
	}
	ref, err := s.Proofs.Save("order", id, img)
	if err != nil {
		return domain.Order{}, proofError(err)
	}
	var out domain.Order
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cur, err := s.Orders.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur.Status != domain.OrderPending {
			return fmt.Errorf("order %s is %s: %w", id, cur.Status, domain.ErrInvalidTransition)
		}
		if err := s.Orders.AttachProof(ctx, tx, id, cur.Status, domain.OrderPaid, ref); err != nil {
			return err
		}
		cur.Status = domain.OrderPaid
		cur.PaymentScreenshot = &ref
		out = cur
		return nil
	})
	if err != nil {
		s.discard(ref)
		return domain.Order{}, err
	}
	return out, nil
}

// AttachHelpProof stores the screenshot and marks both axes of a pending
// request as paid.
func (s *PaymentService) AttachHelpProof(ctx context.Context, id string, img []byte) (domain.HelpRequest, error) {
	if _, err := s.Help.Get(ctx, id); err != nil {
		return domain.HelpRequest{}, err
	}
	ref, err := s.Proofs.Save("help", id, img)
	if err != nil {
		return domain.HelpRequest{}, proofError(err)
	}
	var out domain.HelpRequest
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cur, err := s.Help.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur.Status != domain.HelpPending || cur.PaymentStatus != domain.PaymentPending {
			return fmt.Errorf("help request %s is %s/%s: %w", id, cur.Status, cur.PaymentStatus, domain.ErrInvalidTransition)
		}
		if err := s.Help.AttachProof(ctx, tx, cur, ref); err != nil {
			return err
		}
		cur.Status = domain.HelpPaid
		cur.PaymentStatus = domain.PaymentPaid
		cur.PaymentScreenshot = &ref
		out = cur
		return nil
	})
	if err != nil {
		s.discard(ref)
		return domain.HelpRequest{}, err
	}
	return out, nil
}

func (s *PaymentService) discard(ref string) {
	if err := s.Proofs.Remove(ref); err != nil {
		log.Printf("[payment] could not remove proof %s: %v", ref, err)
	}
}

type QRInput struct {
	Amount  *domain.Money `json:"amount"`
	OrderID string        `json:"orderId"`
	Type    string        `json:"type"`
}

type QRCode struct {
	QRCode    string `json:"qrCode"`
	UPIString string `json:"upiString"`
}

var qrLabels = map[string]string{
	"order": "Order",
	"help":  "Help Request",
}

// UPIString builds the payment intent encoded into the QR image.
func (s *PaymentService) UPIString(amount domain.Money, label, id string) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s %s", s.Payee, s.PayeeName, amount, label, id)
}

func (s *PaymentService) GenerateQR(in QRInput) (QRCode, error) {
	v := domain.NewValidationError()
	if in.Amount == nil || !in.Amount.IsPositive() {
		v.Add("amount", "must be greater than 0")
	}
	id, ok := validate.ID(in.OrderID)
	if !ok {
		v.Add("orderId", "required")
	}
	label, ok := qrLabels[in.Type]
	if !ok {
		v.Add("type", "must be order or help")
	}
	if err := v.Err(); err != nil {
		return QRCode{}, err
	}
	upi := s.UPIString(*in.Amount, label, id)
	png, err := qrcode.Encode(upi, qrcode.Medium, qrSize)
	if err != nil {
		return QRCode{}, fmt.Errorf("encode qr: %w", err)
	}
	return QRCode{
		QRCode:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		UPIString: upi,
	}, nil
}
