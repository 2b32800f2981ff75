package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
	"aaf11/internal/validate"
)

type HelpService struct {
	DB         *sqlx.DB
	Requests   *repos.HelpRequestRepo
	Notifier   Notifier
	MinDeposit domain.Money
}

func NewHelpService(db *sqlx.DB, reqs *repos.HelpRequestRepo, n Notifier, minDeposit domain.Money) *HelpService {
	return &HelpService{DB: db, Requests: reqs, Notifier: notifierOrNop(n), MinDeposit: minDeposit}
}

type HelpRequestInput struct {
	Name           string        `json:"name"`
	USN            string        `json:"usn"`
	Year           string        `json:"year"`
	Semester       string        `json:"semester"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email"`
	ProjectDetails string        `json:"projectDetails"`
	DepositAmount  *domain.Money `json:"depositAmount"`
}

func (in HelpRequestInput) validate() (domain.HelpRequest, error) {
	v := domain.NewValidationError()
	var h domain.HelpRequest
	var ok bool
	if h.Name, ok = validate.Text(in.Name, 100); !ok {
		v.Add("name", "required, at most 100 characters")
	}
	if h.USN, ok = validate.USN(in.USN); !ok {
		v.Add("usn", "required, letters and digits only")
	}
	if h.Year, ok = validate.OptionalText(in.Year, 20); !ok {
		v.Add("year", "at most 20 characters")
	}
	if h.Semester, ok = validate.Text(in.Semester, 20); !ok {
		v.Add("semester", "required")
	}
	if h.Phone, ok = validate.Phone(in.Phone); !ok {
		v.Add("phone", "must be a valid phone number")
	}
	if h.Email, ok = validate.Email(in.Email); !ok {
		v.Add("email", "must be a valid email address")
	}
	if h.ProjectDetails, ok = validate.Text(in.ProjectDetails, 5000); !ok {
		v.Add("projectDetails", "required, at most 5000 characters")
	}
	if in.DepositAmount == nil {
		v.Add("depositAmount", "required")
	} else {
		h.DepositAmount = *in.DepositAmount
	}
	return h, v.Err()
}

// Create stores a new request as pending/pending. The notification is fire
// and forget.
func (s *HelpService) Create(ctx context.Context, in HelpRequestInput) (domain.HelpRequest, error) {
	h, err := in.validate()
	if err != nil {
		return domain.HelpRequest{}, err
	}
	if h.DepositAmount.Less(s.MinDeposit) {
		return domain.HelpRequest{}, fmt.Errorf("deposit %s, minimum %s: %w", h.DepositAmount, s.MinDeposit, domain.ErrDepositTooLow)
	}
	h.Status = domain.HelpPending
	h.PaymentStatus = domain.PaymentPending
	if err := s.Requests.Create(ctx, &h); err != nil {
		return domain.HelpRequest{}, err
	}
	s.Notifier.HelpRequestCreated(h)
	return h, nil
}

func (s *HelpService) List(ctx context.Context) ([]domain.HelpRequest, error) {
	return s.Requests.List(ctx)
}

func (s *HelpService) Get(ctx context.Context, id string) (domain.HelpRequest, error) {
	return s.Requests.Get(ctx, id)
}

// HelpStatusInput moves either axis or both; an empty field leaves it as is.
type HelpStatusInput struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

func (in HelpStatusInput) parse() (domain.HelpStatus, domain.PaymentStatus, error) {
	v := domain.NewValidationError()
	var st domain.HelpStatus
	var ps domain.PaymentStatus
	var ok bool
	if in.Status == "" && in.PaymentStatus == "" {
		v.Add("status", "status or paymentStatus is required")
	}
	if in.Status != "" {
		if st, ok = domain.ParseHelpStatus(in.Status); !ok {
			v.Add("status", "must be one of pending, paid, in_progress, completed, refunded")
		}
	}
	if in.PaymentStatus != "" {
		if ps, ok = domain.ParsePaymentStatus(in.PaymentStatus); !ok {
			v.Add("paymentStatus", "must be one of pending, paid")
		}
	}
	return st, ps, v.Err()
}

func (s *HelpService) UpdateStatus(ctx context.Context, id string, in HelpStatusInput) (domain.HelpRequest, error) {
	st, ps, err := in.parse()
	if err != nil {
		return domain.HelpRequest{}, err
	}
	var out domain.HelpRequest
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cur, err := s.Requests.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		next := cur
		if st != "" {
			if !cur.Status.CanTransitionTo(st) {
				return fmt.Errorf("help request %s %s -> %s: %w", id, cur.Status, st, domain.ErrInvalidTransition)
			}
			next.Status = st
		}
		if ps != "" {
			if !cur.PaymentStatus.CanTransitionTo(ps) {
				return fmt.Errorf("help request %s payment %s -> %s: %w", id, cur.PaymentStatus, ps, domain.ErrInvalidTransition)
			}
			next.PaymentStatus = ps
		}
		if err := s.Requests.UpdateStatus(ctx, tx, cur, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}
