package services

import (
	"context"
	"fmt"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
	"aaf11/internal/validate"
)

type ContactService struct {
	Messages *repos.ContactRepo
	Notifier Notifier
}

func NewContactService(msgs *repos.ContactRepo, n Notifier) *ContactService {
	return &ContactService{Messages: msgs, Notifier: notifierOrNop(n)}
}

// ContactInput has no status field: new messages are always unread.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (in ContactInput) validate() (domain.ContactMessage, error) {
	v := domain.NewValidationError()
	var m domain.ContactMessage
	var ok bool
	if m.Name, ok = validate.Text(in.Name, 100); !ok {
		v.Add("name", "required, at most 100 characters")
	}
	if m.Email, ok = validate.Email(in.Email); !ok {
		v.Add("email", "must be a valid email address")
	}
	if m.Subject, ok = validate.Text(in.Subject, 200); !ok {
		v.Add("subject", "required, at most 200 characters")
	}
	if m.Message, ok = validate.Text(in.Message, 5000); !ok {
		v.Add("message", "required, at most 5000 characters")
	}
	return m, v.Err()
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (domain.ContactMessage, error) {
	m, err := in.validate()
	if err != nil {
		return domain.ContactMessage{}, err
	}
	m.Status = domain.ContactUnread
	if err := s.Messages.Create(ctx, &m); err != nil {
		return domain.ContactMessage{}, err
	}
	s.Notifier.ContactReceived(m)
	return m, nil
}

func (s *ContactService) List(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.Messages.List(ctx)
}

func (s *ContactService) UpdateStatus(ctx context.Context, id, status string) (domain.ContactMessage, error) {
	next, ok := domain.ParseContactStatus(status)
	if !ok {
		return domain.ContactMessage{}, domain.FieldError("status", "must be one of unread, read, replied")
	}
	cur, err := s.Messages.Get(ctx, id)
	if err != nil {
		return domain.ContactMessage{}, err
	}
	if !cur.Status.CanTransitionTo(next) {
		return domain.ContactMessage{}, fmt.Errorf("contact message %s %s -> %s: %w", id, cur.Status, next, domain.ErrInvalidTransition)
	}
	if err := s.Messages.UpdateStatus(ctx, id, cur.Status, next); err != nil {
		return domain.ContactMessage{}, err
	}
	cur.Status = next
	return cur, nil
}
