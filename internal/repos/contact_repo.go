package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aaf11/internal/domain"
)

type ContactRepo struct{ db *sqlx.DB }

func NewContactRepo(db *sqlx.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactCols = `id, name, email, subject, message, status, created_at`

func (r *ContactRepo) Create(ctx context.Context, m *domain.ContactMessage) error {
	m.ID = uuid.NewString()
	m.CreatedAt = domain.Now()
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO contact_messages(`+contactCols+`)
	  VALUES(:id, :name, :email, :subject, :message, :status, :created_at)
	`, m)
	return err
}

func (r *ContactRepo) Get(ctx context.Context, id string) (domain.ContactMessage, error) {
	var m domain.ContactMessage
	err := r.db.GetContext(ctx, &m, `SELECT `+contactCols+` FROM contact_messages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("contact message %s: %w", id, domain.ErrNotFound)
	}
	return m, err
}

func (r *ContactRepo) List(ctx context.Context) ([]domain.ContactMessage, error) {
	out := []domain.ContactMessage{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+contactCols+`
		FROM contact_messages
		ORDER BY created_at DESC, rowid DESC`)
	return out, err
}

func (r *ContactRepo) UpdateStatus(ctx context.Context, id string, from, to domain.ContactStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	return expectOneRow(res, err, "contact message", id)
}

func (r *ContactRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countBy(ctx, r.db, "contact_messages", "status")
}
