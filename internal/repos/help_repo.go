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

type HelpRequestRepo struct{ db *sqlx.DB }

func NewHelpRequestRepo(db *sqlx.DB) *HelpRequestRepo { return &HelpRequestRepo{db: db} }

const helpCols = `id, name, usn, year, semester, phone, email, project_details, deposit_amount,
	status, payment_status, payment_screenshot, created_at`

func (r *HelpRequestRepo) Create(ctx context.Context, h *domain.HelpRequest) error {
	h.ID = uuid.NewString()
	h.CreatedAt = domain.Now()
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO help_requests(`+helpCols+`)
	  VALUES(:id, :name, :usn, :year, :semester, :phone, :email, :project_details, :deposit_amount,
	         :status, :payment_status, :payment_screenshot, :created_at)
	`, h)
	return err
}

func (r *HelpRequestRepo) Get(ctx context.Context, id string) (domain.HelpRequest, error) {
	return getHelpRequest(ctx, r.db, id)
}

func (r *HelpRequestRepo) GetTx(ctx context.Context, tx *sqlx.Tx, id string) (domain.HelpRequest, error) {
	return getHelpRequest(ctx, tx, id)
}

func getHelpRequest(ctx context.Context, q sqlx.QueryerContext, id string) (domain.HelpRequest, error) {
	var h domain.HelpRequest
	err := sqlx.GetContext(ctx, q, &h, `SELECT `+helpCols+` FROM help_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return h, fmt.Errorf("help request %s: %w", id, domain.ErrNotFound)
	}
	return h, err
}

func (r *HelpRequestRepo) List(ctx context.Context) ([]domain.HelpRequest, error) {
	out := []domain.HelpRequest{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+helpCols+`
		FROM help_requests
		ORDER BY created_at DESC, rowid DESC`)
	return out, err
}

// UpdateStatus swaps both status axes, guarded on the values read in tx.
func (r *HelpRequestRepo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, cur, next domain.HelpRequest) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE help_requests SET status = ?, payment_status = ?
		WHERE id = ? AND status = ? AND payment_status = ?`,
		next.Status, next.PaymentStatus, cur.ID, cur.Status, cur.PaymentStatus)
	return expectOneRow(res, err, "help request", cur.ID)
}

func (r *HelpRequestRepo) AttachProof(ctx context.Context, tx *sqlx.Tx, cur domain.HelpRequest, ref string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE help_requests SET status = ?, payment_status = ?, payment_screenshot = ?
		WHERE id = ? AND status = ? AND payment_status = ?`,
		domain.HelpPaid, domain.PaymentPaid, ref, cur.ID, cur.Status, cur.PaymentStatus)
	return expectOneRow(res, err, "help request", cur.ID)
}

func (r *HelpRequestRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countBy(ctx, r.db, "help_requests", "status")
}
