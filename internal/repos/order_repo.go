package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"aaf11/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, customer_name, customer_email, customer_phone, customer_usn, customer_year,
	customer_semester, total_amount, status, payment_method, payment_screenshot, created_at`

// Create inserts the order header and its line items inside tx.
func (r *OrderRepo) Create(ctx context.Context, tx *sqlx.Tx, o *domain.Order) error {
	if _, err := tx.NamedExecContext(ctx, `
	  INSERT INTO orders(`+orderCols+`)
	  VALUES(:id, :customer_name, :customer_email, :customer_phone, :customer_usn, :customer_year,
	         :customer_semester, :total_amount, :status, :payment_method, :payment_screenshot, :created_at)
	`, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if _, err := tx.NamedExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, name, quantity, unit_price)
		  VALUES(:order_id, :product_id, :name, :quantity, :unit_price)
		`, o.Items[i]); err != nil {
			return fmt.Errorf("insert order item %s: %w", o.Items[i].ProductID, err)
		}
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	return getOrder(ctx, r.db, id)
}

// GetTx reads through tx so a status change sees its own lock.
func (r *OrderRepo) GetTx(ctx context.Context, tx *sqlx.Tx, id string) (domain.Order, error) {
	return getOrder(ctx, tx, id)
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, id string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, q, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		return o, err
	}
	o.Items = []domain.LineItem{}
	if err := sqlx.SelectContext(ctx, q, &o.Items, `
		SELECT order_id, product_id, name, quantity, unit_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY rowid
	`, id); err != nil {
		return o, err
	}
	return o, nil
}

// List returns every order newest first, with items loaded in one extra query.
func (r *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := r.db.SelectContext(ctx, &out, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY created_at DESC, rowid DESC
	`); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
		out[i].Items = []domain.LineItem{}
	}
	query, args, err := sqlx.In(`
		SELECT order_id, product_id, name, quantity, unit_price
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY rowid`, ids)
	if err != nil {
		return nil, err
	}
	var items []domain.LineItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	byOrder := make(map[string]int, len(out))
	for i := range out {
		byOrder[out[i].ID] = i
	}
	for _, it := range items {
		if i, ok := byOrder[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, nil
}

// UpdateStatus is a compare-and-swap on the current status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, from, to domain.OrderStatus) error {
	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	return expectOneRow(res, err, "order", id)
}

// AttachProof stores the proof reference and moves the order from -> to.
func (r *OrderRepo) AttachProof(ctx context.Context, tx *sqlx.Tx, id string, from, to domain.OrderStatus, ref string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, payment_screenshot = ?
		WHERE id = ? AND status = ?`, to, ref, id, from)
	return expectOneRow(res, err, "order", id)
}

func expectOneRow(res sql.Result, err error, kind, id string) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s changed concurrently: %w", kind, id, domain.ErrInvalidTransition)
	}
	return nil
}

func (r *OrderRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return countBy(ctx, r.db, "orders", "status")
}
