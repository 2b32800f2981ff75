package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aaf11/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, price, stock, image, category, created_at`

// ProductFilter narrows List; empty fields match everything.
type ProductFilter struct {
	Category string
	Q        string
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if f.Category != "" {
		where += ` AND LOWER(category) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.Category)+"%")
	}
	if f.Q != "" {
		q := "%" + strings.ToLower(f.Q) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)`
		args = append(args, q, q, q)
	}
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT `+productCols+`
  FROM products
  WHERE `+where+`
  ORDER BY created_at DESC, rowid DESC`, args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return p, err
}

// Create assigns ID and CreatedAt before inserting.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	p.CreatedAt = domain.Now()
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO products(`+productCols+`)
	  VALUES(:id, :name, :description, :price, :stock, :image, :category, :created_at)
	`, p)
	return err
}

func (r *ProductRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE LOWER(name) = LOWER(?)`, name)
	return n > 0, err
}

func (r *ProductRepo) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	out := []domain.CategoryCount{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT category, COUNT(*) AS count
	  FROM products
	  GROUP BY category
	  ORDER BY category`)
	return out, err
}

// DecrementStock subtracts qty only if enough stock exists at the time of the
// write and returns the product as it is after the update. The conditional
// UPDATE is the whole concurrency story: no separate read precedes it.
func (r *ProductRepo) DecrementStock(ctx context.Context, tx *sqlx.Tx, id string, qty int) (domain.Product, error) {
	var p domain.Product
	err := tx.GetContext(ctx, &p, `
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
		RETURNING `+productCols, qty, id, qty)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	var stock int
	if err := tx.GetContext(ctx, &stock, `SELECT stock FROM products WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return p, err
	}
	return p, fmt.Errorf("product %s (requested %d, available %d): %w", id, qty, stock, domain.ErrInsufficientStock)
}

// LowStock lists products with fewer than below units, emptiest first.
func (r *ProductRepo) LowStock(ctx context.Context, below int) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE stock < ?
	  ORDER BY stock, name`, below)
	return out, err
}
