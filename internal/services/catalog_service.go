package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
	"aaf11/internal/validate"
)

type CatalogService struct {
	DB    *sqlx.DB
	Prods *repos.ProductRepo
}

func NewCatalogService(db *sqlx.DB, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{DB: db, Prods: prods}
}

type ProductInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Stock       *int         `json:"stock"`
	Image       string       `json:"image"`
	Category    string       `json:"category"`
}

func (in ProductInput) validate() (domain.Product, error) {
	v := domain.NewValidationError()
	var p domain.Product
	var ok bool
	if p.Name, ok = validate.Text(in.Name, 120); !ok {
		v.Add("name", "required, at most 120 characters")
	}
	if p.Description, ok = validate.Text(in.Description, 2000); !ok {
		v.Add("description", "required, at most 2000 characters")
	}
	if !in.Price.IsPositive() {
		v.Add("price", "must be greater than 0")
	}
	p.Price = in.Price
	switch {
	case in.Stock == nil:
		v.Add("stock", "required")
	case *in.Stock < 0:
		v.Add("stock", "must not be negative")
	default:
		p.Stock = *in.Stock
	}
	if p.Image, ok = validate.Text(in.Image, 500); !ok {
		v.Add("image", "required, at most 500 characters")
	}
	if p.Category, ok = validate.Text(in.Category, 60); !ok {
		v.Add("category", "required, at most 60 characters")
	}
	return p, v.Err()
}

func (s *CatalogService) ListProducts(ctx context.Context, f repos.ProductFilter) ([]domain.Product, error) {
	return s.Prods.List(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := in.validate()
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Create(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// DecrementStock removes qty units from a single product in its own
// transaction. Order placement does the same per line item inside the order's
// transaction instead.
func (s *CatalogService) DecrementStock(ctx context.Context, id string, qty int) (domain.Product, error) {
	if qty < 1 {
		return domain.Product{}, domain.FieldError("quantity", "must be at least 1")
	}
	var out domain.Product
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		p, err := s.Prods.DecrementStock(ctx, tx, id, qty)
		out = p
		return err
	})
	return out, err
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.Prods.Categories(ctx)
}

func (s *CatalogService) SeedSampleProducts(ctx context.Context) (int, error) {
	return repos.SeedProducts(ctx, s.Prods)
}
