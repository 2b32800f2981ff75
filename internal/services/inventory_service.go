package services

import (
	"context"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
)

const lowStockThreshold = 5

type InventoryService struct {
	Prods *repos.ProductRepo
}

func NewInventoryService(prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Prods: prods}
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return domain.Availability{}, err
	}
	return StockAvailability(p), nil
}

func StockAvailability(p domain.Product) domain.Availability {
	status := "OUT_OF_STOCK"
	switch {
	case p.Stock >= lowStockThreshold:
		status = "IN_STOCK"
	case p.Stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{ProductID: p.ID, Status: status, Qty: p.Stock}
}
