package services

import (
	"context"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
)

type AdminService struct {
	Prods    *repos.ProductRepo
	Orders   *repos.OrderRepo
	Help     *repos.HelpRequestRepo
	Contacts *repos.ContactRepo
}

// Summary is the admin dashboard: record counts per status and the products
// that are running out.
type Summary struct {
	Orders       map[string]int        `json:"orders"`
	HelpRequests map[string]int        `json:"helpRequests"`
	Contact      map[string]int        `json:"contact"`
	LowStock     []domain.Availability `json:"lowStock"`
}

func (s *AdminService) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	var err error
	if out.Orders, err = s.Orders.CountByStatus(ctx); err != nil {
		return out, err
	}
	if out.HelpRequests, err = s.Help.CountByStatus(ctx); err != nil {
		return out, err
	}
	if out.Contact, err = s.Contacts.CountByStatus(ctx); err != nil {
		return out, err
	}
	low, err := s.Prods.LowStock(ctx, lowStockThreshold)
	if err != nil {
		return out, err
	}
	out.LowStock = make([]domain.Availability, 0, len(low))
	for _, p := range low {
		out.LowStock = append(out.LowStock, StockAvailability(p))
	}
	return out, nil
}
