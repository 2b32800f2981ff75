package handlers

import (
	"github.com/jmoiron/sqlx"

	"aaf11/internal/config"
	"aaf11/internal/domain"
	"aaf11/internal/media"
	"aaf11/internal/repos"
	"aaf11/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	ProductHandler   *ProductHandler
	CategoryHandler  *CategoryHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	OrderHandler     *OrderHandler
	HelpHandler      *HelpHandler
	ContactHandler   *ContactHandler
	PaymentHandler   *PaymentHandler
	MediaHandler     *MediaHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, notifier services.Notifier, proofs *media.ProofStore) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	helpRepo := repos.NewHelpRequestRepo(db)
	contactRepo := repos.NewContactRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := &services.AuthService{Users: userRepo}
	catalogSvc := services.NewCatalogService(db, prodRepo)
	invSvc := services.NewInventoryService(prodRepo)
	orderSvc := services.NewOrderService(db, prodRepo, orderRepo, notifier)
	helpSvc := services.NewHelpService(db, helpRepo, notifier, domain.NewMoney(cfg.MinDeposit))
	contactSvc := services.NewContactService(contactRepo, notifier)
	paySvc := services.NewPaymentService(db, orderRepo, helpRepo, proofs, cfg.UPI.Payee, cfg.UPI.Name)
	adminSvc := &services.AdminService{Prods: prodRepo, Orders: orderRepo, Help: helpRepo, Contacts: contactRepo}

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		HelpHandler:      &HelpHandler{Help: helpSvc},
		ContactHandler:   &ContactHandler{Contact: contactSvc},
		PaymentHandler:   &PaymentHandler{Payments: paySvc, MaxBytes: proofs.MaxBytes()},
		MediaHandler:     &MediaHandler{Dir: proofs.Dir()},
		AdminHandler:     &AdminHandler{Admin: adminSvc},
	}
}
