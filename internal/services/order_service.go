package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
	"aaf11/internal/validate"
)

const (
	defaultPaymentMethod = "qr_code"
	maxItemQuantity      = 1000
)

type OrderService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Notifier Notifier
}

func NewOrderService(db *sqlx.DB, prods *repos.ProductRepo, orders *repos.OrderRepo, n Notifier) *OrderService {
	return &OrderService{DB: db, Products: prods, Orders: orders, Notifier: notifierOrNop(n)}
}

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderInput is the checkout payload. TotalAmount is what the client showed
// the customer; when present it must match the server-side total.
type OrderInput struct {
	domain.Customer
	Items         []OrderItemInput `json:"items"`
	TotalAmount   *domain.Money    `json:"totalAmount"`
	PaymentMethod string           `json:"paymentMethod"`
}

func validateCustomer(v *domain.ValidationError, in domain.Customer) domain.Customer {
	var c domain.Customer
	var ok bool
	if c.Name, ok = validate.Text(in.Name, 100); !ok {
		v.Add("customerName", "required, at most 100 characters")
	}
	if c.Email, ok = validate.Email(in.Email); !ok {
		v.Add("customerEmail", "must be a valid email address")
	}
	if c.Phone, ok = validate.Phone(in.Phone); !ok {
		v.Add("customerPhone", "must be a valid phone number")
	}
	if in.USN != "" {
		if c.USN, ok = validate.USN(in.USN); !ok {
			v.Add("customerUsn", "letters and digits only")
		}
	}
	if c.Year, ok = validate.OptionalText(in.Year, 20); !ok {
		v.Add("customerYear", "at most 20 characters")
	}
	if c.Semester, ok = validate.OptionalText(in.Semester, 20); !ok {
		v.Add("customerSemester", "at most 20 characters")
	}
	return c
}

// validate checks the payload and merges repeated products into one line.
func (in OrderInput) validate() (domain.Customer, []OrderItemInput, string, error) {
	v := domain.NewValidationError()
	c := validateCustomer(v, in.Customer)

	if len(in.Items) == 0 {
		v.Add("items", "at least one item is required")
	}
	var items []OrderItemInput
	seen := map[string]int{}
	for i, it := range in.Items {
		id, ok := validate.ID(it.ProductID)
		if !ok {
			v.Add(fmt.Sprintf("items[%d].productId", i), "required")
			continue
		}
		if it.Quantity < 1 || it.Quantity > maxItemQuantity {
			v.Add(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must be between 1 and %d", maxItemQuantity))
			continue
		}
		if j, dup := seen[id]; dup {
			items[j].Quantity += it.Quantity
			continue
		}
		seen[id] = len(items)
		items = append(items, OrderItemInput{ProductID: id, Quantity: it.Quantity})
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		v.Add("totalAmount", "must not be negative")
	}

	method := defaultPaymentMethod
	if in.PaymentMethod != "" {
		var ok bool
		if method, ok = validate.Text(in.PaymentMethod, 30); !ok {
			v.Add("paymentMethod", "at most 30 characters")
		}
	}
	return c, items, method, v.Err()
}

// Create places an order. Every line item decrements stock in the same
// transaction that inserts the order, so a failed item or a total mismatch
// leaves stock untouched.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (domain.Order, error) {
	cust, items, method, err := in.validate()
	if err != nil {
		return domain.Order{}, err
	}
	o := domain.Order{
		ID:            uuid.NewString(),
		Customer:      cust,
		Status:        domain.OrderPending,
		PaymentMethod: method,
		CreatedAt:     domain.Now(),
	}
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		o.Items = make([]domain.LineItem, 0, len(items))
		total := domain.MoneyFromInt(0)
		for _, it := range items {
			p, err := s.Products.DecrementStock(ctx, tx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			li := domain.LineItem{ProductID: p.ID, Name: p.Name, Quantity: it.Quantity, UnitPrice: p.Price}
			o.Items = append(o.Items, li)
			total = total.Plus(li.Subtotal())
		}
		if in.TotalAmount != nil && !in.TotalAmount.Equals(total) {
			return fmt.Errorf("client sent %s, items sum to %s: %w", in.TotalAmount, total, domain.ErrTotalMismatch)
		}
		o.TotalAmount = total
		return s.Orders.Create(ctx, tx, &o)
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.Notifier.OrderPlaced(o)
	return o, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx)
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return domain.Order{}, domain.FieldError("status", "must be one of pending, paid, completed, cancelled")
	}
	var out domain.Order
	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		cur, err := s.Orders.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !cur.Status.CanTransitionTo(next) {
			return fmt.Errorf("order %s %s -> %s: %w", id, cur.Status, next, domain.ErrInvalidTransition)
		}
		if err := s.Orders.UpdateStatus(ctx, tx, id, cur.Status, next); err != nil {
			return err
		}
		cur.Status = next
		out = cur
		return nil
	})
	return out, err
}
