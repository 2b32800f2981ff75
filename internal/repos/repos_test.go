package repos_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newProduct(t *testing.T, r *repos.ProductRepo, name, category string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Description: name + " desc", Price: domain.MustMoney("100.00"),
		Stock: stock, Image: "img.jpg", Category: category}
	require.NoError(t, r.Create(context.Background(), &p))
	return p
}

func TestProductRepo_ListNewestFirstAndFilter(t *testing.T) {
	ctx := context.Background()
	r := repos.NewProductRepo(memdb(t))
	a := newProduct(t, r, "Arduino Uno", "Development Boards", 3)
	b := newProduct(t, r, "HC-SR04", "Sensors", 2)

	all, err := r.List(ctx, repos.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)

	sensors, err := r.List(ctx, repos.ProductFilter{Category: "sensor"})
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.Equal(t, "HC-SR04", sensors[0].Name)

	byText, err := r.List(ctx, repos.ProductFilter{Q: "ARDUINO"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "100.00", byText[0].Price.String())

	cats, err := r.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryCount{{Category: "Development Boards", Count: 1}, {Category: "Sensors", Count: 1}}, cats)
}

func TestProductRepo_GetMissing(t *testing.T) {
	r := repos.NewProductRepo(memdb(t))
	_, err := r.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_DecrementStock(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	r := repos.NewProductRepo(db)
	p := newProduct(t, r, "Servo", "Motors", 5)

	err := repos.InTx(ctx, db, func(tx *sqlx.Tx) error {
		after, err := r.DecrementStock(ctx, tx, p.ID, 3)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, after.Stock)
		return nil
	})
	require.NoError(t, err)

	err = repos.InTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := r.DecrementStock(ctx, tx, p.ID, 3)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	err = repos.InTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := r.DecrementStock(ctx, tx, "missing", 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestSeedProductsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := repos.NewProductRepo(memdb(t))
	n, err := repos.SeedProducts(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, len(repos.SampleProducts()), n)

	n, err = repos.SeedProducts(ctx, r)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderRepo_CreateGetList(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)
	p := newProduct(t, prods, "LED Kit", "Components", 10)

	o := domain.Order{
		ID:            "order-1",
		Customer:      domain.Customer{Name: "Asha", Email: "asha@college.edu", Phone: "9876543210"},
		Items:         []domain.LineItem{{ProductID: p.ID, Name: p.Name, Quantity: 2, UnitPrice: p.Price}},
		TotalAmount:   domain.MustMoney("200"),
		Status:        domain.OrderPending,
		PaymentMethod: "qr_code",
		CreatedAt:     domain.Now(),
	}
	require.NoError(t, repos.InTx(ctx, db, func(tx *sqlx.Tx) error { return orders.Create(ctx, tx, &o) }))

	got, err := orders.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Customer.Name)
	assert.Equal(t, "200.00", got.TotalAmount.String())
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Nil(t, got.PaymentScreenshot)

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)

	err = repos.InTx(ctx, db, func(tx *sqlx.Tx) error {
		return orders.UpdateStatus(ctx, tx, "order-1", domain.OrderPaid, domain.OrderCompleted)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "stale from-status must not match")

	_, err = orders.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_UpsertAndSessions(t *testing.T) {
	ctx := context.Background()
	users := repos.NewUserRepo(memdb(t))
	u := &domain.User{Username: "Admin", Hash: "h1", Role: domain.RoleAdmin}
	require.NoError(t, users.Upsert(ctx, u))
	require.NoError(t, users.Upsert(ctx, &domain.User{Username: "admin", Hash: "h2", Role: domain.RoleAdmin}))

	got, err := users.ByUsername(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "h2", got.Hash)

	require.NoError(t, users.BindSession(ctx, "sid-1", got.ID))
	su, err := users.SessionUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, su.IsAdmin())

	require.NoError(t, users.UnbindSession(ctx, "sid-1"))
	_, err = users.SessionUser(ctx, "sid-1")
	assert.Error(t, err)
}

func TestCountsAndLowStock(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	contacts := repos.NewContactRepo(db)
	newProduct(t, prods, "Empty", "Misc", 0)
	newProduct(t, prods, "Few", "Misc", 3)
	newProduct(t, prods, "Plenty", "Misc", 40)

	low, err := prods.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Empty", low[0].Name)

	for i := 0; i < 2; i++ {
		require.NoError(t, contacts.Create(ctx, &domain.ContactMessage{Name: "n", Email: "e@x.in", Subject: "s", Message: "m", Status: domain.ContactUnread}))
	}
	counts, err := contacts.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"unread": 2}, counts)

	orders, err := repos.NewOrderRepo(db).CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
