package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pembukuan/backend/internal/cache"
	"pembukuan/backend/internal/domain"
	"pembukuan/backend/internal/store"
	"pembukuan/backend/internal/store/memory"
)

func newTestService() *Service {
	svc := New(memory.New(), cache.NoopDashboardCache{}, time.Minute)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func seedProduct(t *testing.T, svc *Service, name string, price string) int64 {
	t.Helper()
	id, err := svc.InsertProduct(context.Background(), domain.ProductFields{
		Name:  name,
		Price: price,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return id
}

func TestInsertSaleRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	productID := seedProduct(t, svc, "Kopi Sachet", "1500.00")

	id, err := svc.InsertSale(ctx, domain.SaleFields{
		Date:      "2024-01-09",
		ProductID: "1",
		Quantity:  "3",
		UnitPrice: "1500.00",
		Note:      "pagi",
	})
	if err != nil {
		t.Fatalf("insert sale failed: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected sale id 1, got %d", id)
	}

	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}
	sale := sales[0]
	if sale.ProductID != productID {
		t.Fatalf("expected product id %d, got %d", productID, sale.ProductID)
	}
	if sale.ProductName != "Kopi Sachet" {
		t.Fatalf("expected denormalized product name, got %q", sale.ProductName)
	}
	if !sale.Total.Equal(decimal.RequireFromString("4500.00")) {
		t.Fatalf("expected total 4500.00, got %s", sale.Total)
	}
	if sale.Date != "2024-01-09" {
		t.Fatalf("expected date 2024-01-09, got %s", sale.Date)
	}
}

func TestInsertSaleDefaultsDateAndRejectsBadNumerics(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedProduct(t, svc, "Teh Celup", "9800")

	id, err := svc.InsertSale(ctx, domain.SaleFields{
		Date:      "not-a-date",
		ProductID: "1",
		Quantity:  "2",
		UnitPrice: "9800",
	})
	if err != nil {
		t.Fatalf("insert sale failed: %v", err)
	}
	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if sales[0].ID != id || sales[0].Date != "2024-01-10" {
		t.Fatalf("expected malformed date to default to today, got %s", sales[0].Date)
	}

	// Blank quantity parses to zero and fails validation.
	if _, err := svc.InsertSale(ctx, domain.SaleFields{ProductID: "1", Quantity: ""}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for blank quantity, got %v", err)
	}
	if _, err := svc.InsertSale(ctx, domain.SaleFields{ProductID: "1", Quantity: "0"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for zero quantity, got %v", err)
	}
	if _, err := svc.InsertSale(ctx, domain.SaleFields{ProductID: "", Quantity: "2"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for blank product id, got %v", err)
	}
}

func TestInsertSaleUnknownProduct(t *testing.T) {
	svc := newTestService()

	_, err := svc.InsertSale(context.Background(), domain.SaleFields{
		ProductID: "99",
		Quantity:  "1",
		UnitPrice: "1000",
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}
}

func TestInsertExpenseValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if err := svc.SeedDefaultCategories(ctx); err != nil {
		t.Fatalf("seed categories failed: %v", err)
	}

	id, err := svc.InsertExpense(ctx, domain.ExpenseFields{
		Description:   "Beli gas",
		CategoryID:    "1",
		Total:         "25000",
		PaymentMethod: "Cash",
		Note:          "warung",
	})
	if err != nil {
		t.Fatalf("insert expense failed: %v", err)
	}

	expenses, err := svc.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list expenses failed: %v", err)
	}
	if len(expenses) != 1 || expenses[0].ID != id {
		t.Fatalf("expected 1 expense with id %d, got %+v", id, expenses)
	}
	if expenses[0].CategoryName != domain.DefaultExpenseCategories[0] {
		t.Fatalf("expected joined category name, got %q", expenses[0].CategoryName)
	}
	if expenses[0].Date != "2024-01-10" {
		t.Fatalf("expected blank date to default to today, got %s", expenses[0].Date)
	}

	if _, err := svc.InsertExpense(ctx, domain.ExpenseFields{CategoryID: "1", PaymentMethod: "Cash"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for missing description, got %v", err)
	}
	if _, err := svc.InsertExpense(ctx, domain.ExpenseFields{Description: "x", CategoryID: "1"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for missing payment method, got %v", err)
	}
	if _, err := svc.InsertExpense(ctx, domain.ExpenseFields{Description: "x", PaymentMethod: "Cash"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for missing category, got %v", err)
	}
}

func TestSeedDefaultCategoriesOnlyOnce(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.SeedDefaultCategories(ctx); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := svc.SeedDefaultCategories(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	categories, err := svc.ListExpenseCategories(ctx)
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(categories) != len(domain.DefaultExpenseCategories) {
		t.Fatalf("expected %d categories, got %d", len(domain.DefaultExpenseCategories), len(categories))
	}
}

func TestInsertProductRequiresName(t *testing.T) {
	svc := newTestService()

	if _, err := svc.InsertProduct(context.Background(), domain.ProductFields{Name: "  ", Price: "100"}); !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for blank name, got %v", err)
	}

	id, err := svc.InsertProduct(context.Background(), domain.ProductFields{Name: "Gula 1kg", Price: "bad"})
	if err != nil {
		t.Fatalf("insert product failed: %v", err)
	}
	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if products[0].ID != id || !products[0].Price.IsZero() {
		t.Fatalf("expected unparsable price to default to zero, got %s", products[0].Price)
	}
}

func TestDashboardSnapshot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedProduct(t, svc, "Kopi Sachet", "100")

	for _, date := range []string{"2024-01-08", "2024-01-09"} {
		if _, err := svc.InsertSale(ctx, domain.SaleFields{
			Date:      date,
			ProductID: "1",
			Quantity:  "1",
			UnitPrice: "100",
		}); err != nil {
			t.Fatalf("insert sale failed: %v", err)
		}
	}

	snapshot, err := svc.Dashboard(ctx, "", "")
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if snapshot.Product != domain.AllProducts || snapshot.Period != domain.AllTime {
		t.Fatalf("expected blank filters to default, got %s / %s", snapshot.Product, snapshot.Period)
	}
	if !snapshot.Metrics.TotalRevenue.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected revenue 200, got %s", snapshot.Metrics.TotalRevenue)
	}
	if snapshot.Metrics.TotalOrders != 2 {
		t.Fatalf("expected 2 orders, got %d", snapshot.Metrics.TotalOrders)
	}
	if len(snapshot.DailyRevenue) != 2 {
		t.Fatalf("expected 2 daily points, got %d", len(snapshot.DailyRevenue))
	}
	if len(snapshot.ProductOptions) != 2 || snapshot.ProductOptions[0] != domain.AllProducts {
		t.Fatalf("expected All Products option first, got %v", snapshot.ProductOptions)
	}
}

type countingCache struct {
	snapshot *domain.DashboardSnapshot
	gets     int
	sets     int
}

func (c *countingCache) Get(_ context.Context, _ string) (*domain.DashboardSnapshot, bool, error) {
	c.gets++
	if c.snapshot != nil {
		return c.snapshot, true, nil
	}
	return nil, false, nil
}

func (c *countingCache) Set(_ context.Context, _ string, value *domain.DashboardSnapshot, _ time.Duration) error {
	c.sets++
	c.snapshot = value
	return nil
}

func TestDashboardUsesCache(t *testing.T) {
	cacheSpy := &countingCache{}
	svc := New(memory.New(), cacheSpy, time.Minute)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	if _, err := svc.Dashboard(ctx, "", ""); err != nil {
		t.Fatalf("first dashboard call failed: %v", err)
	}
	if cacheSpy.sets != 1 {
		t.Fatalf("expected one cache set, got %d", cacheSpy.sets)
	}

	if _, err := svc.Dashboard(ctx, "", ""); err != nil {
		t.Fatalf("second dashboard call failed: %v", err)
	}
	if cacheSpy.sets != 1 {
		t.Fatalf("expected cached snapshot to be reused, got %d sets", cacheSpy.sets)
	}
	if cacheSpy.gets != 2 {
		t.Fatalf("expected two cache gets, got %d", cacheSpy.gets)
	}
}
