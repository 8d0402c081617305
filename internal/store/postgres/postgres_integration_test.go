package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pembukuan/backend/internal/domain"
)

func TestInsertSaleComputesStoredTotal(t *testing.T) {
	databaseURL := os.Getenv("PEMBUKUAN_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set PEMBUKUAN_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	stamp := time.Now().UnixNano()
	productName := fmt.Sprintf("Produk IT %d", stamp)

	productID, err := s.InsertProduct(ctx, domain.Product{
		Name:  productName,
		Price: decimal.RequireFromString("1500.00"),
	})
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM penjualan WHERE id_produk = $1`, productID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM produk WHERE id_produk = $1`, productID)
	})

	saleID, err := s.InsertSale(ctx, domain.Sale{
		ProductID: productID,
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("1500.00"),
		Note:      "integration test sale",
		Date:      "2024-01-10",
	})
	if err != nil {
		t.Fatalf("insert sale: %v", err)
	}

	var total decimal.Decimal
	var date string
	if err := s.db.QueryRowContext(ctx, `
		SELECT total, to_char(tanggal_penjualan, 'YYYY-MM-DD')
		FROM penjualan
		WHERE id_penjualan = $1
	`, saleID).Scan(&total, &date); err != nil {
		t.Fatalf("query sale: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("4500.00")) {
		t.Fatalf("expected stored total 4500.00, got %s", total)
	}
	if date != "2024-01-10" {
		t.Fatalf("expected date 2024-01-10, got %s", date)
	}

	sales, err := s.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	found := false
	for _, sale := range sales {
		if sale.ID != saleID {
			continue
		}
		found = true
		if sale.ProductName != productName {
			t.Fatalf("expected joined product name %q, got %q", productName, sale.ProductName)
		}
		if sale.Quantity != 3 {
			t.Fatalf("expected quantity 3, got %d", sale.Quantity)
		}
	}
	if !found {
		t.Fatalf("inserted sale %d missing from list", saleID)
	}
}

func TestSeedDefaultCategoriesIsIdempotent(t *testing.T) {
	databaseURL := os.Getenv("PEMBUKUAN_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set PEMBUKUAN_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := s.SeedDefaultCategories(ctx); err != nil {
		t.Fatalf("seed categories: %v", err)
	}
	first, err := s.ListExpenseCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("expected at least one category after seeding")
	}

	if err := s.SeedDefaultCategories(ctx); err != nil {
		t.Fatalf("seed categories again: %v", err)
	}
	second, err := s.ListExpenseCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("expected seeding to be a no-op, got %d then %d categories", len(first), len(second))
	}
}
