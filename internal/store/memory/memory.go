package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"pembukuan/backend/internal/domain"
	"pembukuan/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	products        []domain.Product
	categories      []domain.ExpenseCategory
	sales           []domain.Sale
	expenses        []domain.Expense
	usersByUsername map[string]domain.UserAccount

	nextProductID  int64
	nextCategoryID int64
	nextSaleID     int64
	nextExpenseID  int64
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_OWNER_PASSWORD and SEED_STAFF_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"owner", ownerPwd, "owner"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New returns an empty store with only the seeded user accounts.
func New() *Store {
	return &Store{
		products:        make([]domain.Product, 0, 16),
		categories:      make([]domain.ExpenseCategory, 0, 8),
		sales:           make([]domain.Sale, 0, 64),
		expenses:        make([]domain.Expense, 0, 64),
		usersByUsername: seedUsers(),
	}
}

// NewSeeded returns a store preloaded with a demo product catalog for
// dev mode.
func NewSeeded() *Store {
	s := New()
	seed := []struct {
		name  string
		price string
	}{
		{"Mie Goreng Instan", "3500"},
		{"Telur 10 Butir", "26500"},
		{"Susu UHT 1L", "18900"},
		{"Roti Tawar", "17800"},
		{"Kopi Sachet", "2600"},
		{"Gula 1kg", "17400"},
		{"Teh Celup", "9800"},
		{"Air Mineral 600ml", "3900"},
		{"Keripik Singkong", "12800"},
		{"Coklat Batang", "8600"},
	}
	for _, p := range seed {
		s.nextProductID++
		s.products = append(s.products, domain.Product{
			ID:    s.nextProductID,
			Name:  p.name,
			Price: decimal.RequireFromString(p.price),
		})
	}
	return s
}

// EnsureSchema is a no-op for the in-memory store.
func (s *Store) EnsureSchema(_ context.Context) error {
	return nil
}

func (s *Store) SeedDefaultCategories(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.categories) > 0 {
		return nil
	}
	for _, name := range domain.DefaultExpenseCategories {
		s.nextCategoryID++
		s.categories = append(s.categories, domain.ExpenseCategory{
			ID:   s.nextCategoryID,
			Name: name,
		})
	}
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, len(s.products))
	copy(products, s.products)
	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpInt64(a.ID, b.ID)
	})
	return products, nil
}

func (s *Store) InsertProduct(_ context.Context, product domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return 0, store.ErrInvalidRecord
	}
	if product.Price.IsNegative() {
		return 0, store.ErrInvalidRecord
	}

	s.nextProductID++
	product.ID = s.nextProductID
	s.products = append(s.products, product)
	return product.ID, nil
}

func (s *Store) ListExpenseCategories(_ context.Context) ([]domain.ExpenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.ExpenseCategory, len(s.categories))
	copy(categories, s.categories)
	slices.SortFunc(categories, func(a, b domain.ExpenseCategory) int {
		return cmpInt64(a.ID, b.ID)
	})
	return categories, nil
}

func (s *Store) InsertExpenseCategory(_ context.Context, category domain.ExpenseCategory) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return 0, store.ErrInvalidRecord
	}

	s.nextCategoryID++
	category.ID = s.nextCategoryID
	s.categories = append(s.categories, category)
	return category.ID, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, len(s.sales))
	copy(sales, s.sales)
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return cmpInt64(a.ID, b.ID)
	})
	return sales, nil
}

func (s *Store) InsertSale(_ context.Context, sale domain.Sale) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ProductID < 1 || sale.Quantity < 1 {
		return 0, store.ErrInvalidRecord
	}
	product, ok := s.findProduct(sale.ProductID)
	if !ok {
		return 0, store.ErrNotFound
	}
	if sale.Date == "" {
		return 0, store.ErrInvalidRecord
	}

	sale.ProductName = product.Name
	sale.Total = sale.UnitPrice.Mul(decimal.NewFromInt(int64(sale.Quantity)))
	s.nextSaleID++
	sale.ID = s.nextSaleID
	s.sales = append(s.sales, sale)
	return sale.ID, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]domain.Expense, len(s.expenses))
	copy(expenses, s.expenses)
	slices.SortFunc(expenses, func(a, b domain.Expense) int {
		return cmpInt64(a.ID, b.ID)
	})
	return expenses, nil
}

func (s *Store) InsertExpense(_ context.Context, expense domain.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense.Description = strings.TrimSpace(expense.Description)
	expense.PaymentMethod = strings.TrimSpace(expense.PaymentMethod)
	if expense.Description == "" || expense.PaymentMethod == "" {
		return 0, store.ErrInvalidRecord
	}
	if expense.CategoryID < 1 {
		return 0, store.ErrInvalidRecord
	}
	category, ok := s.findCategory(expense.CategoryID)
	if !ok {
		return 0, store.ErrNotFound
	}
	if expense.Date == "" {
		return 0, store.ErrInvalidRecord
	}

	expense.CategoryName = category.Name
	s.nextExpenseID++
	expense.ID = s.nextExpenseID
	s.expenses = append(s.expenses, expense)
	return expense.ID, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRecord
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) findProduct(id int64) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) findCategory(id int64) (domain.ExpenseCategory, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return domain.ExpenseCategory{}, false
}

func cmpInt64(a int64, b int64) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}
