package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pembukuan/backend/internal/analytics"
	"pembukuan/backend/internal/cache"
	"pembukuan/backend/internal/domain"
	"pembukuan/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo      store.Repository
	dashCache cache.DashboardCache
	cacheTTL  time.Duration

	// now is replaced in tests to pin period windows.
	now func() time.Time
}

func New(repo store.Repository, dashCache cache.DashboardCache, cacheTTL time.Duration) *Service {
	if dashCache == nil {
		dashCache = cache.NoopDashboardCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}

	return &Service{
		repo:      repo,
		dashCache: dashCache,
		cacheTTL:  cacheTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) EnsureSchema(ctx context.Context) error {
	return s.repo.EnsureSchema(ctx)
}

func (s *Service) SeedDefaultCategories(ctx context.Context) error {
	return s.repo.SeedDefaultCategories(ctx)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	return s.repo.ListExpenseCategories(ctx)
}

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx)
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx)
}

// InsertProduct creates a product from raw form fields. A blank or
// unparsable price defaults to zero.
func (s *Service) InsertProduct(ctx context.Context, fields domain.ProductFields) (int64, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return 0, store.ErrInvalidRecord
	}

	return s.repo.InsertProduct(ctx, domain.Product{
		Name:  name,
		Price: parseAmount(fields.Price),
	})
}

func (s *Service) InsertExpenseCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, store.ErrInvalidRecord
	}
	return s.repo.InsertExpenseCategory(ctx, domain.ExpenseCategory{Name: name})
}

// InsertSale parses raw form fields into a sale row. A missing or malformed
// date falls back to today; blank numeric fields parse to zero, which then
// fails validation for product id and quantity.
func (s *Service) InsertSale(ctx context.Context, fields domain.SaleFields) (int64, error) {
	sale := domain.Sale{
		Date:      normalizeDate(fields.Date, s.now()),
		ProductID: parseID(fields.ProductID),
		Quantity:  parseQuantity(fields.Quantity),
		UnitPrice: parseAmount(fields.UnitPrice),
		Note:      strings.TrimSpace(fields.Note),
	}
	if sale.ProductID < 1 || sale.Quantity < 1 {
		return 0, store.ErrInvalidRecord
	}

	return s.repo.InsertSale(ctx, sale)
}

func (s *Service) InsertExpense(ctx context.Context, fields domain.ExpenseFields) (int64, error) {
	expense := domain.Expense{
		Date:          normalizeDate(fields.Date, s.now()),
		Description:   strings.TrimSpace(fields.Description),
		CategoryID:    parseID(fields.CategoryID),
		Total:         parseAmount(fields.Total),
		PaymentMethod: strings.TrimSpace(fields.PaymentMethod),
		ReceiptRef:    strings.TrimSpace(fields.ReceiptRef),
		Note:          strings.TrimSpace(fields.Note),
	}
	if expense.Description == "" || expense.PaymentMethod == "" || expense.CategoryID < 1 {
		return 0, store.ErrInvalidRecord
	}

	return s.repo.InsertExpense(ctx, expense)
}

// Dashboard assembles the sales analytics snapshot for the given filters.
// Snapshots are cached per product, period and calendar day. Read failures
// degrade to an empty dataset instead of failing the page.
func (s *Service) Dashboard(ctx context.Context, product string, period string) (domain.DashboardSnapshot, error) {
	if strings.TrimSpace(product) == "" {
		product = domain.AllProducts
	}
	if strings.TrimSpace(period) == "" {
		period = domain.AllTime
	}
	today := s.now()

	key := fmt.Sprintf("dashboard:%s|%s|%s", product, period, today.Format(domain.DateLayout))
	cached, found, err := s.dashCache.Get(ctx, key)
	if err != nil {
		log.Printf("[service] WARN: dashboard cache get failed: %v", err)
	} else if found {
		return *cached, nil
	}

	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		log.Printf("[service] WARN: failed to load sales for dashboard: %v", err)
		sales = nil
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		log.Printf("[service] WARN: failed to load products for dashboard: %v", err)
		products = nil
	}

	filtered := analytics.Filter(sales, product, period, today)
	metrics := analytics.Metrics(filtered)
	growth := analytics.Growth(sales, product, period, today)
	daily, productSales := analytics.ChartData(filtered)
	topProducts := analytics.TopProducts(productSales)

	options := make([]string, 0, len(products)+1)
	options = append(options, domain.AllProducts)
	for _, p := range products {
		options = append(options, p.Name)
	}

	snapshot := domain.DashboardSnapshot{
		Product:        product,
		Period:         period,
		Metrics:        metrics,
		Growth:         growth,
		DailyRevenue:   daily,
		ProductSales:   productSales,
		TopProducts:    topProducts,
		ProductOptions: options,
		GeneratedAt:    today.Format(time.RFC3339),
	}

	if err := s.dashCache.Set(ctx, key, &snapshot, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: dashboard cache set failed: %v", err)
	}

	return snapshot, nil
}

// normalizeDate accepts a YYYY-MM-DD string and falls back to today's date
// when the value is blank or does not parse.
func normalizeDate(raw string, today time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today.Format(domain.DateLayout)
	}
	if _, err := time.Parse(domain.DateLayout, raw); err != nil {
		return today.Format(domain.DateLayout)
	}
	return raw
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func parseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return qty
}

func parseAmount(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return amount
}
