package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record types mirror the pembukuan schema. Money columns are NUMERIC(12,2)
// in the database, so they stay decimal end to end.

type Product struct {
	ID    int64           `json:"id_produk"`
	Name  string          `json:"nama_produk"`
	Price decimal.Decimal `json:"harga_produk"`
}

type ExpenseCategory struct {
	ID   int64  `json:"id_kategori"`
	Name string `json:"nama_kategori"`
}

// Sale carries the product name denormalized from the produk join. Total is a
// stored generated column (kuantitas * harga_saat_penjualan) and is never
// written by the application.
type Sale struct {
	ID          int64           `json:"id_penjualan"`
	ProductID   int64           `json:"id_produk"`
	ProductName string          `json:"nama_produk"`
	Quantity    int             `json:"kuantitas"`
	UnitPrice   decimal.Decimal `json:"harga_saat_penjualan"`
	Total       decimal.Decimal `json:"total"`
	Note        string          `json:"catatan"`
	Date        string          `json:"tanggal_penjualan"`
}

type Expense struct {
	ID            int64           `json:"id_belanja"`
	Description   string          `json:"deskripsi"`
	CategoryID    int64           `json:"id_kategori_pengeluaran"`
	CategoryName  string          `json:"nama_kategori"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"metode_pembayaran"`
	ReceiptRef    string          `json:"bukti_transaksi"`
	Note          string          `json:"catatan"`
	Date          string          `json:"tanggal_pengeluaran"`
}

// Item is a legacy generic row kept for the items tab, loaded from CSV.
type Item struct {
	Name    string  `json:"name"`
	Payment float64 `json:"payment"`
	Date    string  `json:"date"`
	Status  string  `json:"status"`
}

// Field bundles arrive as raw strings, exactly as form widgets produce them.
// Parsing and defaulting happen in the service layer.

type SaleFields struct {
	Date      string `json:"tanggal_penjualan"`
	ProductID string `json:"id_produk"`
	Quantity  string `json:"kuantitas"`
	UnitPrice string `json:"harga_saat_penjualan"`
	Note      string `json:"catatan"`
}

type ExpenseFields struct {
	Date          string `json:"tanggal_pengeluaran"`
	Description   string `json:"deskripsi"`
	CategoryID    string `json:"id_kategori_pengeluaran"`
	Total         string `json:"total"`
	PaymentMethod string `json:"metode_pembayaran"`
	ReceiptRef    string `json:"bukti_transaksi"`
	Note          string `json:"catatan"`
}

type ProductFields struct {
	Name  string `json:"nama_produk"`
	Price string `json:"harga_produk"`
}

// Form state for the pembukuan page. Product and Category hold the
// human-readable names shown in the dropdowns; the controller resolves them
// back to ids on submit.

type SaleForm struct {
	Product   string `json:"product"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
	Note      string `json:"note"`
	Date      string `json:"date"`
}

type ExpenseForm struct {
	Description   string `json:"description"`
	Category      string `json:"category"`
	Total         string `json:"total"`
	PaymentMethod string `json:"payment_method"`
	ReceiptRef    string `json:"receipt_ref"`
	Note          string `json:"note"`
	Date          string `json:"date"`
}

type NewProductForm struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type SalesMetrics struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ItemsSold         int             `json:"items_sold"`
}

type GrowthMetrics struct {
	RevenueGrowth float64 `json:"revenue_growth"`
	OrdersGrowth  float64 `json:"orders_growth"`
}

type DailyRevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	Product  string          `json:"product"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int             `json:"quantity"`
	Fill     string          `json:"fill"`
}

// TopProductRow holds display-formatted values for the top products table.
type TopProductRow struct {
	Product  string `json:"product"`
	Revenue  string `json:"revenue"`
	Quantity string `json:"quantity"`
}

type DashboardSnapshot struct {
	Product        string              `json:"product"`
	Period         string              `json:"period"`
	Metrics        SalesMetrics        `json:"metrics"`
	Growth         GrowthMetrics       `json:"growth"`
	DailyRevenue   []DailyRevenuePoint `json:"daily_revenue"`
	ProductSales   []ProductSales      `json:"product_sales"`
	TopProducts    []TopProductRow     `json:"top_products"`
	ProductOptions []string            `json:"product_options"`
	GeneratedAt    string              `json:"generated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	TabSales    = "penjualan"
	TabExpenses = "belanja"
	TabLegacy   = "items"
)

const (
	AllProducts = "All Products"
	AllTime     = "All Time"
	Last7Days   = "Last 7 Days"
	Last30Days  = "Last 30 Days"
	Last90Days  = "Last 90 Days"
)

// DateLayout is the calendar-date format used everywhere. Dates never carry
// a time component or a timezone.
const DateLayout = "2006-01-02"

// DefaultExpenseCategories are seeded once when the category table is empty.
var DefaultExpenseCategories = []string{
	"Food & Beverages",
	"Transportation",
	"Office Supplies",
	"Marketing",
	"Utilities",
	"Equipment",
	"Other",
}
