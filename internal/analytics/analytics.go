// Package analytics computes the sales dashboard figures. Every function is
// pure: the caller passes the full sales slice and the reference day, which
// keeps period windows deterministic under test.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pembukuan/backend/internal/domain"
)

// ChartPalette is assigned to products in first-seen order, cycling when
// there are more than ten products.
var ChartPalette = []string{
	"#8884d8", "#82ca9d", "#ffc658", "#ff7300", "#00ff00",
	"#0088fe", "#ff8042", "#ffbb28", "#8dd1e1", "#d084d0",
}

// PeriodDays maps a period label to its trailing window length in days.
// Unknown labels return 0, which callers treat as no period filter.
func PeriodDays(period string) int {
	switch period {
	case domain.Last7Days:
		return 7
	case domain.Last30Days:
		return 30
	case domain.Last90Days:
		return 90
	default:
		return 0
	}
}

// Filter returns the sales matching the product and period filters. Dates are
// ISO calendar strings so the cutoff comparison is a plain string compare;
// rows with malformed dates sort below any real cutoff and drop out.
func Filter(sales []domain.Sale, product string, period string, today time.Time) []domain.Sale {
	filtered := sales
	if product != domain.AllProducts {
		kept := make([]domain.Sale, 0, len(filtered))
		for _, sale := range filtered {
			if sale.ProductName == product {
				kept = append(kept, sale)
			}
		}
		filtered = kept
	}

	if period != domain.AllTime {
		if days := PeriodDays(period); days > 0 {
			cutoff := today.AddDate(0, 0, -days).Format(domain.DateLayout)
			kept := make([]domain.Sale, 0, len(filtered))
			for _, sale := range filtered {
				if sale.Date >= cutoff {
					kept = append(kept, sale)
				}
			}
			filtered = kept
		}
	}

	return filtered
}

// Metrics aggregates revenue, order count, average order value and items sold
// over the already-filtered sales.
func Metrics(filtered []domain.Sale) domain.SalesMetrics {
	metrics := domain.SalesMetrics{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, sale := range filtered {
		metrics.TotalRevenue = metrics.TotalRevenue.Add(sale.Total)
		metrics.ItemsSold += sale.Quantity
	}
	metrics.TotalOrders = len(filtered)
	if metrics.TotalOrders > 0 {
		metrics.AverageOrderValue = metrics.TotalRevenue.Div(decimal.NewFromInt(int64(metrics.TotalOrders)))
	}
	return metrics
}

// Growth compares the trailing window against the one before it. All Time
// compares the last 30 days with the 30 days before that; named periods use
// their own length, and an unrecognized period falls back to 30 days. A zero
// previous window reports 0 growth rather than a division blowup.
func Growth(sales []domain.Sale, product string, period string, today time.Time) domain.GrowthMetrics {
	days := 30
	if period != domain.AllTime {
		if d := PeriodDays(period); d > 0 {
			days = d
		}
	}

	currentCutoff := today.AddDate(0, 0, -days).Format(domain.DateLayout)
	previousCutoff := today.AddDate(0, 0, -2*days).Format(domain.DateLayout)

	currentRevenue := decimal.Zero
	previousRevenue := decimal.Zero
	currentOrders := 0
	previousOrders := 0

	for _, sale := range sales {
		if product != domain.AllProducts && sale.ProductName != product {
			continue
		}
		switch {
		case sale.Date >= currentCutoff:
			currentRevenue = currentRevenue.Add(sale.Total)
			currentOrders++
		case sale.Date >= previousCutoff:
			previousRevenue = previousRevenue.Add(sale.Total)
			previousOrders++
		}
	}

	var growth domain.GrowthMetrics
	if previousRevenue.IsPositive() {
		growth.RevenueGrowth = currentRevenue.Sub(previousRevenue).
			Div(previousRevenue).
			Mul(decimal.NewFromInt(100)).
			InexactFloat64()
	}
	if previousOrders > 0 {
		growth.OrdersGrowth = float64(currentOrders-previousOrders) / float64(previousOrders) * 100
	}
	return growth
}

// ChartData builds the daily revenue series and the per-product aggregation.
// Daily points come back ascending by date. Products keep first-seen order
// and take their palette color from that position.
func ChartData(filtered []domain.Sale) ([]domain.DailyRevenuePoint, []domain.ProductSales) {
	dailyTotals := make(map[string]decimal.Decimal)
	for _, sale := range filtered {
		dailyTotals[sale.Date] = dailyTotals[sale.Date].Add(sale.Total)
	}
	dates := make([]string, 0, len(dailyTotals))
	for date := range dailyTotals {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	daily := make([]domain.DailyRevenuePoint, 0, len(dates))
	for _, date := range dates {
		daily = append(daily, domain.DailyRevenuePoint{Date: date, Revenue: dailyTotals[date]})
	}

	productIndex := make(map[string]int)
	products := make([]domain.ProductSales, 0, 16)
	for _, sale := range filtered {
		idx, seen := productIndex[sale.ProductName]
		if !seen {
			idx = len(products)
			productIndex[sale.ProductName] = idx
			products = append(products, domain.ProductSales{
				Product: sale.ProductName,
				Revenue: decimal.Zero,
				Fill:    ChartPalette[idx%len(ChartPalette)],
			})
		}
		products[idx].Revenue = products[idx].Revenue.Add(sale.Total)
		products[idx].Quantity += sale.Quantity
	}

	return daily, products
}

// TopProducts picks the five highest-revenue products and formats them for
// the dashboard table. The sort is stable so revenue ties keep first-seen
// order.
func TopProducts(products []domain.ProductSales) []domain.TopProductRow {
	ranked := make([]domain.ProductSales, len(products))
	copy(ranked, products)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	rows := make([]domain.TopProductRow, 0, len(ranked))
	for _, item := range ranked {
		rows = append(rows, domain.TopProductRow{
			Product:  item.Product,
			Revenue:  FormatRupiah(item.Revenue),
			Quantity: groupThousands(int64(item.Quantity)),
		})
	}
	return rows
}

// FormatRupiah renders a money amount as "Rp 1,234" with the fraction
// rounded away.
func FormatRupiah(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	negative := rounded.IsNegative()
	digits := rounded.Abs().String()
	grouped := groupDigits(digits)
	if negative {
		return "Rp -" + grouped
	}
	return "Rp " + grouped
}

func groupThousands(n int64) string {
	if n < 0 {
		return "-" + groupDigits(decimal.NewFromInt(-n).String())
	}
	return groupDigits(decimal.NewFromInt(n).String())
}

func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
