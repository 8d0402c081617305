// Package tableview holds the per-session state behind the bookkeeping page:
// the active tab, pagination, form drafts and the legacy items table. One
// Controller exists per client session and is not safe for concurrent use;
// callers serialize access through Lock/Unlock.
package tableview

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"pembukuan/backend/internal/domain"
	"pembukuan/backend/internal/service"
)

const defaultPageSize = 12

type Controller struct {
	sync.Mutex

	svc       *service.Service
	itemsPath string

	SelectedTab string

	Items      []domain.Item
	Sales      []domain.Sale
	Expenses   []domain.Expense
	Products   []domain.Product
	Categories []domain.ExpenseCategory

	SaleForm    domain.SaleForm
	ExpenseForm domain.ExpenseForm
	NewProduct  domain.NewProductForm

	ErrorMessage   string
	SuccessMessage string

	SearchValue string
	SortValue   string
	SortReverse bool

	TotalItems int
	Offset     int
	Limit      int
}

func NewController(svc *service.Service, itemsPath string) *Controller {
	if itemsPath == "" {
		itemsPath = "items.csv"
	}
	return &Controller{
		svc:         svc,
		itemsPath:   itemsPath,
		SelectedTab: domain.TabSales,
		Limit:       defaultPageSize,
	}
}

// LoadData refreshes the active tab's rows from storage. The schema and the
// default categories are ensured first so a fresh database works on first
// page load. Failures are logged and leave the previous rows in place.
func (c *Controller) LoadData(ctx context.Context) {
	if err := c.svc.EnsureSchema(ctx); err != nil {
		log.Printf("[tableview] failed to ensure schema: %v", err)
		return
	}
	if err := c.svc.SeedDefaultCategories(ctx); err != nil {
		log.Printf("[tableview] failed to seed categories: %v", err)
	}

	switch c.SelectedTab {
	case domain.TabSales:
		sales, err := c.svc.ListSales(ctx)
		if err != nil {
			log.Printf("[tableview] failed to load sales: %v", err)
			return
		}
		products, err := c.svc.ListProducts(ctx)
		if err != nil {
			log.Printf("[tableview] failed to load products: %v", err)
			return
		}
		c.Sales = sales
		c.Products = products
	case domain.TabExpenses:
		expenses, err := c.svc.ListExpenses(ctx)
		if err != nil {
			log.Printf("[tableview] failed to load expenses: %v", err)
			return
		}
		categories, err := c.svc.ListExpenseCategories(ctx)
		if err != nil {
			log.Printf("[tableview] failed to load categories: %v", err)
			return
		}
		c.Expenses = expenses
		c.Categories = categories
	}
}

// LoadEntries refreshes whatever the active tab shows. The legacy items tab
// reads from the CSV file instead of the database.
func (c *Controller) LoadEntries(ctx context.Context) {
	if c.SelectedTab == domain.TabSales || c.SelectedTab == domain.TabExpenses {
		c.LoadData(ctx)
		return
	}
	c.loadItemsCSV()
}

func (c *Controller) loadItemsCSV() {
	file, err := os.Open(c.itemsPath)
	if err != nil {
		log.Printf("[tableview] failed to open %s: %v", c.itemsPath, err)
		c.Items = nil
		c.TotalItems = 0
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		log.Printf("[tableview] failed to read %s header: %v", c.itemsPath, err)
		c.Items = nil
		c.TotalItems = 0
		return
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	items := make([]domain.Item, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[tableview] failed to read %s: %v", c.itemsPath, err)
			break
		}
		payment, _ := strconv.ParseFloat(field(record, "payment"), 64)
		items = append(items, domain.Item{
			Name:    field(record, "name"),
			Payment: payment,
			Date:    field(record, "date"),
			Status:  field(record, "status"),
		})
	}

	c.Items = items
	c.TotalItems = len(items)
}

// SetSelectedTab switches the active tab and resets pagination.
func (c *Controller) SetSelectedTab(ctx context.Context, tab string) error {
	switch tab {
	case domain.TabSales, domain.TabExpenses, domain.TabLegacy:
	default:
		return fmt.Errorf("unknown tab %q", tab)
	}
	c.SelectedTab = tab
	c.Offset = 0
	c.LoadEntries(ctx)
	return nil
}

func (c *Controller) PageNumber() int {
	return (c.Offset / c.Limit) + 1
}

// TotalPages is computed from the active tab's row count and is never
// below 1.
func (c *Controller) TotalPages() int {
	var total int
	switch c.SelectedTab {
	case domain.TabSales:
		total = len(c.Sales)
	case domain.TabExpenses:
		total = len(c.Expenses)
	default:
		total = c.TotalItems
	}
	pages := (total + c.Limit - 1) / c.Limit
	if pages < 1 {
		return 1
	}
	return pages
}

// PrevPage and NextPage clamp at the edges: moving past the first or last
// page is a no-op.

func (c *Controller) PrevPage() {
	if c.PageNumber() > 1 {
		c.Offset -= c.Limit
	}
}

func (c *Controller) NextPage() {
	if c.PageNumber() < c.TotalPages() {
		c.Offset += c.Limit
	}
}

func (c *Controller) FirstPage() {
	c.Offset = 0
}

func (c *Controller) LastPage() {
	c.Offset = (c.TotalPages() - 1) * c.Limit
}

func (c *Controller) CurrentSalesPage() []domain.Sale {
	start, end := pageBounds(c.Offset, c.Limit, len(c.Sales))
	return c.Sales[start:end]
}

func (c *Controller) CurrentExpensesPage() []domain.Expense {
	start, end := pageBounds(c.Offset, c.Limit, len(c.Expenses))
	return c.Expenses[start:end]
}

// CurrentItemsPage slices the current page out of the filtered and sorted
// legacy items.
func (c *Controller) CurrentItemsPage() []domain.Item {
	items := c.FilteredSortedItems()
	start, end := pageBounds(c.Offset, c.Limit, len(items))
	return items[start:end]
}

func pageBounds(offset int, limit int, total int) (int, int) {
	start := offset
	if start > total {
		start = total
	}
	if start < 0 {
		start = 0
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}

// FilteredSortedItems applies the sort key and the substring search to the
// legacy items. The payment column sorts numerically; everything else sorts
// as a case-insensitive string. The search scans name, payment, date and
// status.
func (c *Controller) FilteredSortedItems() []domain.Item {
	items := make([]domain.Item, len(c.Items))
	copy(items, c.Items)

	if c.SortValue != "" {
		if c.SortValue == "payment" {
			sort.SliceStable(items, func(i, j int) bool {
				if c.SortReverse {
					return items[i].Payment > items[j].Payment
				}
				return items[i].Payment < items[j].Payment
			})
		} else {
			key := c.SortValue
			sort.SliceStable(items, func(i, j int) bool {
				a := strings.ToLower(itemAttr(items[i], key))
				b := strings.ToLower(itemAttr(items[j], key))
				if c.SortReverse {
					return a > b
				}
				return a < b
			})
		}
	}

	if c.SearchValue != "" {
		needle := strings.ToLower(c.SearchValue)
		kept := make([]domain.Item, 0, len(items))
		for _, item := range items {
			if itemMatches(item, needle) {
				kept = append(kept, item)
			}
		}
		items = kept
	}

	return items
}

func itemAttr(item domain.Item, key string) string {
	switch key {
	case "name":
		return item.Name
	case "payment":
		return strconv.FormatFloat(item.Payment, 'f', -1, 64)
	case "date":
		return item.Date
	case "status":
		return item.Status
	default:
		return ""
	}
}

func itemMatches(item domain.Item, needle string) bool {
	for _, key := range []string{"name", "payment", "date", "status"} {
		if strings.Contains(strings.ToLower(itemAttr(item, key)), needle) {
			return true
		}
	}
	return false
}

func (c *Controller) ToggleSort(ctx context.Context) {
	c.SortReverse = !c.SortReverse
	c.LoadEntries(ctx)
}

func (c *Controller) SetSortValue(ctx context.Context, value string) {
	c.SortValue = value
	c.LoadEntries(ctx)
}

func (c *Controller) SetSearchValue(value string) {
	c.SearchValue = value
}

// SetSaleProduct records the selected product name and auto-fills the unit
// price from the product list.
func (c *Controller) SetSaleProduct(value string) {
	c.SaleForm.Product = value
	if value == "" {
		return
	}
	for _, product := range c.Products {
		if product.Name == value {
			c.SaleForm.UnitPrice = product.Price.String()
			break
		}
	}
}

func (c *Controller) SetSaleQuantity(value string) {
	c.SaleForm.Quantity = value
	c.SuccessMessage = ""
	c.recalcSaleTotal()
}

func (c *Controller) SetSaleUnitPrice(value string) {
	c.SaleForm.UnitPrice = value
	c.SuccessMessage = ""
	c.recalcSaleTotal()
}

// recalcSaleTotal keeps the read-only total field in sync with quantity and
// unit price. Unparsable values render a zero total.
func (c *Controller) recalcSaleTotal() {
	qty, errQty := decimal.NewFromString(strings.TrimSpace(c.SaleForm.Quantity))
	price, errPrice := decimal.NewFromString(strings.TrimSpace(c.SaleForm.UnitPrice))
	if c.SaleForm.Quantity == "" {
		qty, errQty = decimal.Zero, nil
	}
	if c.SaleForm.UnitPrice == "" {
		price, errPrice = decimal.Zero, nil
	}
	if errQty != nil || errPrice != nil {
		c.SaleForm.Total = "0"
		return
	}
	c.SaleForm.Total = qty.Mul(price).String()
}

// ClearForm resets every form field and the add-product subform.
func (c *Controller) ClearForm() {
	c.SaleForm = domain.SaleForm{}
	c.ExpenseForm = domain.ExpenseForm{}
	c.NewProduct = domain.NewProductForm{}
}

// ClearMessages resets the error and success banners, mirroring what
// opening or closing the entry modal does.
func (c *Controller) ClearMessages() {
	c.ErrorMessage = ""
	c.SuccessMessage = ""
}

// SubmitForm validates the active tab's form and writes the record. On
// success the data reloads and the form clears; the success banner stays up
// so the user sees it with the modal still open.
func (c *Controller) SubmitForm(ctx context.Context) {
	c.ErrorMessage = ""

	switch c.SelectedTab {
	case domain.TabSales:
		c.submitSale(ctx)
	case domain.TabExpenses:
		c.submitExpense(ctx)
	}
}

func (c *Controller) submitSale(ctx context.Context) {
	productName := strings.TrimSpace(c.SaleForm.Product)
	if productName == "" {
		c.ErrorMessage = "Product is required"
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(c.SaleForm.Quantity))
	if strings.TrimSpace(c.SaleForm.Quantity) == "" || err != nil || qty <= 0 {
		c.ErrorMessage = "Quantity must be greater than 0"
		return
	}

	productID := c.lookupProductID(productName)
	if productID == 0 {
		c.ErrorMessage = "Product is required"
		return
	}

	fields := domain.SaleFields{
		Date:      strings.TrimSpace(c.SaleForm.Date),
		ProductID: strconv.FormatInt(productID, 10),
		Quantity:  strings.TrimSpace(c.SaleForm.Quantity),
		UnitPrice: valueOr(strings.TrimSpace(c.SaleForm.UnitPrice), "0"),
		Note:      strings.TrimSpace(c.SaleForm.Note),
	}
	if _, err := c.svc.InsertSale(ctx, fields); err != nil {
		log.Printf("[tableview] insert sale failed: %v", err)
		c.ErrorMessage = "Failed to insert data. Please check your input and try again."
		return
	}

	c.SuccessMessage = "Penjualan data added successfully!"
	c.LoadData(ctx)
	c.ClearForm()
	c.ErrorMessage = ""
}

func (c *Controller) submitExpense(ctx context.Context) {
	if strings.TrimSpace(c.ExpenseForm.Description) == "" {
		c.ErrorMessage = "Description is required"
		return
	}
	categoryName := strings.TrimSpace(c.ExpenseForm.Category)
	if categoryName == "" {
		c.ErrorMessage = "Category is required"
		return
	}
	if strings.TrimSpace(c.ExpenseForm.PaymentMethod) == "" {
		c.ErrorMessage = "Payment Method is required"
		return
	}

	categoryID := c.lookupCategoryID(categoryName)
	if categoryID == 0 {
		c.ErrorMessage = "Category is required"
		return
	}

	fields := domain.ExpenseFields{
		Date:          strings.TrimSpace(c.ExpenseForm.Date),
		Description:   strings.TrimSpace(c.ExpenseForm.Description),
		CategoryID:    strconv.FormatInt(categoryID, 10),
		Total:         valueOr(strings.TrimSpace(c.ExpenseForm.Total), "0"),
		PaymentMethod: strings.TrimSpace(c.ExpenseForm.PaymentMethod),
		ReceiptRef:    strings.TrimSpace(c.ExpenseForm.ReceiptRef),
		Note:          strings.TrimSpace(c.ExpenseForm.Note),
	}
	if _, err := c.svc.InsertExpense(ctx, fields); err != nil {
		log.Printf("[tableview] insert expense failed: %v", err)
		c.ErrorMessage = "Failed to insert data. Please check your input and try again."
		return
	}

	c.SuccessMessage = "Belanja data added successfully!"
	c.LoadData(ctx)
	c.ClearForm()
	c.ErrorMessage = ""
}

// AddNewProduct creates a product from the inline subform, refreshes the
// dropdown and auto-selects the new product with its price filled in.
func (c *Controller) AddNewProduct(ctx context.Context) {
	name := strings.TrimSpace(c.NewProduct.Name)
	if name == "" {
		c.ErrorMessage = "Product name is required"
		return
	}

	fields := domain.ProductFields{
		Name:  name,
		Price: valueOr(strings.TrimSpace(c.NewProduct.Price), "0"),
	}
	if _, err := c.svc.InsertProduct(ctx, fields); err != nil {
		log.Printf("[tableview] insert product failed: %v", err)
		c.ErrorMessage = "Failed to add product"
		return
	}

	products, err := c.svc.ListProducts(ctx)
	if err != nil {
		log.Printf("[tableview] failed to refresh products: %v", err)
	} else {
		c.Products = products
	}

	c.SaleForm.Product = name
	c.SaleForm.UnitPrice = c.NewProduct.Price
	c.NewProduct = domain.NewProductForm{}
	c.ErrorMessage = ""
	c.SuccessMessage = fmt.Sprintf("Product '%s' added successfully!", name)
}

// ProductOptions lists product names for the sale form dropdown.
func (c *Controller) ProductOptions() []string {
	options := make([]string, 0, len(c.Products))
	for _, product := range c.Products {
		options = append(options, product.Name)
	}
	return options
}

// CategoryOptions lists category names for the expense form dropdown.
func (c *Controller) CategoryOptions() []string {
	options := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		options = append(options, category.Name)
	}
	return options
}

// lookupProductID resolves a display name back to its id with a linear scan
// over the loaded products. Returns 0 when the name is unknown.
func (c *Controller) lookupProductID(name string) int64 {
	for _, product := range c.Products {
		if product.Name == name {
			return product.ID
		}
	}
	return 0
}

func (c *Controller) lookupCategoryID(name string) int64 {
	for _, category := range c.Categories {
		if category.Name == name {
			return category.ID
		}
	}
	return 0
}

func valueOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
