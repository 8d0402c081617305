package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"pembukuan/backend/internal/domain"
	"pembukuan/backend/internal/service"
	"pembukuan/backend/internal/store"
	"pembukuan/backend/internal/tableview"
	"pembukuan/backend/internal/xid"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	itemsCSVPath  string
	loginLimiter  *attemptLimiter

	mu       sync.Mutex
	sessions map[string]*tableview.Controller
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string, itemsCSVPath string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		itemsCSVPath:  itemsCSVPath,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		sessions:      make(map[string]*tableview.Controller),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)

	mux.HandleFunc("/api/v1/products", a.requireAuth(a.handleProducts, "staff", "owner"))
	mux.HandleFunc("/api/v1/expense-categories", a.requireAuth(a.handleExpenseCategories, "staff", "owner"))

	mux.HandleFunc("/api/v1/pembukuan/state", a.requireAuth(a.handleState, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/tab", a.requireAuth(a.handleTab, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/page", a.requireAuth(a.handlePage, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/sort", a.requireAuth(a.handleSort, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/search", a.requireAuth(a.handleSearch, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/form/field", a.requireAuth(a.handleFormField, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/form/submit", a.requireAuth(a.handleFormSubmit, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/form/clear", a.requireAuth(a.handleFormClear, "staff", "owner"))
	mux.HandleFunc("/api/v1/pembukuan/products", a.requireAuth(a.handleNewProduct, "staff", "owner"))

	mux.HandleFunc("/api/v1/dashboard", a.requireAuth(a.handleDashboard, "owner"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

// controllerFor returns the per-session table controller for the request.
// Sessions are keyed by username plus the X-Session-ID header so two browser
// tabs of the same user keep independent pagination and form state. A missing
// session id gets a fresh one, echoed back in the response header.
func (a *API) controllerFor(w http.ResponseWriter, r *http.Request) *tableview.Controller {
	actor, _ := service.ActorFromContext(r.Context())
	sessionID := strings.TrimSpace(r.Header.Get("X-Session-ID"))
	if sessionID == "" {
		sessionID = xid.New("sess")
	}
	w.Header().Set("X-Session-ID", sessionID)
	key := actor.Username + "|" + sessionID

	a.mu.Lock()
	defer a.mu.Unlock()
	ctrl, ok := a.sessions[key]
	if !ok {
		ctrl = tableview.NewController(a.service, a.itemsCSVPath)
		a.sessions[key] = ctrl
	}
	return ctrl
}

type stateResponse struct {
	SelectedTab     string                `json:"selected_tab"`
	PageNumber      int                   `json:"page_number"`
	TotalPages      int                   `json:"total_pages"`
	Sales           []domain.Sale         `json:"penjualan,omitempty"`
	Expenses        []domain.Expense      `json:"belanja,omitempty"`
	Items           []domain.Item         `json:"items,omitempty"`
	ProductOptions  []string              `json:"product_options"`
	CategoryOptions []string              `json:"kategori_options"`
	SaleForm        domain.SaleForm       `json:"sale_form"`
	ExpenseForm     domain.ExpenseForm    `json:"expense_form"`
	NewProduct      domain.NewProductForm `json:"new_product_form"`
	SearchValue     string                `json:"search_value"`
	SortValue       string                `json:"sort_value"`
	SortReverse     bool                  `json:"sort_reverse"`
	ErrorMessage    string                `json:"error_message"`
	SuccessMessage  string                `json:"success_message"`
}

// snapshotLocked renders the controller into a response. The caller must hold
// the controller lock.
func snapshotLocked(ctrl *tableview.Controller) stateResponse {
	resp := stateResponse{
		SelectedTab:     ctrl.SelectedTab,
		PageNumber:      ctrl.PageNumber(),
		TotalPages:      ctrl.TotalPages(),
		ProductOptions:  ctrl.ProductOptions(),
		CategoryOptions: ctrl.CategoryOptions(),
		SaleForm:        ctrl.SaleForm,
		ExpenseForm:     ctrl.ExpenseForm,
		NewProduct:      ctrl.NewProduct,
		SearchValue:     ctrl.SearchValue,
		SortValue:       ctrl.SortValue,
		SortReverse:     ctrl.SortReverse,
		ErrorMessage:    ctrl.ErrorMessage,
		SuccessMessage:  ctrl.SuccessMessage,
	}
	switch ctrl.SelectedTab {
	case domain.TabSales:
		resp.Sales = ctrl.CurrentSalesPage()
	case domain.TabExpenses:
		resp.Expenses = ctrl.CurrentExpensesPage()
	default:
		resp.Items = ctrl.CurrentItemsPage()
	}
	return resp
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListProducts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductFields
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		id, err := a.service.InsertProduct(r.Context(), req)
		if err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, store.ErrInvalidRecord) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id_produk": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenseCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := a.service.ListExpenseCategories(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	case http.MethodPost:
		actor, ok := service.ActorFromContext(r.Context())
		if !ok || actor.Role != "owner" {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		var req struct {
			Name string `json:"nama_kategori"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		id, err := a.service.InsertExpenseCategory(r.Context(), req.Name)
		if err != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, store.ErrInvalidRecord) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id_kategori": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	ctrl.LoadEntries(r.Context())
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleTab(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Tab string `json:"tab"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	if err := ctrl.SetSelectedTab(r.Context(), req.Tab); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	switch req.Action {
	case "prev":
		ctrl.PrevPage()
	case "next":
		ctrl.NextPage()
	case "first":
		ctrl.FirstPage()
	case "last":
		ctrl.LastPage()
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown page action %q", req.Action))
		return
	}
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleSort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Value  string `json:"value"`
		Toggle bool   `json:"toggle"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	if req.Toggle {
		ctrl.ToggleSort(r.Context())
	} else {
		ctrl.SetSortValue(r.Context(), req.Value)
	}
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	ctrl.SetSearchValue(req.Value)
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleFormField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req struct {
		Form  string `json:"form"`
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	if err := setFormField(ctrl, req.Form, req.Field, req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

// setFormField routes a single field update to the controller. The sale
// product, quantity and unit price fields go through their dedicated setters
// so the derived total and the auto-filled price stay in sync; everything else
// is a plain assignment.
func setFormField(ctrl *tableview.Controller, form string, field string, value string) error {
	switch form {
	case domain.TabSales:
		switch field {
		case "product":
			ctrl.SetSaleProduct(value)
		case "quantity":
			ctrl.SetSaleQuantity(value)
		case "unit_price":
			ctrl.SetSaleUnitPrice(value)
		case "note":
			ctrl.SaleForm.Note = value
		case "date":
			ctrl.SaleForm.Date = value
		default:
			return fmt.Errorf("unknown sale form field %q", field)
		}
	case domain.TabExpenses:
		switch field {
		case "description":
			ctrl.ExpenseForm.Description = value
		case "category":
			ctrl.ExpenseForm.Category = value
		case "total":
			ctrl.ExpenseForm.Total = value
		case "payment_method":
			ctrl.ExpenseForm.PaymentMethod = value
		case "receipt_ref":
			ctrl.ExpenseForm.ReceiptRef = value
		case "note":
			ctrl.ExpenseForm.Note = value
		case "date":
			ctrl.ExpenseForm.Date = value
		default:
			return fmt.Errorf("unknown expense form field %q", field)
		}
	default:
		return fmt.Errorf("unknown form %q", form)
	}
	return nil
}

func (a *API) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	ctrl.SubmitForm(r.Context())
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleFormClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	ctrl.ClearForm()
	ctrl.ClearMessages()
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleNewProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var req domain.NewProductForm
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctrl := a.controllerFor(w, r)
	ctrl.Lock()
	defer ctrl.Unlock()

	ctrl.NewProduct = req
	ctrl.AddNewProduct(r.Context())
	writeJSON(w, http.StatusOK, snapshotLocked(ctrl))
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	product := r.URL.Query().Get("product")
	period := r.URL.Query().Get("period")
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	snapshot, err := a.service.Dashboard(r.Context(), product, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"dashboard-%s.csv\"", snapshot.Period))
		_, _ = w.Write([]byte(dashboardToCSV(snapshot)))
	case "pdf":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dashboardToPrintableHTML(snapshot)))
	default:
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Expose-Headers", "X-Session-ID")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = xid.New("req")
		}
		w.Header().Set("X-Request-ID", requestID)

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %s", r.Method, r.URL.Path, requestID, time.Since(startedAt))
	})
}

func dashboardToCSV(snapshot domain.DashboardSnapshot) string {
	lines := []string{
		"section,key,value",
		fmt.Sprintf("summary,product,%s", snapshot.Product),
		fmt.Sprintf("summary,period,%s", snapshot.Period),
		fmt.Sprintf("summary,total_revenue,%s", snapshot.Metrics.TotalRevenue),
		fmt.Sprintf("summary,total_orders,%d", snapshot.Metrics.TotalOrders),
		fmt.Sprintf("summary,average_order_value,%s", snapshot.Metrics.AverageOrderValue),
		fmt.Sprintf("summary,items_sold,%d", snapshot.Metrics.ItemsSold),
		fmt.Sprintf("summary,revenue_growth,%g", snapshot.Growth.RevenueGrowth),
		fmt.Sprintf("summary,orders_growth,%g", snapshot.Growth.OrdersGrowth),
	}
	for _, point := range snapshot.DailyRevenue {
		lines = append(lines, fmt.Sprintf("daily,%s,%s", point.Date, point.Revenue))
	}
	for _, product := range snapshot.ProductSales {
		lines = append(lines, fmt.Sprintf("product,%s_revenue,%s", product.Product, product.Revenue))
		lines = append(lines, fmt.Sprintf("product,%s_quantity,%d", product.Product, product.Quantity))
	}
	for _, row := range snapshot.TopProducts {
		lines = append(lines, fmt.Sprintf("top,%s,%s", row.Product, row.Revenue))
	}
	return strings.Join(lines, "\n") + "\n"
}

// dashboardHTMLTmpl renders the printable dashboard export. All user-controlled
// fields are auto-escaped by html/template.
var dashboardHTMLTmpl = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Sales Dashboard {{.Period}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>Sales Dashboard</h2>
  <p>Product: {{.Product}} | Period: {{.Period}}</p>
  <p>Revenue: {{.Metrics.TotalRevenue}} | Orders: {{.Metrics.TotalOrders}} | Avg Order: {{.Metrics.AverageOrderValue}} | Items Sold: {{.Metrics.ItemsSold}}</p>
  <p>Revenue Growth: {{printf "%.1f" .Growth.RevenueGrowth}}% | Orders Growth: {{printf "%.1f" .Growth.OrdersGrowth}}%</p>

  <h3>Daily Revenue</h3>
  <table>
    <thead><tr><th>Date</th><th>Revenue</th></tr></thead>
    <tbody>{{range .DailyRevenue}}<tr><td>{{.Date}}</td><td style="text-align:right;">{{.Revenue}}</td></tr>{{end}}</tbody>
  </table>

  <h3>Top Products</h3>
  <table>
    <thead><tr><th>Product</th><th>Revenue</th><th>Quantity</th></tr></thead>
    <tbody>{{range .TopProducts}}<tr><td>{{.Product}}</td><td style="text-align:right;">{{.Revenue}}</td><td style="text-align:right;">{{.Quantity}}</td></tr>{{end}}</tbody>
  </table>

  <p style="font-size:11px;color:#888;">Generated at {{.GeneratedAt}}</p>
</body>
</html>
`))

func dashboardToPrintableHTML(snapshot domain.DashboardSnapshot) string {
	var buf bytes.Buffer
	if err := dashboardHTMLTmpl.Execute(&buf, snapshot); err != nil {
		// Fallback: return a plain-text error page rather than leaking internal details.
		return "<!doctype html><html><body><p>Report rendering error.</p></body></html>"
	}
	return buf.String()
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (stack traces, SQL errors, file paths, etc.).
	// 4xx responses are user-facing so we return the original error message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
