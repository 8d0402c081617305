package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"pembukuan/backend/internal/domain"
	"pembukuan/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// schemaStatements are applied in order and are all idempotent. The total
// column on penjualan is generated by the database so a row can never carry
// a total that disagrees with kuantitas * harga_saat_penjualan.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS produk (
		id_produk BIGSERIAL PRIMARY KEY,
		nama_produk TEXT NOT NULL,
		harga_produk NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS kategori_pengeluaran (
		id_kategori BIGSERIAL PRIMARY KEY,
		nama_kategori TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS penjualan (
		id_penjualan BIGSERIAL PRIMARY KEY,
		tanggal_penjualan DATE NOT NULL,
		id_produk BIGINT NOT NULL REFERENCES produk(id_produk),
		kuantitas INTEGER NOT NULL CHECK (kuantitas > 0),
		harga_saat_penjualan NUMERIC(12,2) NOT NULL,
		total NUMERIC(12,2) GENERATED ALWAYS AS (kuantitas * harga_saat_penjualan) STORED,
		catatan TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS belanja (
		id_belanja BIGSERIAL PRIMARY KEY,
		tanggal_pengeluaran DATE NOT NULL,
		deskripsi TEXT NOT NULL,
		id_kategori_pengeluaran BIGINT NOT NULL REFERENCES kategori_pengeluaran(id_kategori),
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		metode_pembayaran TEXT NOT NULL,
		bukti_transaksi TEXT NOT NULL DEFAULT '',
		catatan TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS app_users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_penjualan_tanggal ON penjualan (tanggal_penjualan)`,
	`CREATE INDEX IF NOT EXISTS idx_belanja_tanggal ON belanja (tanggal_pengeluaran)`,
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SeedDefaultCategories(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kategori_pengeluaran`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, name := range domain.DefaultExpenseCategories {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO kategori_pengeluaran (nama_kategori) VALUES ($1)
		`, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id_produk, nama_produk, harga_produk
		FROM produk
		ORDER BY id_produk ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) InsertProduct(ctx context.Context, product domain.Product) (int64, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" || product.Price.IsNegative() {
		return 0, store.ErrInvalidRecord
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO produk (nama_produk, harga_produk)
		VALUES ($1,$2)
		RETURNING id_produk
	`, product.Name, product.Price).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id_kategori, nama_kategori
		FROM kategori_pengeluaran
		ORDER BY id_kategori ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.ExpenseCategory, 0, 16)
	for rows.Next() {
		var c domain.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (s *Store) InsertExpenseCategory(ctx context.Context, category domain.ExpenseCategory) (int64, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return 0, store.ErrInvalidRecord
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO kategori_pengeluaran (nama_kategori)
		VALUES ($1)
		RETURNING id_kategori
	`, category.Name).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id_penjualan,
			to_char(p.tanggal_penjualan, 'YYYY-MM-DD'),
			p.id_produk,
			pr.nama_produk,
			p.kuantitas,
			p.harga_saat_penjualan,
			p.total,
			p.catatan
		FROM penjualan p
		JOIN produk pr ON pr.id_produk = p.id_produk
		ORDER BY p.id_penjualan ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.Date, &sale.ProductID, &sale.ProductName, &sale.Quantity, &sale.UnitPrice, &sale.Total, &sale.Note); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

func (s *Store) InsertSale(ctx context.Context, sale domain.Sale) (int64, error) {
	if sale.ProductID < 1 || sale.Quantity < 1 || sale.Date == "" {
		return 0, store.ErrInvalidRecord
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO penjualan (tanggal_penjualan, id_produk, kuantitas, harga_saat_penjualan, catatan)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id_penjualan
	`, sale.Date, sale.ProductID, sale.Quantity, sale.UnitPrice, sale.Note).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, store.ErrNotFound
		}
		if isCheckViolation(err) {
			return 0, store.ErrInvalidRecord
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id_belanja,
			to_char(b.tanggal_pengeluaran, 'YYYY-MM-DD'),
			b.deskripsi,
			b.id_kategori_pengeluaran,
			k.nama_kategori,
			b.total,
			b.metode_pembayaran,
			b.bukti_transaksi,
			b.catatan
		FROM belanja b
		JOIN kategori_pengeluaran k ON k.id_kategori = b.id_kategori_pengeluaran
		ORDER BY b.id_belanja ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 128)
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(&expense.ID, &expense.Date, &expense.Description, &expense.CategoryID, &expense.CategoryName, &expense.Total, &expense.PaymentMethod, &expense.ReceiptRef, &expense.Note); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (s *Store) InsertExpense(ctx context.Context, expense domain.Expense) (int64, error) {
	expense.Description = strings.TrimSpace(expense.Description)
	expense.PaymentMethod = strings.TrimSpace(expense.PaymentMethod)
	if expense.Description == "" || expense.PaymentMethod == "" || expense.CategoryID < 1 || expense.Date == "" {
		return 0, store.ErrInvalidRecord
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO belanja (tanggal_pengeluaran, deskripsi, id_kategori_pengeluaran, total, metode_pembayaran, bukti_transaksi, catatan)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id_belanja
	`, expense.Date, expense.Description, expense.CategoryID, expense.Total, expense.PaymentMethod, expense.ReceiptRef, expense.Note).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, store.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRecord
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}
	return false
}
