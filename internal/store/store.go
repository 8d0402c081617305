package store

import (
	"context"
	"errors"

	"pembukuan/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

type Repository interface {
	EnsureSchema(ctx context.Context) error
	SeedDefaultCategories(ctx context.Context) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	InsertProduct(ctx context.Context, product domain.Product) (int64, error)
	ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	InsertExpenseCategory(ctx context.Context, category domain.ExpenseCategory) (int64, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	InsertSale(ctx context.Context, sale domain.Sale) (int64, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	InsertExpense(ctx context.Context, expense domain.Expense) (int64, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
