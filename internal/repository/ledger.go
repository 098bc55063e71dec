package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
)

// AccountRepository exposes persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	// GetOwned looks an account up by id scoped to its owner.
	GetOwned(ctx context.Context, id, userID string) (*domain.Account, error)
	// LockOwned is GetOwned taking a row lock held until the surrounding
	// transaction ends. Outside a transaction it behaves like GetOwned.
	LockOwned(ctx context.Context, id, userID string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Account, error)
	// NameTaken reports whether userID already owns an account called name,
	// ignoring the account excludeID (may be empty).
	NameTaken(ctx context.Context, userID, name, excludeID string) (bool, error)
	Update(ctx context.Context, account *domain.Account) error
	// SetBalance overwrites the cached balance. Only the transaction service
	// calls it, inside the same database transaction as the row it balances.
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository exposes persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Get(ctx context.Context, id, accountID string) (*domain.Category, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Category, error)
	NameTaken(ctx context.Context, accountID, name, excludeID string) (bool, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}

// TransactionRepository exposes persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Get(ctx context.Context, id, accountID string) (*domain.Transaction, error)
	// ListByAccount returns transactions newest first with their category
	// summary joined. limit <= 0 means no limit.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
	DetachCategory(ctx context.Context, categoryID string) error
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}
