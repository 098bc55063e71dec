package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
)

const accountColumns = `id, user_id, name, balance, currency, created_at, updated_at`

var errAccountExists = domain.Conflict("An account with this name already exists for the user.")

type AccountRepository struct {
	q querier
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now().UTC()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := r.q.exec(ctx, `
INSERT INTO accounts (id, user_id, name, balance, currency, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.UserID,
		account.Name,
		account.Balance,
		string(account.Currency),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Account, error) {
	row := r.q.queryRow(ctx, `
SELECT `+accountColumns+`
FROM accounts
WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanAccount(row)
}

func (r *AccountRepository) LockOwned(ctx context.Context, id, userID string) (*domain.Account, error) {
	row := r.q.queryRow(ctx, `
SELECT `+accountColumns+`
FROM accounts
WHERE id = ? AND user_id = ?`+r.q.forUpdate(),
		id,
		userID,
	)
	return scanAccount(row)
}

func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := r.q.query(ctx, `
SELECT `+accountColumns+`
FROM accounts
WHERE user_id = ?
ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) NameTaken(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var n int
	err := r.q.queryRow(ctx, `
SELECT COUNT(*)
FROM accounts
WHERE user_id = ? AND name = ? AND id <> ?`,
		userID,
		name,
		excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count accounts by name: %w", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	account.UpdatedAt = time.Now().UTC()
	res, err := r.q.exec(ctx, `
UPDATE accounts
SET name = ?, currency = ?, updated_at = ?
WHERE id = ?`,
		account.Name,
		string(account.Currency),
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errAccountExists
		}
		return fmt.Errorf("update account: %w", err)
	}
	return expectOneRow(res, "account")
}

func (r *AccountRepository) SetBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res, err := r.q.exec(ctx, `
UPDATE accounts
SET balance = ?, updated_at = ?
WHERE id = ?`,
		balance,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	return expectOneRow(res, "account")
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return expectOneRow(res, "account")
}

func scanAccount(scanner interface {
	Scan(dest ...any) error
}) (*domain.Account, error) {
	var (
		account  domain.Account
		currency string
	)
	if err := scanner.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Balance,
		&currency,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Account not found.")
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.Currency = domain.Currency(currency)
	return &account, nil
}
