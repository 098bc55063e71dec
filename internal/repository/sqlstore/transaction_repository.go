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

const selectTransactions = `
SELECT t.id, t.account_id, t.amount, t.type, t.description, t.category_id, t.created_at, t.updated_at,
	c.id, c.name, c.description
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

type TransactionRepository struct {
	q querier
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	now := time.Now().UTC()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = now
	tx.UpdatedAt = now

	_, err := r.q.exec(ctx, `
INSERT INTO transactions (id, account_id, amount, type, description, category_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.AccountID,
		tx.Amount,
		string(tx.Type),
		nullString(tx.Description),
		nullString(tx.CategoryID),
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Get(ctx context.Context, id, accountID string) (*domain.Transaction, error) {
	row := r.q.queryRow(ctx, selectTransactions+`
WHERE t.id = ? AND t.account_id = ?`,
		id,
		accountID,
	)
	return scanTransaction(row)
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error) {
	query := selectTransactions + `
WHERE t.account_id = ?
ORDER BY t.created_at DESC, t.id DESC`
	args := []any{accountID}
	if limit > 0 {
		query += `
LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	tx.UpdatedAt = time.Now().UTC()
	res, err := r.q.exec(ctx, `
UPDATE transactions
SET amount = ?, type = ?, description = ?, category_id = ?, updated_at = ?
WHERE id = ?`,
		tx.Amount,
		string(tx.Type),
		nullString(tx.Description),
		nullString(tx.CategoryID),
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectOneRow(res, "transaction")
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOneRow(res, "transaction")
}

func (r *TransactionRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	if _, err := r.q.exec(ctx, `DELETE FROM transactions WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("delete account transactions: %w", err)
	}
	return nil
}

func (r *TransactionRepository) DetachCategory(ctx context.Context, categoryID string) error {
	_, err := r.q.exec(ctx, `
UPDATE transactions
SET category_id = NULL, updated_at = ?
WHERE category_id = ?`,
		time.Now().UTC(),
		categoryID,
	)
	if err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	return nil
}

// SumByAccount adds the amounts in Go; sqlite stores them as TEXT and SUM
// would go through floating point.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	rows, err := r.q.query(ctx, `SELECT amount FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("query amounts: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		sum = sum.Add(amount)
	}
	return sum, rows.Err()
}

func scanTransaction(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	var (
		tx          domain.Transaction
		kind        string
		description sql.NullString
		categoryID  sql.NullString
		catID       sql.NullString
		catName     sql.NullString
		catDesc     sql.NullString
	)
	if err := scanner.Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.Amount,
		&kind,
		&description,
		&categoryID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&catID,
		&catName,
		&catDesc,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Transaction not found.")
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Type = domain.TransactionType(kind)
	if description.Valid {
		v := description.String
		tx.Description = &v
	}
	if categoryID.Valid {
		v := categoryID.String
		tx.CategoryID = &v
	}
	if catID.Valid {
		tx.Category = &domain.Category{
			ID:          catID.String,
			AccountID:   tx.AccountID,
			Name:        catName.String,
			Description: catDesc.String,
		}
	}
	return &tx, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
