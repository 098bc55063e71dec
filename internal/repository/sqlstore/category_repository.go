package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finance-tracker/internal/domain"
)

const categoryColumns = `id, account_id, name, domain, description, created_at, updated_at`

var errCategoryExists = domain.Conflict("A category with this name already exists for the account.")

type CategoryRepository struct {
	q querier
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	now := time.Now().UTC()
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := r.q.exec(ctx, `
INSERT INTO categories (id, account_id, name, domain, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.AccountID,
		category.Name,
		string(category.Domain),
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errCategoryExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Get(ctx context.Context, id, accountID string) (*domain.Category, error) {
	row := r.q.queryRow(ctx, `
SELECT `+categoryColumns+`
FROM categories
WHERE id = ? AND account_id = ?`,
		id,
		accountID,
	)
	return scanCategory(row)
}

func (r *CategoryRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Category, error) {
	rows, err := r.q.query(ctx, `
SELECT `+categoryColumns+`
FROM categories
WHERE account_id = ?
ORDER BY name ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) NameTaken(ctx context.Context, accountID, name, excludeID string) (bool, error) {
	var n int
	err := r.q.queryRow(ctx, `
SELECT COUNT(*)
FROM categories
WHERE account_id = ? AND name = ? AND id <> ?`,
		accountID,
		name,
		excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count categories by name: %w", err)
	}
	return n > 0, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	category.UpdatedAt = time.Now().UTC()
	res, err := r.q.exec(ctx, `
UPDATE categories
SET name = ?, domain = ?, description = ?, updated_at = ?
WHERE id = ?`,
		category.Name,
		string(category.Domain),
		category.Description,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errCategoryExists
		}
		return fmt.Errorf("update category: %w", err)
	}
	return expectOneRow(res, "category")
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectOneRow(res, "category")
}

func (r *CategoryRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	if _, err := r.q.exec(ctx, `DELETE FROM categories WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("delete account categories: %w", err)
	}
	return nil
}

func scanCategory(scanner interface {
	Scan(dest ...any) error
}) (*domain.Category, error) {
	var (
		category domain.Category
		kind     string
	)
	if err := scanner.Scan(
		&category.ID,
		&category.AccountID,
		&category.Name,
		&kind,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Category not found for this account.")
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	category.Domain = domain.CategoryDomain(kind)
	return &category, nil
}
