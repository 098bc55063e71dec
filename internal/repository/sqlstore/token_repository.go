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

type TokenRepository struct {
	q querier
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now().UTC()

	_, err := r.q.exec(ctx, `
INSERT INTO tokens (id, user_id, type, expires_at, used_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		token.ID,
		token.UserID,
		string(token.Type),
		token.ExpiresAt.UTC(),
		nullTime(token.UsedAt),
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, id string) (*domain.Token, error) {
	row := r.q.queryRow(ctx, `
SELECT id, user_id, type, expires_at, used_at, created_at
FROM tokens
WHERE id = ?`,
		id,
	)
	return scanToken(row)
}

func (r *TokenRepository) FindValid(ctx context.Context, userID string, kind domain.TokenType, now time.Time) (*domain.Token, error) {
	row := r.q.queryRow(ctx, `
SELECT id, user_id, type, expires_at, used_at, created_at
FROM tokens
WHERE user_id = ? AND type = ? AND used_at IS NULL AND expires_at > ?
ORDER BY created_at DESC
LIMIT 1`,
		userID,
		string(kind),
		now.UTC(),
	)
	return scanToken(row)
}

func (r *TokenRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	res, err := r.q.exec(ctx, `
UPDATE tokens
SET used_at = ?
WHERE id = ? AND used_at IS NULL`,
		usedAt.UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	return expectOneRow(res, "token")
}

func (r *TokenRepository) ListByUser(ctx context.Context, userID string, kind domain.TokenType) ([]domain.Token, error) {
	rows, err := r.q.query(ctx, `
SELECT id, user_id, type, expires_at, used_at, created_at
FROM tokens
WHERE user_id = ? AND type = ?
ORDER BY created_at DESC`,
		userID,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	return tokens, rows.Err()
}

func scanToken(scanner interface {
	Scan(dest ...any) error
}) (*domain.Token, error) {
	var (
		token  domain.Token
		kind   string
		usedAt sql.NullTime
	)
	if err := scanner.Scan(
		&token.ID,
		&token.UserID,
		&kind,
		&token.ExpiresAt,
		&usedAt,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Token not found.")
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}

	token.Type = domain.TokenType(kind)
	if usedAt.Valid {
		t := usedAt.Time
		token.UsedAt = &t
	}
	return &token, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
