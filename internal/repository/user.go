package repository

import (
	"context"
	"time"

	"finance-tracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenRepository manages single-use verification and reset tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	Get(ctx context.Context, id string) (*domain.Token, error)
	// FindValid returns the newest unused, unexpired token of the given type
	// for the user, or a not found error.
	FindValid(ctx context.Context, userID string, kind domain.TokenType, now time.Time) (*domain.Token, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	ListByUser(ctx context.Context, userID string, kind domain.TokenType) ([]domain.Token, error)
}
