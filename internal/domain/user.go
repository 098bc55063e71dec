package domain

import "time"

// User represents a registered owner of accounts.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Username     string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TokenType string

const (
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     TokenType = "PASSWORD_RESET"
)

// Token is a single-use credential mailed to a user. Its ID is the value the
// user sends back.
type Token struct {
	ID        string
	UserID    string
	Type      TokenType
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// ValidFor reports whether the token can still be consumed for the given use.
func (t *Token) ValidFor(kind TokenType, now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now) && t.Type == kind
}
