package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

var (
	errInvalidCredentials = domain.Unauthorized("Invalid credentials")
	errInvalidToken       = domain.Validation("Invalid or expired token")
	errAlreadyVerified    = domain.Validation("Email is already verified")
)

// Mailer delivers the account emails.
type Mailer interface {
	SendVerification(ctx context.Context, email, username, token string) error
	SendPasswordReset(ctx context.Context, email, username, token string) error
}

// TokenIssuer signs session tokens for logged-in users.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, password string) error
	VerifyEmail(ctx context.Context, email, token string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, password string) error
}

type UserConfig struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

type userService struct {
	store  repository.Store
	mailer Mailer
	issuer TokenIssuer
	cfg    UserConfig
	now    func() time.Time
}

func NewUserService(store repository.Store, mailer Mailer, issuer TokenIssuer, cfg UserConfig) UserService {
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &userService{
		store:  store,
		mailer: mailer,
		issuer: issuer,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Validation("Email and password are required")
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return domain.Conflict("User already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Username:     usernameFromEmail(email),
	}
	token := &domain.Token{
		Type:      domain.TokenTypeEmailVerification,
		ExpiresAt: s.now().Add(s.cfg.VerificationTTL),
	}

	err = s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		if err := r.Users().Create(ctx, user); err != nil {
			return err
		}
		token.UserID = user.ID
		return r.Tokens().Create(ctx, token)
	})
	if err != nil {
		return err
	}

	// the user stays registered when delivery fails; resend recovers it
	if err := s.mailer.SendVerification(ctx, user.Email, user.Username, token.ID); err != nil {
		return domain.Dependency("Failed to send verification email", err)
	}
	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, email, tokenID string) error {
	email = strings.TrimSpace(email)
	tokenID = strings.TrimSpace(tokenID)
	if email == "" || tokenID == "" {
		return domain.Validation("Email and token are required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation("Invalid email or token")
		}
		return err
	}
	if user.IsVerified {
		return errAlreadyVerified
	}

	now := s.now()
	if _, err := s.validToken(ctx, user, tokenID, domain.TokenTypeEmailVerification, now); err != nil {
		return err
	}

	return s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		if err := r.Tokens().MarkUsed(ctx, tokenID, now); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errInvalidToken
			}
			return err
		}
		return r.Users().MarkVerified(ctx, user.ID)
	})
}

func (s *userService) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Validation("Email is required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation("Invalid email")
		}
		return err
	}
	if user.IsVerified {
		return errAlreadyVerified
	}

	token, err := s.outstandingToken(ctx, user.ID, domain.TokenTypeEmailVerification, s.cfg.VerificationTTL)
	if err != nil {
		return err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Username, token.ID); err != nil {
		return domain.Dependency("Failed to send verification email", err)
	}
	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.Validation("Email and password are required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", errInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errInvalidCredentials
	}
	if !user.IsVerified {
		return "", domain.Forbidden("Please verify your email before logging in")
	}

	token, err := s.issuer.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *userService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// ForgotPassword mails a reset token. Unknown emails succeed silently so the
// endpoint does not reveal which addresses are registered.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Validation("Email is required")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.outstandingToken(ctx, user.ID, domain.TokenTypePasswordReset, s.cfg.ResetTTL)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, token.ID); err != nil {
		return domain.Dependency("Failed to send password reset email", err)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, email, tokenID, password string) error {
	email = strings.TrimSpace(email)
	tokenID = strings.TrimSpace(tokenID)
	if email == "" || tokenID == "" || password == "" {
		return domain.Validation("Email, token and password are required")
	}
	if len(password) < 8 {
		return domain.Validation("Password must be at least 8 characters")
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validation("Invalid email or token")
		}
		return err
	}

	now := s.now()
	if _, err := s.validToken(ctx, user, tokenID, domain.TokenTypePasswordReset, now); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		if err := r.Tokens().MarkUsed(ctx, tokenID, now); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errInvalidToken
			}
			return err
		}
		return r.Users().UpdatePassword(ctx, user.ID, string(hash))
	})
}

// validToken loads tokenID and checks it belongs to user, has the expected
// type and is neither used nor expired.
func (s *userService) validToken(ctx context.Context, user *domain.User, tokenID string, kind domain.TokenType, now time.Time) (*domain.Token, error) {
	token, err := s.store.Tokens().Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidToken
		}
		return nil, err
	}
	if token.UserID != user.ID || !token.ValidFor(kind, now) {
		return nil, errInvalidToken
	}
	return token, nil
}

// outstandingToken reuses the newest valid token of kind or creates one.
func (s *userService) outstandingToken(ctx context.Context, userID string, kind domain.TokenType, ttl time.Duration) (*domain.Token, error) {
	now := s.now()
	token, err := s.store.Tokens().FindValid(ctx, userID, kind, now)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	token = &domain.Token{
		UserID:    userID,
		Type:      kind,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.Tokens().Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
