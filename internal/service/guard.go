package service

import (
	"context"
	"strings"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

var errAccountNotFound = domain.NotFound("Account not found.")

// ownedAccount resolves accountID only if userID owns it. A foreign account
// is reported exactly like a missing one.
func ownedAccount(ctx context.Context, accounts repository.AccountRepository, userID, accountID string) (*domain.Account, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(accountID) == "" {
		return nil, errAccountNotFound
	}
	return accounts.GetOwned(ctx, accountID, userID)
}

// lockOwnedAccount is ownedAccount for use inside a store transaction; the
// row stays locked until commit where the database supports it.
func lockOwnedAccount(ctx context.Context, accounts repository.AccountRepository, userID, accountID string) (*domain.Account, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(accountID) == "" {
		return nil, errAccountNotFound
	}
	return accounts.LockOwned(ctx, accountID, userID)
}

// accountCategory resolves a category scoped to an already authorized account.
func accountCategory(ctx context.Context, categories repository.CategoryRepository, accountID, categoryID string) (*domain.Category, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, domain.NotFound("Category not found for this account.")
	}
	return categories.Get(ctx, categoryID, accountID)
}
