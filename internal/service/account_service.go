package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

// recentTransactions is how many transactions an account detail carries.
const recentTransactions = 50

type CreateAccountInput struct {
	Name     string
	Currency string
}

// UpdateAccountInput holds the fields to change; nil means unchanged.
type UpdateAccountInput struct {
	Name     *string
	Currency *string
}

// AccountService manages a user's accounts.
type AccountService interface {
	Currencies() []domain.Currency
	Create(ctx context.Context, userID string, in CreateAccountInput) (*domain.Account, error)
	List(ctx context.Context, userID string) ([]domain.Account, error)
	Get(ctx context.Context, userID, accountID string) (*domain.AccountDetail, error)
	Update(ctx context.Context, userID, accountID string, in UpdateAccountInput) (*domain.Account, error)
	Delete(ctx context.Context, userID, accountID string) error
	Archives(ctx context.Context, userID string) ([]ArchiveInfo, error)
}

type accountService struct {
	store    repository.Store
	archiver *Archiver
}

// NewAccountService builds the service. archiver may be nil, in which case
// deleted accounts are not archived.
func NewAccountService(store repository.Store, archiver *Archiver) AccountService {
	return &accountService{store: store, archiver: archiver}
}

func (s *accountService) Currencies() []domain.Currency {
	out := make([]domain.Currency, len(domain.SupportedCurrencies))
	copy(out, domain.SupportedCurrencies)
	return out
}

func (s *accountService) Create(ctx context.Context, userID string, in CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || blank(in.Currency) {
		return nil, domain.Validation("Name and currency are required to create an account.")
	}
	currency, err := checkCurrency(in.Currency)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		UserID:   userID,
		Name:     name,
		Balance:  decimal.Zero,
		Currency: currency,
	}
	err = s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		taken, err := r.Accounts().NameTaken(ctx, userID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("An account with this name already exists for the user.")
		}
		return r.Accounts().Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) List(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.store.Accounts().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.NotFound("No accounts found for this user.")
	}
	return accounts, nil
}

func (s *accountService) Get(ctx context.Context, userID, accountID string) (*domain.AccountDetail, error) {
	account, err := ownedAccount(ctx, s.store.Accounts(), userID, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().ListByAccount(ctx, account.ID, recentTransactions)
	if err != nil {
		return nil, err
	}
	return &domain.AccountDetail{Account: *account, Transactions: txs}, nil
}

func (s *accountService) Update(ctx context.Context, userID, accountID string, in UpdateAccountInput) (*domain.Account, error) {
	var updated *domain.Account
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := lockOwnedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}

		if in.Name == nil && in.Currency == nil {
			return domain.Validation("At least one field (name or currency) must be provided for update.")
		}
		if in.Currency != nil {
			currency, err := checkCurrency(*in.Currency)
			if err != nil {
				return err
			}
			account.Currency = currency
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.Validation("Account name cannot be empty.")
			}
			taken, err := r.Accounts().NameTaken(ctx, userID, name, account.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.Conflict("An account with this name already exists for the user.")
			}
			account.Name = name
		}

		if err := r.Accounts().Update(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account with its transactions and categories in one
// store transaction. With an archiver configured a snapshot is written first
// and a failed upload leaves the account untouched.
func (s *accountService) Delete(ctx context.Context, userID, accountID string) error {
	return s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := lockOwnedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}

		if s.archiver != nil {
			snapshot, err := snapshotAccount(ctx, r, account)
			if err != nil {
				return err
			}
			if _, err := s.archiver.Archive(ctx, snapshot); err != nil {
				return domain.Dependency("Failed to archive account", err)
			}
		}

		if err := r.Transactions().DeleteByAccount(ctx, account.ID); err != nil {
			return err
		}
		if err := r.Categories().DeleteByAccount(ctx, account.ID); err != nil {
			return err
		}
		return r.Accounts().Delete(ctx, account.ID)
	})
}

func (s *accountService) Archives(ctx context.Context, userID string) ([]ArchiveInfo, error) {
	if s.archiver == nil {
		return []ArchiveInfo{}, nil
	}
	archives, err := s.archiver.List(ctx, userID)
	if err != nil {
		return nil, domain.Dependency("Failed to list archives", err)
	}
	return archives, nil
}

func snapshotAccount(ctx context.Context, r repository.Repositories, account *domain.Account) (domain.AccountSnapshot, error) {
	categories, err := r.Categories().ListByAccount(ctx, account.ID)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	txs, err := r.Transactions().ListByAccount(ctx, account.ID, 0)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	return domain.AccountSnapshot{
		Account:      *account,
		Categories:   categories,
		Transactions: txs,
	}, nil
}
