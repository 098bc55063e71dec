package service

import (
	"context"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

type CreateTransactionInput struct {
	// Amount is required; zero is a valid amount.
	Amount      *decimal.Decimal
	Description *string
	CategoryID  *string
}

// UpdateTransactionInput distinguishes absent fields from explicit nulls.
// Description and CategoryID may be cleared with null; Amount may not.
type UpdateTransactionInput struct {
	Amount      domain.Optional[decimal.Decimal]
	Description domain.Optional[string]
	CategoryID  domain.Optional[string]
}

// TransactionService owns every write to an account balance. Each mutation
// writes the transaction row and the new balance in the same store
// transaction while holding the account row, so the balance always equals
// the sum of the account's transaction amounts.
type TransactionService interface {
	Create(ctx context.Context, userID, accountID string, in CreateTransactionInput) (*domain.Transaction, error)
	List(ctx context.Context, userID, accountID string) ([]domain.Transaction, error)
	Get(ctx context.Context, userID, accountID, transactionID string) (*domain.Transaction, error)
	Update(ctx context.Context, userID, accountID, transactionID string, in UpdateTransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, userID, accountID, transactionID string) error
}

type transactionService struct {
	store repository.Store
}

func NewTransactionService(store repository.Store) TransactionService {
	return &transactionService{store: store}
}

func (s *transactionService) Create(ctx context.Context, userID, accountID string, in CreateTransactionInput) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := lockOwnedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}
		if in.Amount == nil {
			return domain.Validation("Amount is required to create a transaction.")
		}
		if in.CategoryID != nil {
			if _, err := accountCategory(ctx, r.Categories(), account.ID, *in.CategoryID); err != nil {
				return err
			}
		}

		amount := *in.Amount
		tx := &domain.Transaction{
			AccountID:   account.ID,
			Amount:      amount,
			Type:        domain.TypeForAmount(amount),
			Description: in.Description,
			CategoryID:  in.CategoryID,
		}
		if err := r.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		if err := r.Accounts().SetBalance(ctx, account.ID, account.Balance.Add(amount)); err != nil {
			return err
		}

		created, err = r.Transactions().Get(ctx, tx.ID, account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *transactionService) List(ctx context.Context, userID, accountID string) ([]domain.Transaction, error) {
	account, err := ownedAccount(ctx, s.store.Accounts(), userID, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().ListByAccount(ctx, account.ID, 0)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

func (s *transactionService) Get(ctx context.Context, userID, accountID, transactionID string) (*domain.Transaction, error) {
	account, err := ownedAccount(ctx, s.store.Accounts(), userID, accountID)
	if err != nil {
		return nil, err
	}
	return s.store.Transactions().Get(ctx, transactionID, account.ID)
}

func (s *transactionService) Update(ctx context.Context, userID, accountID, transactionID string, in UpdateTransactionInput) (*domain.Transaction, error) {
	var updated *domain.Transaction
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := lockOwnedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}
		// read the current row under the account lock; the delta is computed
		// from this value, not from anything the caller saw earlier
		tx, err := r.Transactions().Get(ctx, transactionID, account.ID)
		if err != nil {
			return err
		}

		if !in.Amount.Set && !in.Description.Set && !in.CategoryID.Set {
			return domain.Validation("At least one field (amount, description, categoryId) must be provided for update.")
		}
		if in.Amount.Set && in.Amount.Null {
			return domain.Validation("Amount cannot be null.")
		}
		if in.CategoryID.Set && !in.CategoryID.Null {
			if _, err := accountCategory(ctx, r.Categories(), account.ID, in.CategoryID.Value); err != nil {
				return err
			}
		}

		delta := decimal.Zero
		if in.Amount.Set {
			delta = in.Amount.Value.Sub(tx.Amount)
			tx.Amount = in.Amount.Value
			tx.Type = domain.TypeForAmount(tx.Amount)
		}
		if in.Description.Set {
			tx.Description = in.Description.Ptr()
		}
		if in.CategoryID.Set {
			tx.CategoryID = in.CategoryID.Ptr()
		}

		if err := r.Transactions().Update(ctx, tx); err != nil {
			return err
		}
		if in.Amount.Set {
			if err := r.Accounts().SetBalance(ctx, account.ID, account.Balance.Add(delta)); err != nil {
				return err
			}
		}

		updated, err = r.Transactions().Get(ctx, tx.ID, account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *transactionService) Delete(ctx context.Context, userID, accountID, transactionID string) error {
	return s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := lockOwnedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}
		tx, err := r.Transactions().Get(ctx, transactionID, account.ID)
		if err != nil {
			return err
		}
		if err := r.Transactions().Delete(ctx, tx.ID); err != nil {
			return err
		}
		return r.Accounts().SetBalance(ctx, account.ID, account.Balance.Sub(tx.Amount))
	})
}
