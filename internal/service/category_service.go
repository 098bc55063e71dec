package service

import (
	"context"
	"strings"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

var errCategoryExists = domain.Conflict("A category with this name already exists for the account.")

type CreateCategoryInput struct {
	Name        string
	Domain      string
	Description string
}

// UpdateCategoryInput holds the fields to change; nil means unchanged.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Domain      *string
}

// CategoryService manages the categories of an account. Categories never
// affect balances.
type CategoryService interface {
	Create(ctx context.Context, userID, accountID string, in CreateCategoryInput) (*domain.Category, error)
	List(ctx context.Context, userID, accountID string) ([]domain.Category, error)
	Get(ctx context.Context, userID, accountID, categoryID string) (*domain.Category, error)
	Update(ctx context.Context, userID, accountID, categoryID string, in UpdateCategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, userID, accountID, categoryID string) error
}

type categoryService struct {
	store repository.Store
}

func NewCategoryService(store repository.Store) CategoryService {
	return &categoryService{store: store}
}

func (s *categoryService) Create(ctx context.Context, userID, accountID string, in CreateCategoryInput) (*domain.Category, error) {
	var created *domain.Category
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := ownedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(in.Name)
		if name == "" || blank(in.Domain) {
			return domain.Validation("Name and domain are required to create a category.")
		}
		kind, err := checkDomain(in.Domain)
		if err != nil {
			return err
		}

		taken, err := r.Categories().NameTaken(ctx, account.ID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return errCategoryExists
		}

		category := &domain.Category{
			AccountID:   account.ID,
			Name:        name,
			Domain:      kind,
			Description: in.Description,
		}
		if err := r.Categories().Create(ctx, category); err != nil {
			return err
		}
		created = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *categoryService) List(ctx context.Context, userID, accountID string) ([]domain.Category, error) {
	account, err := ownedAccount(ctx, s.store.Accounts(), userID, accountID)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.Categories().ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, userID, accountID, categoryID string) (*domain.Category, error) {
	account, err := ownedAccount(ctx, s.store.Accounts(), userID, accountID)
	if err != nil {
		return nil, err
	}
	return accountCategory(ctx, s.store.Categories(), account.ID, categoryID)
}

func (s *categoryService) Update(ctx context.Context, userID, accountID, categoryID string, in UpdateCategoryInput) (*domain.Category, error) {
	var updated *domain.Category
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := ownedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}
		category, err := accountCategory(ctx, r.Categories(), account.ID, categoryID)
		if err != nil {
			return err
		}

		if in.Name == nil && in.Description == nil && in.Domain == nil {
			return domain.Validation("At least one field (name, description, domain) must be provided for update.")
		}
		if in.Domain != nil {
			kind, err := checkDomain(*in.Domain)
			if err != nil {
				return err
			}
			category.Domain = kind
		}
		if in.Description != nil {
			category.Description = *in.Description
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.Validation("Category name cannot be empty.")
			}
			taken, err := r.Categories().NameTaken(ctx, account.ID, name, category.ID)
			if err != nil {
				return err
			}
			if taken {
				return errCategoryExists
			}
			category.Name = name
		}

		if err := r.Categories().Update(ctx, category); err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete detaches referencing transactions and removes the category in one
// store transaction.
func (s *categoryService) Delete(ctx context.Context, userID, accountID, categoryID string) error {
	return s.store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		account, err := ownedAccount(ctx, r.Accounts(), userID, accountID)
		if err != nil {
			return err
		}
		category, err := accountCategory(ctx, r.Categories(), account.ID, categoryID)
		if err != nil {
			return err
		}
		if err := r.Transactions().DetachCategory(ctx, category.ID); err != nil {
			return err
		}
		return r.Categories().Delete(ctx, category.ID)
	})
}
