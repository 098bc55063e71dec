package http

import (
	"time"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
)

type UserResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type AccountSummaryResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type AccountResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

type AccountDetailResponse struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Balance      decimal.Decimal            `json:"balance"`
	Currency     string                     `json:"currency"`
	Transactions []RecentTransactionResponse `json:"transactions"`
	CreatedAt    string                     `json:"createdAt"`
	UpdatedAt    string                     `json:"updatedAt"`
}

type CategorySummaryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RecentTransactionResponse struct {
	ID          string                   `json:"id"`
	Amount      decimal.Decimal          `json:"amount"`
	Description *string                  `json:"description"`
	Type        string                   `json:"type"`
	CreatedAt   string                   `json:"createdAt"`
	Category    *CategorySummaryResponse `json:"category"`
}

type TransactionResponse struct {
	ID          string                   `json:"id"`
	AccountID   string                   `json:"accountId"`
	Amount      decimal.Decimal          `json:"amount"`
	Type        string                   `json:"type"`
	Description *string                  `json:"description"`
	CategoryID  *string                  `json:"categoryId"`
	CreatedAt   string                   `json:"createdAt"`
	UpdatedAt   string                   `json:"updatedAt"`
	Category    *CategorySummaryResponse `json:"category"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountId"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type ArchiveResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
	URL          string  `json:"url"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{Email: u.Email, Username: u.Username}
}

func accountSummaryToResponse(a domain.Account) AccountSummaryResponse {
	return AccountSummaryResponse{
		ID:       a.ID,
		Name:     a.Name,
		Balance:  a.Balance,
		Currency: string(a.Currency),
	}
}

func accountToResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Balance:   a.Balance,
		Currency:  string(a.Currency),
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func accountDetailToResponse(d domain.AccountDetail) AccountDetailResponse {
	resp := AccountDetailResponse{
		ID:           d.ID,
		Name:         d.Name,
		Balance:      d.Balance,
		Currency:     string(d.Currency),
		Transactions: make([]RecentTransactionResponse, len(d.Transactions)),
		CreatedAt:    formatTime(d.CreatedAt),
		UpdatedAt:    formatTime(d.UpdatedAt),
	}
	for i, t := range d.Transactions {
		resp.Transactions[i] = RecentTransactionResponse{
			ID:          t.ID,
			Amount:      t.Amount,
			Description: t.Description,
			Type:        string(t.Type),
			CreatedAt:   formatTime(t.CreatedAt),
			Category:    categorySummary(t.Category),
		}
	}
	return resp
}

func categorySummary(c *domain.Category) *CategorySummaryResponse {
	if c == nil {
		return nil
	}
	return &CategorySummaryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func transactionToResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Description: t.Description,
		CategoryID:  t.CategoryID,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
		Category:    categorySummary(t.Category),
	}
}

func categoryToResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		AccountID:   c.AccountID,
		Name:        c.Name,
		Domain:      string(c.Domain),
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

func archiveToResponse(a service.ArchiveInfo) ArchiveResponse {
	resp := ArchiveResponse{Key: a.Key, Size: a.Size, URL: a.URL}
	if a.LastModified != nil && !a.LastModified.IsZero() {
		v := formatTime(*a.LastModified)
		resp.LastModified = &v
	}
	return resp
}
