package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

// SupportedCurrencies lists the currency codes an account may hold, in display order.
var SupportedCurrencies = []Currency{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD",
	"CNY", "INR", "BRL", "MXN", "SEK", "NOK", "PLN",
}

func (c Currency) Valid() bool {
	for _, s := range SupportedCurrencies {
		if s == c {
			return true
		}
	}
	return false
}

// CurrencyList renders the supported set as "USD, EUR, ...".
func CurrencyList() string {
	parts := make([]string, len(SupportedCurrencies))
	for i, c := range SupportedCurrencies {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// CategoryDomain tags a category as income or expense. It is descriptive only
// and is not checked against the sign of referencing transactions.
type CategoryDomain string

const (
	CategoryDomainIncome  CategoryDomain = "INCOME"
	CategoryDomainExpense CategoryDomain = "EXPENSE"
)

var CategoryDomains = []CategoryDomain{CategoryDomainIncome, CategoryDomainExpense}

func (d CategoryDomain) Valid() bool {
	return d == CategoryDomainIncome || d == CategoryDomainExpense
}

func DomainList() string {
	return string(CategoryDomainIncome) + ", " + string(CategoryDomainExpense)
}

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// TypeForAmount derives the transaction type from the sign of amount.
func TypeForAmount(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TransactionTypeExpense
	}
	return TransactionTypeIncome
}

// Account holds money in one currency. Balance is the cached sum of the
// account's transaction amounts.
type Account struct {
	ID        string
	UserID    string
	Name      string
	Balance   decimal.Decimal
	Currency  Currency
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category groups transactions of a single account.
type Category struct {
	ID          string
	AccountID   string
	Name        string
	Domain      CategoryDomain
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transaction is a signed movement of money on an account.
type Transaction struct {
	ID          string
	AccountID   string
	Amount      decimal.Decimal
	Type        TransactionType
	Description *string
	CategoryID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Category is populated by read paths that join the category summary.
	Category *Category
}

// AccountDetail is an account together with its most recent transactions.
type AccountDetail struct {
	Account
	Transactions []Transaction
}

// AccountSnapshot captures everything owned by an account, used for archives.
type AccountSnapshot struct {
	Account      Account
	Categories   []Category
	Transactions []Transaction
	TakenAt      time.Time
}
