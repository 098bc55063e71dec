package service

import (
	"strings"

	"finance-tracker/internal/domain"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func checkCurrency(c string) (domain.Currency, error) {
	currency := domain.Currency(strings.TrimSpace(c))
	if !currency.Valid() {
		return "", domain.Validation("Invalid currency. Supported currencies are: " + domain.CurrencyList())
	}
	return currency, nil
}

func checkDomain(d string) (domain.CategoryDomain, error) {
	kind := domain.CategoryDomain(strings.TrimSpace(d))
	if !kind.Valid() {
		return "", domain.Validation("Invalid domain. Supported domains are: " + domain.DomainList())
	}
	return kind, nil
}
