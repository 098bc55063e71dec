package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
)

type createAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type updateAccountRequest struct {
	Name     *string `json:"name"`
	Currency *string `json:"currency"`
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Domain      *string `json:"domain"`
}

type createTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"categoryId"`
}

type updateTransactionRequest struct {
	Amount      domain.Optional[decimal.Decimal] `json:"amount"`
	Description domain.Optional[string]          `json:"description"`
	CategoryID  domain.Optional[string]          `json:"categoryId"`
}

func (h *Handler) listCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": h.accounts.Currencies()})
}

func (h *Handler) listArchives(c *gin.Context) {
	archives, err := h.accounts.Archives(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]ArchiveResponse, len(archives))
	for i := range archives {
		resp[i] = archiveToResponse(archives[i])
	}
	c.JSON(http.StatusOK, gin.H{"archives": resp})
}

func (h *Handler) listAccounts(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]AccountSummaryResponse, len(accounts))
	for i := range accounts {
		resp[i] = accountSummaryToResponse(accounts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), currentUserID(c), service.CreateAccountInput{
		Name:     req.Name,
		Currency: req.Currency,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountToResponse(*account))
}

func (h *Handler) getAccount(c *gin.Context) {
	detail, err := h.accounts.Get(c.Request.Context(), currentUserID(c), c.Param("accountId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountDetailToResponse(*detail))
}

func (h *Handler) updateAccount(c *gin.Context) {
	var req updateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), currentUserID(c), c.Param("accountId"), service.UpdateAccountInput{
		Name:     req.Name,
		Currency: req.Currency,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": accountToResponse(*account)})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), currentUserID(c), c.Param("accountId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context(), currentUserID(c), c.Param("accountId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]CategoryResponse, len(categories))
	for i := range categories {
		resp[i] = categoryToResponse(categories[i])
	}
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}

func (h *Handler) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), currentUserID(c), c.Param("accountId"), service.CreateCategoryInput{
		Name:        req.Name,
		Domain:      req.Domain,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryToResponse(*category))
}

func (h *Handler) getCategory(c *gin.Context) {
	category, err := h.categories.Get(c.Request.Context(), currentUserID(c), c.Param("accountId"), c.Param("categoryId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryToResponse(*category))
}

func (h *Handler) updateCategory(c *gin.Context) {
	var req updateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), currentUserID(c), c.Param("accountId"), c.Param("categoryId"), service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Domain:      req.Domain,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryToResponse(*category))
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), currentUserID(c), c.Param("accountId"), c.Param("categoryId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listTransactions(c *gin.Context) {
	txs, err := h.transactions.List(c.Request.Context(), currentUserID(c), c.Param("accountId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]TransactionResponse, len(txs))
	for i := range txs {
		resp[i] = transactionToResponse(txs[i])
	}
	c.JSON(http.StatusOK, gin.H{"transactions": resp})
}

func (h *Handler) createTransaction(c *gin.Context) {
	var req createTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.transactions.Create(c.Request.Context(), currentUserID(c), c.Param("accountId"), service.CreateTransactionInput{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionToResponse(*tx))
}

func (h *Handler) getTransaction(c *gin.Context) {
	tx, err := h.transactions.Get(c.Request.Context(), currentUserID(c), c.Param("accountId"), c.Param("transactionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) updateTransaction(c *gin.Context) {
	var req updateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.transactions.Update(c.Request.Context(), currentUserID(c), c.Param("accountId"), c.Param("transactionId"), service.UpdateTransactionInput{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	if err := h.transactions.Delete(c.Request.Context(), currentUserID(c), c.Param("accountId"), c.Param("transactionId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
