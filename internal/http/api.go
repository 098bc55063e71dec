// Package http exposes the auth and finance services over a gin router.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"finance-tracker/internal/service"
)

// TokenParser resolves a bearer token to the id of the user it was issued to.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	accounts     service.AccountService
	categories   service.CategoryService
	transactions service.TransactionService
	tokens       TokenParser
	logger       logrus.FieldLogger
	authLimiter  *rate.Limiter
}

// NewHandler builds the handler. authLimiter may be nil to disable rate
// limiting of the public auth routes.
func NewHandler(
	users service.UserService,
	accounts service.AccountService,
	categories service.CategoryService,
	transactions service.TransactionService,
	tokens TokenParser,
	logger logrus.FieldLogger,
	authLimiter *rate.Limiter,
) *Handler {
	return &Handler{
		users:        users,
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		tokens:       tokens,
		logger:       logger,
		authLimiter:  authLimiter,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		public := api.Group("/auth", h.rateLimit())
		public.POST("/register", h.register)
		public.POST("/verify", h.verifyEmail)
		public.POST("/resend-verification", h.resendVerification)
		public.POST("/login", h.login)
		public.POST("/forgot-password", h.forgotPassword)
		public.POST("/reset-password", h.resetPassword)

		api.GET("/auth/me", h.requireAuth(), h.me)

		finance := api.Group("/finance", h.requireAuth())
		finance.GET("/currencies", h.listCurrencies)
		finance.GET("/archives", h.listArchives)

		finance.GET("/accounts", h.listAccounts)
		finance.POST("/accounts", h.createAccount)
		finance.GET("/accounts/:accountId", h.getAccount)
		finance.PUT("/accounts/:accountId", h.updateAccount)
		finance.DELETE("/accounts/:accountId", h.deleteAccount)

		finance.GET("/accounts/:accountId/categories", h.listCategories)
		finance.POST("/accounts/:accountId/categories", h.createCategory)
		finance.GET("/accounts/:accountId/categories/:categoryId", h.getCategory)
		finance.PUT("/accounts/:accountId/categories/:categoryId", h.updateCategory)
		finance.DELETE("/accounts/:accountId/categories/:categoryId", h.deleteCategory)

		finance.GET("/accounts/:accountId/transactions", h.listTransactions)
		finance.POST("/accounts/:accountId/transactions", h.createTransaction)
		finance.GET("/accounts/:accountId/transactions/:transactionId", h.getTransaction)
		finance.PUT("/accounts/:accountId/transactions/:transactionId", h.updateTransaction)
		finance.DELETE("/accounts/:accountId/transactions/:transactionId", h.deleteTransaction)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
