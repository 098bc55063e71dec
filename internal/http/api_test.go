package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository/sqlstore"
	"finance-tracker/internal/service"
)

type captureMailer struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (m *captureMailer) SendVerification(_ context.Context, email, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return m.err
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens["reset:"+email] = token
	return m.err
}

type testServer struct {
	router *gin.Engine
	mailer *captureMailer
	issuer *auth.Issuer
	hook   *test.Hook
}

func newTestServer(t *testing.T, limiter *rate.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.Open(sqlstore.DialectSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlstore.Migrate(context.Background(), db, sqlstore.DialectSQLite))
	store := sqlstore.NewStore(db, sqlstore.DialectSQLite)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	mailer := &captureMailer{tokens: map[string]string{}}
	issuer := auth.NewIssuer("test-secret", 2*time.Hour)

	h := NewHandler(
		service.NewUserService(store, mailer, issuer, service.UserConfig{}),
		service.NewAccountService(store, nil),
		service.NewCategoryService(store),
		service.NewTransactionService(store),
		issuer,
		logger,
		limiter,
	)
	router := gin.New()
	h.RegisterRoutes(router)
	return &testServer{router: router, mailer: mailer, issuer: issuer, hook: hook}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var obj map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &obj)
	return w.Code, obj, w.Body.Bytes()
}

// login registers and verifies a user and returns a bearer token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	creds := gin.H{"email": email, "password": "password123"}
	code, _, _ := s.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, code)
	code, _, _ = s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"email": email, "token": s.mailer.tokens[email]})
	require.Equal(t, http.StatusOK, code)
	code, body, _ := s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, code)
	return body["token"].(string)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	creds := gin.H{"email": "flow@example.com", "password": "password123"}

	code, body, _ := s.do(t, http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User registered, check your email to verify your account", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User already exists", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Please verify your email before logging in", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/resend-verification", "", gin.H{"email": "flow@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Verification email resent", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"email": "flow@example.com", "token": "bogus"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"email": "flow@example.com", "token": s.mailer.tokens["flow@example.com"]})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Email verified successfully", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "flow@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, code)
	token := body["token"].(string)

	code, body, _ = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"email": "flow@example.com", "username": "flow"}, body["user"])
}

func TestAuthValidationMessages(t *testing.T) {
	s := newTestServer(t, nil)

	code, body, _ := s.do(t, http.MethodPost, "/api/auth/register", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email and password are required", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email and token are required", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/resend-verification", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email is required", body["message"])

	code, body, _ = s.do(t, http.MethodPost, "/api/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body.", body["message"])
}

func TestRegisterMailFailure(t *testing.T) {
	s := newTestServer(t, nil)
	s.mailer.err = errors.New("Email service error")

	code, body, _ := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "m@example.com", "password": "password123"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to send verification email: Email service error", body["message"])
}

func TestPasswordResetRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	s.login(t, "pw@example.com")

	code, _, _ := s.do(t, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "pw@example.com"})
	require.Equal(t, http.StatusOK, code)

	code, body, _ := s.do(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"email":    "pw@example.com",
		"token":    s.mailer.tokens["reset:pw@example.com"],
		"password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Password reset successfully", body["message"])

	code, _, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "pw@example.com", "password": "brand-new-pass"})
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	code, body, _ := s.do(t, http.MethodGet, "/api/finance/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header missing", body["message"])

	req := httptest.NewRequest(http.MethodGet, "/api/finance/accounts", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid authorization format"}`, w.Body.String())

	code, body, _ = s.do(t, http.MethodGet, "/api/finance/accounts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	expired, err := auth.NewIssuer("test-secret", -time.Minute).GenerateToken("someone")
	require.NoError(t, err)
	code, _, _ = s.do(t, http.MethodGet, "/api/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestFinanceRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "fin@example.com")

	code, body, _ := s.do(t, http.MethodGet, "/api/finance/accounts", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No accounts found for this user.", body["message"])

	code, body, _ = s.do(t, http.MethodGet, "/api/finance/currencies", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["currencies"], len(domain.SupportedCurrencies))

	code, body, _ = s.do(t, http.MethodPost, "/api/finance/accounts", token, gin.H{"name": "Cash", "currency": "USD"})
	require.Equal(t, http.StatusCreated, code)
	accountID := body["id"].(string)
	assert.Equal(t, "0", body["balance"])

	code, _, _ = s.do(t, http.MethodPost, "/api/finance/accounts", token, gin.H{"name": "Cash", "currency": "EUR"})
	assert.Equal(t, http.StatusConflict, code)

	base := "/api/finance/accounts/" + accountID

	code, body, _ = s.do(t, http.MethodPost, base+"/categories", token, gin.H{"name": "Food", "domain": "GENERAL"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid domain. Supported domains are: INCOME, EXPENSE", body["message"])

	code, body, _ = s.do(t, http.MethodPost, base+"/categories", token, gin.H{"name": "Salary", "domain": "INCOME"})
	require.Equal(t, http.StatusCreated, code)
	categoryID := body["id"].(string)

	code, body, _ = s.do(t, http.MethodPost, base+"/transactions", token, gin.H{"amount": 100, "categoryId": categoryID})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "INCOME", body["type"])
	assert.Equal(t, "100", body["amount"])
	txID := body["id"].(string)

	code, body, _ = s.do(t, http.MethodPut, base+"/transactions/"+txID, token, `{"amount":"-30","description":null}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "EXPENSE", body["type"])
	assert.Nil(t, body["description"])
	assert.Equal(t, categoryID, body["categoryId"])

	code, body, _ = s.do(t, http.MethodGet, base+"/transactions/"+txID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "-30", body["amount"])
	assert.Equal(t, "Salary", body["category"].(map[string]any)["name"])

	code, body, _ = s.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "-30", body["balance"])
	assert.Len(t, body["transactions"], 1)

	code, body, _ = s.do(t, http.MethodPut, base, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "At least one field (name or currency) must be provided for update.", body["message"])

	code, body, _ = s.do(t, http.MethodPut, base, token, gin.H{"name": "Wallet"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Wallet", body["account"].(map[string]any)["name"])

	code, _, _ = s.do(t, http.MethodDelete, base+"/categories/"+categoryID, token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body, _ = s.do(t, http.MethodGet, base+"/transactions", token, nil)
	require.Equal(t, http.StatusOK, code)
	list := body["transactions"].([]any)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].(map[string]any)["category"])

	code, _, _ = s.do(t, http.MethodDelete, base+"/transactions/"+txID, token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body, raw := s.do(t, http.MethodGet, "/api/finance/accounts", token, nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	var accounts []map[string]any
	require.NoError(t, json.Unmarshal(raw, &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "0", accounts[0]["balance"])
	assert.Nil(t, body)

	code, body, _ = s.do(t, http.MethodGet, "/api/finance/archives", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["archives"])

	code, _, _ = s.do(t, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, body, _ = s.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Account not found.", body["message"])
}

func TestFinanceOwnership(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.login(t, "owner@example.com")
	intruder := s.login(t, "intruder@example.com")

	code, body, _ := s.do(t, http.MethodPost, "/api/finance/accounts", owner, gin.H{"name": "Mine", "currency": "EUR"})
	require.Equal(t, http.StatusCreated, code)
	base := "/api/finance/accounts/" + body["id"].(string)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, base},
		{http.MethodPut, base},
		{http.MethodDelete, base},
		{http.MethodGet, base + "/transactions"},
		{http.MethodPost, base + "/transactions"},
		{http.MethodGet, base + "/categories"},
	} {
		code, body, _ := s.do(t, tc.method, tc.path, intruder, gin.H{"amount": 1, "name": "x"})
		assert.Equal(t, http.StatusNotFound, code, fmt.Sprintf("%s %s", tc.method, tc.path))
		assert.Equal(t, "Account not found.", body["message"])
	}
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "amt@example.com")
	_, body, _ := s.do(t, http.MethodPost, "/api/finance/accounts", token, gin.H{"name": "A", "currency": "USD"})
	base := "/api/finance/accounts/" + body["id"].(string) + "/transactions"

	code, body, _ := s.do(t, http.MethodPost, base, token, gin.H{"description": "no amount"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Amount is required to create a transaction.", body["message"])

	code, _, _ = s.do(t, http.MethodPost, base, token, `{"amount":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body, _ = s.do(t, http.MethodPost, base, token, gin.H{"amount": 0})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "INCOME", body["type"])
}

func TestRateLimitedAuthRoutes(t *testing.T) {
	s := newTestServer(t, rate.NewLimiter(rate.Every(time.Hour), 1))

	code, _, _ := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body, _ := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too many requests, please try again later.", body["message"])

	code, _, _ = s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code, "health is not rate limited")
}

func TestRespondErrorHidesUnexpected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	h := &Handler{logger: logger}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, w.Body.String())
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.Validation("x"), http.StatusBadRequest},
		{domain.Unauthorized("x"), http.StatusUnauthorized},
		{domain.Forbidden("x"), http.StatusForbidden},
		{domain.NotFound("x"), http.StatusNotFound},
		{domain.Conflict("x"), http.StatusConflict},
		{domain.Dependency("x", errors.New("y")), http.StatusInternalServerError},
		{fmt.Errorf("wrap: %w", domain.NotFound("x")), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/finance/accounts", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
