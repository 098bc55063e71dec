package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/repository/sqlstore"
	"finance-tracker/internal/storage"
)

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	db, err := sqlstore.Open(sqlstore.DialectSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlstore.Migrate(context.Background(), db, sqlstore.DialectSQLite))
	return sqlstore.NewStore(db, sqlstore.DialectSQLite)
}

func newUser(t *testing.T, s *sqlstore.Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", Username: strings.Split(email, "@")[0], IsVerified: true}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

type sentMail struct {
	kind, email, username, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(_ context.Context, email, username, token string) error {
	return m.record("verify", email, username, token)
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, username, token string) error {
	return m.record("reset", email, username, token)
}

func (m *fakeMailer) record(kind, email, username, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, email: email, username: username, token: token})
	return m.err
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeIssuer struct{}

func (fakeIssuer) GenerateToken(userID string) (string, error) {
	return "jwt-for-" + userID, nil
}

// memoryObjects is an in-memory storage.Service.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}}
}

func (m *memoryObjects) Put(_ context.Context, key, _ string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = body
	return nil
}

func (m *memoryObjects) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryObjects) GetObjectURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return "https://objects.test/" + key, nil
}

// failingBalanceStore fails every balance write made inside a transaction.
type failingBalanceStore struct {
	repository.Store
}

func (s failingBalanceStore) InTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		return fn(ctx, failingBalanceRepos{r})
	})
}

type failingBalanceRepos struct {
	repository.Repositories
}

func (r failingBalanceRepos) Accounts() repository.AccountRepository {
	return failingAccounts{r.Repositories.Accounts()}
}

type failingAccounts struct {
	repository.AccountRepository
}

func (failingAccounts) SetBalance(context.Context, string, decimal.Decimal) error {
	return errors.New("balance write failed")
}
