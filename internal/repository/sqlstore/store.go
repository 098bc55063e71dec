package sqlstore

import (
	"context"
	"database/sql"

	"finance-tracker/internal/repository"
)

// Store is the database/sql backed repository.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	repos
}

func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		repos:   repos{q: querier{db: db, dialect: dialect}},
	}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, repos{q: querier{db: tx, dialect: s.dialect, inTx: true}})
	})
}

type repos struct {
	q querier
}

func (r repos) Users() repository.UserRepository { return &UserRepository{q: r.q} }

func (r repos) Tokens() repository.TokenRepository { return &TokenRepository{q: r.q} }

func (r repos) Accounts() repository.AccountRepository { return &AccountRepository{q: r.q} }

func (r repos) Categories() repository.CategoryRepository { return &CategoryRepository{q: r.q} }

func (r repos) Transactions() repository.TransactionRepository {
	return &TransactionRepository{q: r.q}
}

var _ repository.Store = (*Store)(nil)
