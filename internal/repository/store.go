package repository

import "context"

// Repositories is the set of repositories bound to one database handle,
// either the pool or an open transaction.
type Repositories interface {
	Users() UserRepository
	Tokens() TokenRepository
	Accounts() AccountRepository
	Categories() CategoryRepository
	Transactions() TransactionRepository
}

// Store hands out pool-bound repositories and runs units of work.
type Store interface {
	Repositories
	// InTx runs fn with repositories bound to a single database transaction.
	// It commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
