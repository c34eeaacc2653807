// Package repomanager vends repositories bound either to a PostgreSQL pool or
// to process memory, and runs work against them as a unit.
package repomanager

import (
	"context"

	"github.com/Batajoo/youtube-backend-clone/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the schema up to date. It is a no-op for stores
	// without a schema.
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	// WithinTx runs fn with a users repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
