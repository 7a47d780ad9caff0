package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the single pgx-pool-backed handle every query function in this
// package is a method of. It owns no business logic beyond SQL
// construction and row scanning.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// New wraps an already-constructed pool. The pool's min/max size is the
// caller's responsibility (spec §6: STORE_POOL_MIN/MAX), configured via
// pgxpool.Config before New is called.
func New(pool *pgxpool.Pool, schema string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgstore: pool is required")
	}
	if _, err := quoteIdent(schema); err != nil {
		return nil, fmt.Errorf("pgstore: invalid schema: %w", err)
	}
	return &Store{pool: pool, schema: schema}, nil
}

// Ping reports whether the pool can reach the database, used by
// healthcheck's store-reachability check.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) quotedSchema() string {
	// Validated in New; error is unreachable here.
	q, _ := quoteIdent(s.schema)
	return q
}

func (s *Store) table(name string) string {
	return s.quotedSchema() + "." + name
}
