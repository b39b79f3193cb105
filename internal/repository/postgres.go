package repository

import (
	"database/sql"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"medhold-data/internal/domain"
)

// PostgresStore implements Store on top of database/sql + lib/pq.
// Cross-collection commands run inside transactions (see postgres_reconcile.go).
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a store bound to the given connection pool.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

var _ Store = (*PostgresStore)(nil)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// mapInsertError converts a personal_number unique-index violation into the
// domain ConflictError; everything else passes through.
func mapInsertError(err error, personalNumber string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return domain.NewConflictError("personal_number", personalNumber)
	}
	return err
}
