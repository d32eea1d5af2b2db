package db

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	coreerrors "github.com/lueurxax/scam-shield/internal/core/errors"
)

// Postgres error classes that mark a transient fault: connection
// exceptions (08), insufficient resources (53), operator intervention
// such as shutdown or cannot-connect-now (57).
var transientPgClasses = map[string]bool{
	"08": true,
	"53": true,
	"57": true,
}

const pgClassLen = 2

// wrapErr wraps a store failure with its operation name and tags
// transient faults as retryable so callers can distinguish them from
// permanent ones like constraint or syntax errors.
func wrapErr(op string, err error) error {
	if transient(err) {
		return fmt.Errorf("%w: %s: %w", coreerrors.ErrDependencyUnavailable, op, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func transient(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= pgClassLen && transientPgClasses[pgErr.Code[:pgClassLen]]
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
