// Package pgrepos implements the repositories on top of PostgreSQL with sqlx.
package pgrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// Unique constraint names, see fs/migrations.
const (
	usernameConstraint   = "students_username_key"
	emailConstraint      = "students_email_key"
	courseNameConstraint = "courses_name_key"
)

// uniqueConstraint returns the constraint violated by err, if err is a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
