package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tasktrail/tasktrail-api/internal"
)

const otelName = "github.com/tasktrail/tasktrail-api/internal/postgresql"

// DB is the subset of pgxpool.Pool the repositories use, injected so callers
// control the pool lifecycle.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgreSQL error codes translated to domain errors at this boundary.
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
)

// convertErr wraps a pgx error with the domain code it maps to: no rows means
// the record doesn't exist, a unique violation means a conflicting one does,
// and a foreign key violation means the caller referenced an unknown id.
func convertErr(err error, format string, a ...interface{}) error {
	code := internal.ErrorCodeUnknown

	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		code = internal.ErrorCodeNotFound
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			code = internal.ErrorCodeAlreadyExists
		case pgCodeForeignKeyViolation:
			code = internal.ErrorCodeInvalidArgument
		}
	}

	return internal.WrapErrorf(err, code, format, a...)
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}

	s := string(*v)

	return &s
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}
