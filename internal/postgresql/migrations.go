package postgresql

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for the migration runner

	"github.com/tasktrail/tasktrail-api/internal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending schema migrations, safe to call on every
// startup.
func RunMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "sql.Open")
	}
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "migratepgx.WithInstance")
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "iofs.New")
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "migrate.NewWithInstance")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "migrate.Up")
	}

	return nil
}
