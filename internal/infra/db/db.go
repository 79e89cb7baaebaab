package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL ("pgx")
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Driver de SQLite ("sqlite")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

//go:embed migrations
var migrations embed.FS

// Open abre el pool y comprueba la conexión. SQLite se limita a una conexión:
// una base ":memory:" es distinta por conexión y los escritores concurrentes se bloquean.
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate aplica las migraciones embebidas del dialecto del driver.
func Migrate(ctx context.Context, db *sqlx.DB, driver string, log *zap.Logger) error {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch driver {
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case DriverPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, db.DB, sub)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	for _, r := range results {
		log.Info("✅ Migración aplicada", zap.Int64("version", r.Source.Version), zap.Duration("duration", r.Duration))
	}
	return nil
}

// OpenAndMigrate es el atajo usado al arrancar y en tests.
func OpenAndMigrate(ctx context.Context, driver, url string, log *zap.Logger) (*sqlx.DB, error) {
	db, err := Open(ctx, driver, url)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, driver, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
