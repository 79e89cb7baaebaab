package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

func TestOpenAndMigrate_SQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()

	db, err := OpenAndMigrate(ctx, DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users','tasks','suggestions','notifications') ORDER BY name`))
	assert.Equal(t, []string{"notifications", "suggestions", "tasks", "users"}, tables)

	// Aplicar de nuevo no hace nada.
	require.NoError(t, Migrate(ctx, db, DriverSQLite, zap.NewNop()))
}

func TestMigrate_UnknownDriver(t *testing.T) {
	err := Migrate(context.Background(), nil, "oracle", zap.NewNop())
	assert.Error(t, err)
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenAndMigrate(ctx, DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	insert := `INSERT INTO users (name, email, created_at) VALUES ('a', 'a@x.io', CURRENT_TIMESTAMP)`
	_, err = db.ExecContext(ctx, insert)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert)

	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	wrapped := fmt.Errorf("inserting user: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]bool{"id": true, "created_at": true}

	assert.Equal(t, " ORDER BY created_at DESC", OrderBy(sharedQuery.Sort{Field: "created_at", Desc: true}, allowed, "id"))
	assert.Equal(t, " ORDER BY id ASC", OrderBy(sharedQuery.Sort{Field: "1; DROP TABLE users"}, allowed, "id"))
	assert.Equal(t, " ORDER BY id ASC", OrderBy(sharedQuery.Sort{}, allowed, "id"))
}
