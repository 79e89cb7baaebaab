package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/tasksense/internal/shared/infra/utils"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reconoce la violación de UNIQUE en Postgres y en SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// OrderBy devuelve la cláusula ORDER BY; si el campo no está permitido usa fallback.
func OrderBy(sort sharedQuery.Sort, allowed map[string]bool, fallback string) string {
	field := sort.Field
	if !allowed[field] {
		field = fallback
	}
	return fmt.Sprintf(" ORDER BY %s %s", field, sharedUtils.Choose(sort.Desc, "DESC", "ASC"))
}
