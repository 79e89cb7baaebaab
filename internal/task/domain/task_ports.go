package domain

import (
	"context"
	"errors"
	"fmt"

	sharedDomain "github.com/davicafu/tasksense/internal/shared/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTask  = errors.New("invalid task")
)

// --- Repositorio de Tasks ---
type TaskRepository interface {
	// Create asigna t.ID.
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*Task, error)
}

// --- Criterios ---

// OwnerCriteria filtra por dueño.
type OwnerCriteria struct {
	UserID int64
}

func (c OwnerCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "user_id", Op: sharedDomain.OpEq, Value: c.UserID}}
}

// CompletedCriteria filtra por estado de completado.
type CompletedCriteria struct {
	Completed bool
}

func (c CompletedCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "completed", Op: sharedDomain.OpEq, Value: c.Completed}}
}

// FilterableFields son las columnas que los repositorios aceptan en criterios.
var FilterableFields = map[string]bool{"user_id": true, "completed": true, "type": true}

func TaskCacheKeyByID(id int64) string {
	return fmt.Sprintf("task:id:%d", id)
}
