package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	infraDB "github.com/davicafu/tasksense/internal/infra/db"
	sharedDomain "github.com/davicafu/tasksense/internal/shared/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
)

const taskColumns = "id, name, description, start_at, end_at, completed, type, user_id, created_at"

var sortableFields = map[string]bool{"id": true, "created_at": true, "end_at": true, "start_at": true}

// TaskRepo implementa la interfaz TaskRepository para SQLite y Postgres.
type TaskRepo struct {
	db *sqlx.DB
}

var _ taskDomain.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo es el constructor del repositorio.
func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// Create inserta la tarea y rellena t.ID con el id generado.
func (r *TaskRepo) Create(ctx context.Context, t *taskDomain.Task) error {
	query := r.db.Rebind(`INSERT INTO tasks (name, description, start_at, end_at, completed, type, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		t.Name, t.Description, t.Start, t.End, t.Completed, t.Type, t.UserID, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// GetByID recupera una tarea de la base de datos por su ID.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*taskDomain.Task, error) {
	var t taskDomain.Task
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskDomain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}
	return &t, nil
}

// ListByCriteria recupera una lista de tareas aplicando filtros, paginación y ordenamiento.
func (r *TaskRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*taskDomain.Task, error) {
	where, args, err := sharedDomain.WhereClause(criteria, taskDomain.FilterableFields)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + infraDB.OrderBy(sort, sortableFields, "id")
	if page.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset)
	}

	tasks := []*taskDomain.Task{}
	if err := r.db.SelectContext(ctx, &tasks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}
