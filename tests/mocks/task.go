package mocks

import (
	"context"
	"sort"
	"sync"

	sharedDomain "github.com/davicafu/tasksense/internal/shared/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
)

// InMemoryTaskRepo simula TaskRepository con filtros de igualdad.
// FailForUser hace fallar ListByCriteria cuando el criterio incluye ese dueño.
type InMemoryTaskRepo struct {
	Tasks       map[int64]*taskDomain.Task
	FailCreate  error
	FailForUser map[int64]error
	nextID      int64
	mu          sync.Mutex
}

var _ taskDomain.TaskRepository = (*InMemoryTaskRepo)(nil)

func NewInMemoryTaskRepo() *InMemoryTaskRepo {
	return &InMemoryTaskRepo{
		Tasks:       make(map[int64]*taskDomain.Task),
		FailForUser: make(map[int64]error),
	}
}

func (r *InMemoryTaskRepo) Create(ctx context.Context, t *taskDomain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	r.nextID++
	t.ID = r.nextID
	copied := *t
	r.Tasks[t.ID] = &copied
	return nil
}

func (r *InMemoryTaskRepo) GetByID(ctx context.Context, id int64) (*taskDomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tasks[id]
	if !ok {
		return nil, taskDomain.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *InMemoryTaskRepo) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, s sharedQuery.Sort) ([]*taskDomain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conds []sharedDomain.Criterion
	if criteria != nil {
		conds = criteria.ToConditions()
	}
	for _, c := range conds {
		if c.Field == "user_id" {
			if err := r.FailForUser[c.Value.(int64)]; err != nil {
				return nil, err
			}
		}
	}

	list := []*taskDomain.Task{}
	for _, t := range r.Tasks {
		if matchesAll(t, conds) {
			copied := *t
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if s.Desc {
			return list[i].ID > list[j].ID
		}
		return list[i].ID < list[j].ID
	})
	return paginate(list, page), nil
}

func matchesAll(t *taskDomain.Task, conds []sharedDomain.Criterion) bool {
	for _, c := range conds {
		switch c.Field {
		case "user_id":
			if t.UserID == nil || *t.UserID != c.Value.(int64) {
				return false
			}
		case "completed":
			if t.Completed != c.Value.(bool) {
				return false
			}
		case "type":
			if t.Type != c.Value.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
