package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/tasksense/internal/shared/domain"
	sharedBus "github.com/davicafu/tasksense/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/tasksense/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
)

const (
	taskCacheTTL = 2 * time.Minute
	// listChunk es el tamaño de página al recorrer todas las tareas de un usuario.
	listChunk = 500
)

// NewTask son los datos de entrada de CreateTask.
type NewTask struct {
	Name        string
	Description *string
	Start       *time.Time
	End         *time.Time
	Type        string
	UserID      *int64
}

// TaskService define los casos de uso relacionados con Task.
type TaskService struct {
	repo           taskDomain.TaskRepository
	cache          sharedCache.Cache
	publisher      sharedBus.EventPublisher
	publishTimeout time.Duration
	log            *zap.Logger
}

// NewTaskService acepta publisher nil (eventos deshabilitados) y cache nil.
func NewTaskService(repo taskDomain.TaskRepository, cache sharedCache.Cache, publisher sharedBus.EventPublisher, publishTimeout time.Duration, log *zap.Logger) *TaskService {
	return &TaskService{
		repo:           repo,
		cache:          cache,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		log:            log,
	}
}

// CreateTask persiste la tarea y después publica su evento. La tarea ya está
// guardada cuando se publica: un fallo del broker se registra y no se devuelve.
func (s *TaskService) CreateTask(ctx context.Context, in NewTask) (*taskDomain.Task, error) {
	task := &taskDomain.Task{
		Name:        in.Name,
		Description: in.Description,
		Start:       in.Start,
		End:         in.End,
		Type:        in.Type,
		UserID:      in.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.log.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	s.publishCreated(ctx, task)
	sharedCache.AsyncCacheSet(s.cache, taskDomain.TaskCacheKeyByID(task.ID), task, taskCacheTTL, s.log)

	return task, nil
}

func (s *TaskService) publishCreated(ctx context.Context, task *taskDomain.Task) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, task.ToEvent()); err != nil {
		s.log.Warn("⚠️ Task saved but event publish failed",
			zap.Int64("task_id", task.ID),
			zap.Error(err))
		return
	}
	s.log.Debug("Task event published", zap.Int64("task_id", task.ID))
}

// GetTaskByID obtiene una tarea con cache-aside.
func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*taskDomain.Task, error) {
	if s.cache != nil {
		var t taskDomain.Task
		if hit, _ := s.cache.Get(ctx, taskDomain.TaskCacheKeyByID(id), &t); hit {
			return &t, nil
		}
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, taskDomain.ErrTaskNotFound) {
			s.log.Error("Failed to fetch task", zap.Int64("task_id", id), zap.Error(err))
		}
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, taskDomain.TaskCacheKeyByID(task.ID), task, taskCacheTTL, s.log)
	return task, nil
}

// ListIncompleteForUser devuelve todas las tareas pendientes del usuario, paginando internamente.
func (s *TaskService) ListIncompleteForUser(ctx context.Context, userID int64) ([]*taskDomain.Task, error) {
	criteria := sharedDomain.And(
		taskDomain.OwnerCriteria{UserID: userID},
		taskDomain.CompletedCriteria{Completed: false},
	)
	sort := sharedQuery.Sort{Field: "id"}

	var all []*taskDomain.Task
	for offset := 0; ; offset += listChunk {
		page, err := s.repo.ListByCriteria(ctx, criteria, sharedQuery.OffsetPagination{Limit: listChunk, Offset: offset}, sort)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listChunk {
			return all, nil
		}
	}
}

// ListTasksForUser es el listado paginado del endpoint HTTP.
func (s *TaskService) ListTasksForUser(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*taskDomain.Task, error) {
	criteria := sharedDomain.And(taskDomain.OwnerCriteria{UserID: userID})
	return s.repo.ListByCriteria(ctx, criteria, page.Normalize(sharedQuery.DefaultPage.Limit), sharedQuery.Sort{Field: "created_at", Desc: true})
}
