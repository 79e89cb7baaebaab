package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	sharedEvents "github.com/davicafu/tasksense/internal/shared/events"
	"github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
	"github.com/davicafu/tasksense/tests/mocks"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCreateTask_PublishesAfterSave(t *testing.T) {
	// Arrange
	repo := mocks.NewInMemoryTaskRepo()
	publisher := new(mocks.MockPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evt sharedEvents.TaskCreated) bool {
		_, saved := repo.Tasks[evt.ID]
		return saved && evt.Name == "Essay" && evt.UserID != nil && *evt.UserID == 4
	})).Return(nil).Once()
	service := NewTaskService(repo, mocks.NewDummyCache(), publisher, time.Second, zap.NewNop())

	// Act
	task, err := service.CreateTask(context.Background(), NewTask{Name: "Essay", UserID: int64Ptr(4)})

	// Assert
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.False(t, task.Completed)
	publisher.AssertExpectations(t)
}

func TestCreateTask_PublishFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := mocks.NewInMemoryTaskRepo()
	publisher := new(mocks.MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))
	service := NewTaskService(repo, nil, publisher, time.Second, zap.New(core))

	task, err := service.CreateTask(context.Background(), NewTask{Name: "Essay"})

	require.NoError(t, err)
	assert.Contains(t, repo.Tasks, task.ID)
	assert.Equal(t, 1, logs.FilterMessageSnippet("publish failed").Len())
}

func TestCreateTask_WithoutPublisher(t *testing.T) {
	service := NewTaskService(mocks.NewInMemoryTaskRepo(), nil, nil, time.Second, zap.NewNop())

	task, err := service.CreateTask(context.Background(), NewTask{Name: "Quiet"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
}

func TestCreateTask_InvalidIsRejectedBeforeSave(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	publisher := new(mocks.MockPublisher)
	service := NewTaskService(repo, nil, publisher, time.Second, zap.NewNop())
	start := time.Now()
	end := start.Add(-time.Hour)

	_, err := service.CreateTask(context.Background(), NewTask{Name: "Backwards", Start: &start, End: &end})

	assert.ErrorIs(t, err, taskDomain.ErrInvalidTask)
	assert.Empty(t, repo.Tasks)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateTask_RepoFailure(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	repo.FailCreate = errors.New("disk full")
	publisher := new(mocks.MockPublisher)
	service := NewTaskService(repo, nil, publisher, time.Second, zap.NewNop())

	_, err := service.CreateTask(context.Background(), NewTask{Name: "x"})

	assert.Error(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestGetTask_NotFound(t *testing.T) {
	service := NewTaskService(mocks.NewInMemoryTaskRepo(), mocks.NewDummyCache(), nil, time.Second, zap.NewNop())

	_, err := service.GetTaskByID(context.Background(), 77)

	assert.ErrorIs(t, err, taskDomain.ErrTaskNotFound)
}

func TestGetTask_ServedFromCache(t *testing.T) {
	cache := mocks.NewDummyCache()
	require.NoError(t, cache.Set(context.Background(), taskDomain.TaskCacheKeyByID(5), &taskDomain.Task{ID: 5, Name: "cached"}, time.Minute))
	service := NewTaskService(mocks.NewInMemoryTaskRepo(), cache, nil, time.Second, zap.NewNop())

	task, err := service.GetTaskByID(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "cached", task.Name)
}

func TestListIncompleteForUser(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	ctx := context.Background()
	owner, other := int64(1), int64(2)
	repo.Tasks[1] = &taskDomain.Task{ID: 1, Name: "a", UserID: &owner}
	repo.Tasks[2] = &taskDomain.Task{ID: 2, Name: "b", UserID: &owner, Completed: true}
	repo.Tasks[3] = &taskDomain.Task{ID: 3, Name: "c", UserID: &other}
	repo.Tasks[4] = &taskDomain.Task{ID: 4, Name: "d", UserID: &owner}
	service := NewTaskService(repo, nil, nil, time.Second, zap.NewNop())

	tasks, err := service.ListIncompleteForUser(ctx, owner)

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, int64(4), tasks[1].ID)

	page, err := service.ListTasksForUser(ctx, owner, query.OffsetPagination{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
