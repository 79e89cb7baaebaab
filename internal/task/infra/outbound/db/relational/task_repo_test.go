package relational

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	infraDB "github.com/davicafu/tasksense/internal/infra/db"
	sharedDomain "github.com/davicafu/tasksense/internal/shared/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := infraDB.OpenAndMigrate(context.Background(), infraDB.DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertUser(t *testing.T, db *sqlx.DB, email string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRowx(`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?) RETURNING id`,
		"u", email, time.Now().UTC()).Scan(&id))
	return id
}

func TestTaskRepo_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := NewTaskRepo(db)
	ctx := context.Background()
	owner := insertUser(t, db, "owner@x.io")

	desc := "Leg day"
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	task := &taskDomain.Task{
		Name: "Gym", Description: &desc, Start: &start, End: &end,
		Type: "HEALTH", UserID: &owner, CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, task))
	require.NotZero(t, task.ID)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gym", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Leg day", *got.Description)
	require.NotNil(t, got.End)
	assert.True(t, end.Equal(*got.End))
	assert.False(t, got.Completed)
	require.NotNil(t, got.UserID)
	assert.Equal(t, owner, *got.UserID)
}

func TestTaskRepo_CreateWithoutOptionalFields(t *testing.T) {
	repo := NewTaskRepo(setupDB(t))
	ctx := context.Background()

	task := &taskDomain.Task{Name: "Loose", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Start)
	assert.Nil(t, got.UserID)
}

func TestTaskRepo_GetByIDNotFound(t *testing.T) {
	_, err := NewTaskRepo(setupDB(t)).GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, taskDomain.ErrTaskNotFound)
}

func TestTaskRepo_ListByCriteria(t *testing.T) {
	db := setupDB(t)
	repo := NewTaskRepo(db)
	ctx := context.Background()
	alice := insertUser(t, db, "alice@x.io")
	bob := insertUser(t, db, "bob@x.io")

	for _, tc := range []struct {
		owner     int64
		completed bool
	}{{alice, false}, {alice, true}, {alice, false}, {bob, false}} {
		owner := tc.owner
		require.NoError(t, repo.Create(ctx, &taskDomain.Task{
			Name: "t", UserID: &owner, Completed: tc.completed, CreatedAt: time.Now().UTC(),
		}))
	}

	criteria := sharedDomain.And(
		taskDomain.OwnerCriteria{UserID: alice},
		taskDomain.CompletedCriteria{Completed: false},
	)
	tasks, err := repo.ListByCriteria(ctx, criteria, sharedQuery.OffsetPagination{Limit: 10}, sharedQuery.Sort{Field: "id"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Less(t, tasks[0].ID, tasks[1].ID)
	for _, task := range tasks {
		assert.Equal(t, alice, *task.UserID)
		assert.False(t, task.Completed)
	}

	page, err := repo.ListByCriteria(ctx, criteria, sharedQuery.OffsetPagination{Limit: 1, Offset: 1}, sharedQuery.Sort{Field: "id", Desc: true})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, tasks[0].ID, page[0].ID)
}

func TestTaskRepo_ListByCriteriaRejectsUnknownField(t *testing.T) {
	repo := NewTaskRepo(setupDB(t))
	bad := sharedDomain.And(badCriteria{})

	_, err := repo.ListByCriteria(context.Background(), bad, sharedQuery.DefaultPage, sharedQuery.Sort{})
	assert.Error(t, err)
}

type badCriteria struct{}

func (badCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "name; DROP TABLE tasks", Op: sharedDomain.OpEq, Value: 1}}
}
