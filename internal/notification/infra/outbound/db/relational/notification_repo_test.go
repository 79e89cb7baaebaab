package relational

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	infraDB "github.com/davicafu/tasksense/internal/infra/db"
	"github.com/davicafu/tasksense/internal/notification/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

func setupRepo(t *testing.T) (*NotificationRepo, int64) {
	t.Helper()
	db, err := infraDB.OpenAndMigrate(context.Background(), infraDB.DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var owner int64
	require.NoError(t, db.QueryRowx(`INSERT INTO users (name, email, created_at) VALUES ('Ana', 'ana@x.io', ?) RETURNING id`,
		time.Now().UTC()).Scan(&owner))
	return NewNotificationRepo(db), owner
}

func TestNotificationRepo_SaveGetDelete(t *testing.T) {
	repo, owner := setupRepo(t)
	ctx := context.Background()

	n := &domain.Notification{Message: domain.DueTodayMessage(2), CreatedAt: time.Now().UTC(), UserID: owner}
	require.NoError(t, repo.Save(ctx, n))
	require.NotZero(t, n.ID)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "📅 You have 2 task(s) due today!", got.Message)

	require.NoError(t, repo.Delete(ctx, n.ID))
	_, err = repo.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestNotificationRepo_ListByOwnerPaged(t *testing.T) {
	repo, owner := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, &domain.Notification{Message: "m", CreatedAt: base.Add(time.Duration(i) * time.Hour), UserID: owner}))
	}

	page, err := repo.ListByOwner(ctx, owner, sharedQuery.OffsetPagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	empty, err := repo.ListByOwner(ctx, owner+100, sharedQuery.OffsetPagination{Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
