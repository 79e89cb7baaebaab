package relational

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	infraDB "github.com/davicafu/tasksense/internal/infra/db"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/suggestion/domain"
)

func setupRepo(t *testing.T) (*SuggestionRepo, int64) {
	t.Helper()
	db, err := infraDB.OpenAndMigrate(context.Background(), infraDB.DriverSQLite, ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var owner int64
	require.NoError(t, db.QueryRowx(`INSERT INTO users (name, email, created_at) VALUES ('Ana', 'ana@x.io', ?) RETURNING id`,
		time.Now().UTC()).Scan(&owner))
	return NewSuggestionRepo(db), owner
}

func TestSuggestionRepo_SaveGetDelete(t *testing.T) {
	repo, owner := setupRepo(t)
	ctx := context.Background()
	taskID := int64(7)

	s := &domain.Suggestion{Text: "Start early.", CreatedAt: time.Now().UTC(), UserID: owner, RelatedTaskID: &taskID}
	require.NoError(t, repo.Save(ctx, s))
	require.NotZero(t, s.ID)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Start early.", got.Text)
	assert.Equal(t, owner, got.UserID)
	require.NotNil(t, got.RelatedTaskID)
	assert.Equal(t, taskID, *got.RelatedTaskID)

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSuggestionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), domain.ErrSuggestionNotFound)
}

func TestSuggestionRepo_ListByOwnerNewestFirst(t *testing.T) {
	repo, owner := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Save(ctx, &domain.Suggestion{Text: text, CreatedAt: base.Add(time.Duration(i) * time.Minute), UserID: owner}))
	}
	require.NoError(t, repo.Save(ctx, &domain.Suggestion{Text: "other", CreatedAt: base, UserID: owner + 1}))

	list, err := repo.ListByOwner(ctx, owner, sharedQuery.OffsetPagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].Text)
	assert.Equal(t, "old", list[2].Text)
	assert.Nil(t, list[0].RelatedTaskID)
}
