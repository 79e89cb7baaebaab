package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/user/domain"
	"github.com/davicafu/tasksense/tests/mocks"
)

func TestCreateUser_Success(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := NewUserService(repo, mocks.NewDummyCache(), time.Minute, zap.NewNop())

	user, err := service.CreateUser(context.Background(), "Pepe", "test@example.com")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Pepe", user.Name)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUser_AlreadyExists(t *testing.T) {
	service := NewUserService(mocks.NewInMemoryUserRepo(), nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "Juan", "dup@example.com")
	require.NoError(t, err)
	_, err = service.CreateUser(ctx, "Juan bis", "dup@example.com")

	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestCreateUser_Invalid(t *testing.T) {
	service := NewUserService(mocks.NewInMemoryUserRepo(), nil, time.Minute, zap.NewNop())

	_, err := service.CreateUser(context.Background(), "Juan", "not-an-email")

	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestGetUser_NotFoundIsNotRetried(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	service := NewUserService(repo, nil, time.Minute, zap.NewNop())

	_, err := service.GetUser(context.Background(), 404)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, 1, repo.GetCalls)
}

func TestGetUser_TransientFailureIsRetried(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	repo.FailGet = errors.New("connection reset")
	service := NewUserService(repo, nil, time.Minute, zap.NewNop())

	_, err := service.GetUser(context.Background(), 1)

	assert.Error(t, err)
	assert.Equal(t, lookupAttempts, repo.GetCalls)
}

func TestGetUser_CacheHitSkipsRepo(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	cache := mocks.NewDummyCache()
	require.NoError(t, cache.Set(context.Background(), domain.CacheKeyByID(9), &domain.User{ID: 9, Name: "Cached"}, time.Minute))
	service := NewUserService(repo, cache, time.Minute, zap.NewNop())

	user, err := service.GetUser(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, "Cached", user.Name)
	assert.Zero(t, repo.GetCalls)
}

func TestGetUser_CacheDownFallsBackToRepo(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	u := repo.Add("Ana", "ana@example.com")
	cache := mocks.NewDummyCache()
	cache.FailWith = mocks.ErrCacheDown
	service := NewUserService(repo, cache, time.Minute, zap.NewNop())

	user, err := service.GetUser(context.Background(), u.ID)

	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
}

func TestListUsers(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		repo.Add("u", email)
	}
	service := NewUserService(repo, nil, time.Minute, zap.NewNop())

	page, err := service.ListUsers(context.Background(), query.OffsetPagination{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	all, err := service.ListAllUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
