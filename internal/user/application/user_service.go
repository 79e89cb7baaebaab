package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	sharedCache "github.com/davicafu/tasksense/internal/shared/infra/platform/cache"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	sharedUtils "github.com/davicafu/tasksense/internal/shared/infra/utils"
	"github.com/davicafu/tasksense/internal/user/domain"
)

const (
	lookupAttempts = 3
	lookupDelay    = 100 * time.Millisecond
)

// UserService define los casos de uso relacionados con User.
type UserService struct {
	repo     domain.UserRepository
	cache    sharedCache.Cache
	cacheTTL time.Duration
	log      *zap.Logger
}

// NewUserService acepta cache nil: entonces todas las lecturas van al repositorio.
func NewUserService(repo domain.UserRepository, cache sharedCache.Cache, cacheTTL time.Duration, log *zap.Logger) *UserService {
	return &UserService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *UserService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	user := &domain.User{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, domain.CacheKeyByID(user.ID), user, s.cacheTTL, s.log)
	return user, nil
}

// GetUser usa cache-aside. Los fallos transitorios del repositorio se reintentan;
// ErrUserNotFound se devuelve al primer intento porque reintentar no crea al usuario.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if s.cache != nil {
		var u domain.User
		hit, err := s.cache.Get(ctx, domain.CacheKeyByID(id), &u)
		if err != nil {
			s.log.Debug("User cache read failed", zap.Int64("user_id", id), zap.Error(err))
		}
		if hit {
			return &u, nil
		}
	}

	var user *domain.User
	err := sharedUtils.Retry(ctx, lookupAttempts, lookupDelay, func(ctx context.Context) error {
		var errRetry error
		user, errRetry = s.repo.GetByID(ctx, id)
		return errRetry
	}, domain.ErrUserNotFound)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error("Failed to fetch user", zap.Int64("user_id", id), zap.Error(err))
		}
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, domain.CacheKeyByID(user.ID), user, s.cacheTTL, s.log)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page sharedQuery.OffsetPagination) ([]*domain.User, error) {
	return s.repo.List(ctx, page.Normalize(sharedQuery.DefaultPage.Limit))
}

// ListAllUsers no pasa por la caché.
func (s *UserService) ListAllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListAll(ctx)
}
