package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/tasksense/internal/notification/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	userDomain "github.com/davicafu/tasksense/internal/user/domain"
)

// UserLookup resuelve dueños; lo satisface el UserService.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*userDomain.User, error)
}

// NotificationService define los casos de uso relacionados con Notification.
type NotificationService struct {
	repo  domain.NotificationRepository
	users UserLookup
	log   *zap.Logger
	now   func() time.Time
}

func NewNotificationService(repo domain.NotificationRepository, users UserLookup, log *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:  repo,
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create guarda un mensaje para un dueño existente; si no se resuelve no se persiste.
func (s *NotificationService) Create(ctx context.Context, ownerID *int64, message string) (*domain.Notification, error) {
	if ownerID == nil {
		return nil, domain.ErrOwnerRequired
	}
	owner, err := s.users.GetUser(ctx, *ownerID)
	if err != nil {
		return nil, err
	}

	n := &domain.Notification{
		Message:   message,
		CreatedAt: s.now(),
		UserID:    owner.ID,
	}
	if err := s.repo.Save(ctx, n); err != nil {
		s.log.Error("Failed to save notification", zap.Int64("user_id", owner.ID), zap.Error(err))
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *NotificationService) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*domain.Notification, error) {
	return s.repo.ListByOwner(ctx, userID, page.Normalize(sharedQuery.DefaultPage.Limit))
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
