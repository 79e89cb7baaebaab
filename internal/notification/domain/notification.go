package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrOwnerRequired        = errors.New("notification owner is required")
)

type Notification struct {
	ID        int64     `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UserID    int64     `json:"userId" db:"user_id"`
}

type NotificationRepository interface {
	// Save asigna n.ID.
	Save(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*Notification, error)
	Delete(ctx context.Context, id int64) error
}

// Mensajes del barrido.
const (
	dueTodayFormat     = "📅 You have %d task(s) due today!"
	nearDeadlineFormat = "⏰ Task '%s' is close to its deadline! 💡 AI tip: %s"
)

func DueTodayMessage(count int) string {
	return fmt.Sprintf(dueTodayFormat, count)
}

func NearDeadlineMessage(taskName, tip string) string {
	return fmt.Sprintf(nearDeadlineFormat, taskName, tip)
}

// DeadlineDedupKey identifica un aviso de fin próximo para una tarea y un fin
// concretos; si el fin cambia, la clave también.
func DeadlineDedupKey(taskID int64, end time.Time) string {
	return fmt.Sprintf("notification:deadline:%d:%d", taskID, end.Unix())
}
