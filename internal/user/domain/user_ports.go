package domain

import (
	"context"
	"errors"
	"fmt"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidUser       = errors.New("invalid user")
)

// UserRepository define las operaciones persistentes para User.
type UserRepository interface {
	// Create asigna u.ID. Devuelve ErrUserAlreadyExists si el email ya existe.
	Create(ctx context.Context, u *User) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*User, error)

	List(ctx context.Context, page sharedQuery.OffsetPagination) ([]*User, error)

	// ListAll recorre todos los usuarios; lo usa el barrido de notificaciones.
	ListAll(ctx context.Context) ([]*User, error)
}

// CacheKeyByID forma una key consistente para cache usando ID.
func CacheKeyByID(id int64) string {
	return fmt.Sprintf("user:id:%d", id)
}
