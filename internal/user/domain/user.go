package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User es el dueño de tareas, sugerencias y notificaciones.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Validate comprueba los campos obligatorios antes de persistir.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrInvalidUser
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidUser
	}
	return nil
}
