package domain

import (
	"strings"
	"time"

	sharedEvents "github.com/davicafu/tasksense/internal/shared/events"
)

// Task es de solo lectura para el pipeline: se crea por HTTP y el resto la consulta.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Start       *time.Time `json:"start" db:"start_at"`
	End         *time.Time `json:"end" db:"end_at"`
	Completed   bool       `json:"isCompleted" db:"completed"`
	Type        string     `json:"type" db:"type"`
	UserID      *int64     `json:"userId" db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidTask
	}
	if t.Start != nil && t.End != nil && t.End.Before(*t.Start) {
		return ErrInvalidTask
	}
	return nil
}

// ToEvent construye el hecho publicado tras crear la tarea.
func (t *Task) ToEvent() sharedEvents.TaskCreated {
	return sharedEvents.TaskCreated{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Start:       sharedEvents.NewLocalDateTime(t.Start),
		End:         sharedEvents.NewLocalDateTime(t.End),
		IsCompleted: t.Completed,
		Type:        t.Type,
		UserID:      t.UserID,
	}
}

// TouchesDay indica si el inicio o el fin caen en el día natural de ref,
// medido en la zona de ref.
func (t *Task) TouchesDay(ref time.Time) bool {
	return sameDay(t.Start, ref) || sameDay(t.End, ref)
}

// EndsWithin indica si el fin cae estrictamente dentro de (now, now+window).
func (t *Task) EndsWithin(now time.Time, window time.Duration) bool {
	if t.End == nil {
		return false
	}
	return t.End.After(now) && t.End.Before(now.Add(window))
}

func sameDay(ts *time.Time, ref time.Time) bool {
	if ts == nil {
		return false
	}
	y1, m1, d1 := ts.In(ref.Location()).Date()
	y2, m2, d2 := ref.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
