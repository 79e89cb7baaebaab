package domain

import (
	"context"
	"errors"
	"time"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrOwnerRequired      = errors.New("suggestion owner is required")
	ErrEmptyText          = errors.New("suggestion text is empty")
)

// Suggestion es inmutable una vez creada, salvo borrado administrativo.
type Suggestion struct {
	ID            int64     `json:"id" db:"id"`
	Text          string    `json:"text" db:"text"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UserID        int64     `json:"userId" db:"user_id"`
	RelatedTaskID *int64    `json:"relatedTaskId,omitempty" db:"related_task_id"`
}

type SuggestionRepository interface {
	// Save asigna s.ID.
	Save(ctx context.Context, s *Suggestion) error
	GetByID(ctx context.Context, id int64) (*Suggestion, error)
	ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*Suggestion, error)
	Delete(ctx context.Context, id int64) error
}

// SkippedRecord describe un registro del stream que no produjo sugerencia.
type SkippedRecord struct {
	Partition int       `json:"partition"`
	Offset    int64     `json:"offset"`
	Key       string    `json:"key"`
	Reason    string    `json:"reason"`
	Payload   string    `json:"payload"`
	SkippedAt time.Time `json:"skippedAt"`
}

// DeadLetterArchive guarda los registros descartados para revisarlos después.
type DeadLetterArchive interface {
	Archive(ctx context.Context, rec SkippedRecord) error
}
