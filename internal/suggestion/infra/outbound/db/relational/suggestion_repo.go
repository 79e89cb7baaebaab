package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/suggestion/domain"
)

const suggestionColumns = "id, text, created_at, user_id, related_task_id"

type SuggestionRepo struct {
	db *sqlx.DB
}

var _ domain.SuggestionRepository = (*SuggestionRepo)(nil)

func NewSuggestionRepo(db *sqlx.DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

func (r *SuggestionRepo) Save(ctx context.Context, s *domain.Suggestion) error {
	query := r.db.Rebind(`INSERT INTO suggestions (text, created_at, user_id, related_task_id) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, s.Text, s.CreatedAt, s.UserID, s.RelatedTaskID).Scan(&s.ID); err != nil {
		return fmt.Errorf("inserting suggestion: %w", err)
	}
	return nil
}

func (r *SuggestionRepo) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	var s domain.Suggestion
	query := r.db.Rebind(`SELECT ` + suggestionColumns + ` FROM suggestions WHERE id = ?`)
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("fetching suggestion %d: %w", id, err)
	}
	return &s, nil
}

// ListByOwner devuelve las sugerencias más recientes primero.
func (r *SuggestionRepo) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*domain.Suggestion, error) {
	out := []*domain.Suggestion{}
	query := r.db.Rebind(`SELECT ` + suggestionColumns + ` FROM suggestions WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &out, query, userID, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	return out, nil
}

func (r *SuggestionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM suggestions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting suggestion %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrSuggestionNotFound
	}
	return nil
}
