package application

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	analyticsDomain "github.com/davicafu/tasksense/internal/analytics/domain"
	completionDomain "github.com/davicafu/tasksense/internal/completion/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/suggestion/domain"
	userDomain "github.com/davicafu/tasksense/internal/user/domain"
)

const analyticsTimeout = 2 * time.Second

// UserLookup resuelve dueños; lo satisface el UserService.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*userDomain.User, error)
}

// SuggestionService define los casos de uso relacionados con Suggestion.
type SuggestionService struct {
	repo      domain.SuggestionRepository
	users     UserLookup
	analytics analyticsDomain.Sink
	log       *zap.Logger
	now       func() time.Time
}

// NewSuggestionService acepta analytics nil.
func NewSuggestionService(repo domain.SuggestionRepository, users UserLookup, analytics analyticsDomain.Sink, log *zap.Logger) *SuggestionService {
	return &SuggestionService{
		repo:      repo,
		users:     users,
		analytics: analytics,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create guarda una sugerencia de un dueño existente. Un dueño nil devuelve
// ErrOwnerRequired y uno desconocido userDomain.ErrUserNotFound; en ambos casos
// no se persiste nada.
func (s *SuggestionService) Create(ctx context.Context, ownerID *int64, text string, relatedTaskID *int64) (*domain.Suggestion, error) {
	if ownerID == nil {
		return nil, domain.ErrOwnerRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}
	owner, err := s.users.GetUser(ctx, *ownerID)
	if err != nil {
		return nil, err
	}

	suggestion := &domain.Suggestion{
		Text:          completionDomain.Truncate(text),
		CreatedAt:     s.now(),
		UserID:        owner.ID,
		RelatedTaskID: relatedTaskID,
	}
	if err := s.repo.Save(ctx, suggestion); err != nil {
		s.log.Error("Failed to save suggestion", zap.Int64("user_id", owner.ID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, suggestion)
	return suggestion, nil
}

func (s *SuggestionService) record(ctx context.Context, suggestion *domain.Suggestion) {
	if s.analytics == nil {
		return
	}
	evt := analyticsDomain.PipelineEvent{
		Kind:       analyticsDomain.KindSuggestionCreated,
		UserID:     suggestion.UserID,
		Chars:      utf8.RuneCountInString(suggestion.Text),
		OccurredAt: suggestion.CreatedAt,
	}
	if suggestion.RelatedTaskID != nil {
		evt.TaskID = *suggestion.RelatedTaskID
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), analyticsTimeout)
	defer cancel()
	if err := s.analytics.Record(recCtx, evt); err != nil {
		s.log.Debug("Analytics record failed", zap.String("kind", evt.Kind), zap.Error(err))
	}
}

func (s *SuggestionService) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SuggestionService) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*domain.Suggestion, error) {
	return s.repo.ListByOwner(ctx, userID, page.Normalize(sharedQuery.DefaultPage.Limit))
}

// Delete es administrativo: no comprueba el dueño.
func (s *SuggestionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Suggestion deleted", zap.Int64("suggestion_id", id))
	return nil
}
