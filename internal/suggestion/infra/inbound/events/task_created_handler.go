package events

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	completionDomain "github.com/davicafu/tasksense/internal/completion/domain"
	sharedEvents "github.com/davicafu/tasksense/internal/shared/events"
	sharedInfraEvents "github.com/davicafu/tasksense/internal/shared/infra/events"
	suggestionDomain "github.com/davicafu/tasksense/internal/suggestion/domain"
	userDomain "github.com/davicafu/tasksense/internal/user/domain"
)

// Motivos de descarte que se guardan en el dead-letter.
const (
	ReasonMalformed    = "malformed payload"
	ReasonMissingOwner = "missing owner"
	ReasonUnknownOwner = "unknown owner"
	ReasonLookupFailed = "owner lookup failed"
	ReasonSaveFailed   = "save failed"
)

// SuggestionGenerator es el CompletionService visto desde el consumidor.
type SuggestionGenerator interface {
	GenerateSuggestion(ctx context.Context, task completionDomain.TaskSummary) string
}

// SuggestionCreator es el SuggestionService visto desde el consumidor.
type SuggestionCreator interface {
	Create(ctx context.Context, ownerID *int64, text string, relatedTaskID *int64) (*suggestionDomain.Suggestion, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*userDomain.User, error)
}

// TaskCreatedHandler convierte cada evento de tarea creada en una sugerencia.
type TaskCreatedHandler struct {
	users       UserLookup
	generator   SuggestionGenerator
	suggestions SuggestionCreator
	deadLetter  suggestionDomain.DeadLetterArchive
	timeout     time.Duration
	log         *zap.Logger
}

// NewTaskCreatedHandler acepta deadLetter nil. timeout acota el proceso completo
// de un registro y debe cubrir la llamada de completion.
func NewTaskCreatedHandler(
	users UserLookup,
	generator SuggestionGenerator,
	suggestions SuggestionCreator,
	deadLetter suggestionDomain.DeadLetterArchive,
	timeout time.Duration,
	log *zap.Logger,
) *TaskCreatedHandler {
	return &TaskCreatedHandler{
		users:       users,
		generator:   generator,
		suggestions: suggestions,
		deadLetter:  deadLetter,
		timeout:     timeout,
		log:         log,
	}
}

// HandleMessage es el punto de entrada para un nuevo registro del stream.
func (h *TaskCreatedHandler) HandleMessage(ctx context.Context, msg kafka.Message) {
	evt, err := sharedEvents.DecodeTaskCreated(msg.Value)
	if err != nil {
		h.log.Warn("Failed to decode task event, skipping",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.ByteString("key", msg.Key),
			zap.Error(err))
		h.skip(ctx, msg, ReasonMalformed)
		return
	}

	h.withContext(ctx, msg, evt, func(ctxTask context.Context) error {
		return h.process(ctxTask, msg, evt)
	})
}

func (h *TaskCreatedHandler) process(ctx context.Context, msg kafka.Message, evt sharedEvents.TaskCreated) error {
	// El dueño se resuelve antes de llamar al modelo: sin dueño no se persiste nada.
	if evt.UserID == nil {
		h.skip(ctx, msg, ReasonMissingOwner)
		return errDropped
	}
	if _, err := h.users.GetUser(ctx, *evt.UserID); err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			h.skip(ctx, msg, ReasonUnknownOwner)
			return errDropped
		}
		h.skip(ctx, msg, ReasonLookupFailed)
		return err
	}

	text := h.generator.GenerateSuggestion(ctx, completionDomain.TaskSummary{
		Name:        evt.Name,
		Description: evt.Description,
		Type:        evt.Type,
	})

	taskID := evt.ID
	if _, err := h.suggestions.Create(ctx, evt.UserID, text, &taskID); err != nil {
		h.skip(ctx, msg, ReasonSaveFailed)
		return err
	}
	return nil
}

var errDropped = errors.New("event dropped")

// Helper para ejecutar la acción con contexto limitado y log.
func (h *TaskCreatedHandler) withContext(ctx context.Context, msg kafka.Message, evt sharedEvents.TaskCreated, action func(ctx context.Context) error) {
	ctxTask, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	fields := []zap.Field{
		zap.Int64("task_id", evt.ID),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("event_id", eventID(msg)),
	}
	if evt.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *evt.UserID))
	}

	err := action(ctxTask)
	switch {
	case err == nil:
		h.log.Info("💡 Suggestion created from task event", fields...)
	case errors.Is(err, errDropped):
		h.log.Warn("Task event dropped: owner not resolvable", fields...)
	default:
		h.log.Warn("Failed to process task event", append(fields, zap.Error(err))...)
	}
}

func (h *TaskCreatedHandler) skip(ctx context.Context, msg kafka.Message, reason string) {
	if h.deadLetter == nil {
		return
	}
	rec := suggestionDomain.SkippedRecord{
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Reason:    reason,
		Payload:   string(msg.Value),
		SkippedAt: time.Now().UTC(),
	}
	if err := h.deadLetter.Archive(context.WithoutCancel(ctx), rec); err != nil {
		h.log.Error("❌ Error archivando registro descartado",
			zap.String("reason", reason),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
	}
}

func eventID(msg kafka.Message) string {
	for _, hdr := range msg.Headers {
		if hdr.Key == sharedInfraEvents.EventIDHeader {
			return string(hdr.Value)
		}
	}
	return strconv.FormatInt(msg.Offset, 10)
}
