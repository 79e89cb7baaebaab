package logsink

import (
	"context"

	"go.uber.org/zap"

	"github.com/davicafu/tasksense/internal/analytics/domain"
)

// Sink escribe los eventos en el log cuando no hay ClickHouse configurado.
type Sink struct {
	log *zap.Logger
}

var _ domain.Sink = (*Sink)(nil)

func New(log *zap.Logger) *Sink {
	return &Sink{log: log}
}

func (s *Sink) Record(_ context.Context, events ...domain.PipelineEvent) error {
	for _, e := range events {
		s.log.Debug("analytics event",
			zap.String("kind", e.Kind),
			zap.Int64("user_id", e.UserID),
			zap.Int64("task_id", e.TaskID),
			zap.Int("count", e.Count),
			zap.Int("failed", e.Failed),
			zap.Int("chars", e.Chars),
			zap.Duration("duration", e.Duration),
		)
	}
	return nil
}
