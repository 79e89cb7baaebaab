package domain

import (
	"context"
	"time"
)

// Tipos de evento de analítica del pipeline.
const (
	KindSuggestionCreated = "suggestion.created"
	KindSweepCompleted    = "sweep.completed"
)

// PipelineEvent es una fila append-only del log de analítica.
type PipelineEvent struct {
	Kind       string
	UserID     int64
	TaskID     int64
	Count      int
	Failed     int
	Chars      int
	Duration   time.Duration
	OccurredAt time.Time
}

// DailyCount agrega eventos por día y tipo.
type DailyCount struct {
	Day   time.Time
	Kind  string
	Count uint64
}

// Sink recibe eventos de analítica. Es best effort: un fallo no afecta al pipeline.
type Sink interface {
	Record(ctx context.Context, events ...PipelineEvent) error
}

// Reporter consulta el log agregado.
type Reporter interface {
	DailyCounts(ctx context.Context, start, end time.Time) ([]DailyCount, error)
}
