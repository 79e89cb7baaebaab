package logsink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davicafu/tasksense/internal/analytics/domain"
)

func TestSink_LogsEachEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := New(zap.New(core))

	err := sink.Record(context.Background(),
		domain.PipelineEvent{Kind: domain.KindSuggestionCreated, UserID: 1, TaskID: 2, Chars: 40},
		domain.PipelineEvent{Kind: domain.KindSweepCompleted, Count: 3},
	)

	require.NoError(t, err)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, domain.KindSuggestionCreated, logs.All()[0].ContextMap()["kind"])
	assert.Equal(t, int64(3), logs.All()[1].ContextMap()["count"])
}
