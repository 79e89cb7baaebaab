package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	analyticsDomain "github.com/davicafu/tasksense/internal/analytics/domain"
	sharedBus "github.com/davicafu/tasksense/internal/shared/infra/platform/bus"
)

// MockPublisher simula un publisher
type MockPublisher struct {
	mock.Mock
}

var _ sharedBus.EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return nil
}

// RecordingSink guarda los eventos de analítica recibidos.
type RecordingSink struct {
	mu       sync.Mutex
	Events   []analyticsDomain.PipelineEvent
	FailWith error
}

var _ analyticsDomain.Sink = (*RecordingSink)(nil)

func (s *RecordingSink) Record(ctx context.Context, events ...analyticsDomain.PipelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.Events = append(s.Events, events...)
	return nil
}

func (s *RecordingSink) Kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		out = append(out, e.Kind)
	}
	return out
}
