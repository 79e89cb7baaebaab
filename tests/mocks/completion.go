package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	completionDomain "github.com/davicafu/tasksense/internal/completion/domain"
)

// MockCompleter simula el endpoint de generación de texto.
type MockCompleter struct {
	mock.Mock
}

var _ completionDomain.Completer = (*MockCompleter)(nil)

func (m *MockCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

// StaticCompleter devuelve siempre el mismo texto y cuenta las llamadas.
type StaticCompleter struct {
	Text  string
	Err   error
	mu    sync.Mutex
	calls []string
}

func (c *StaticCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, prompt)
	return c.Text, c.Err
}

func (c *StaticCompleter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
