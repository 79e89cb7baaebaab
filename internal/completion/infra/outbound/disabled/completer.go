package disabled

import (
	"context"

	"github.com/davicafu/tasksense/internal/completion/domain"
)

// Completer se usa con provider "none": toda sugerencia acaba en el texto de fallback.
type Completer struct{}

var _ domain.Completer = Completer{}

func (Completer) Complete(context.Context, string, int) (string, error) {
	return "", domain.ErrCompletionDisabled
}
