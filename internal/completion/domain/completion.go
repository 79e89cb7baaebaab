package domain

import (
	"context"
	"errors"
)

// MaxChars es el tope de caracteres de cualquier texto generado que se guarda.
const MaxChars = 1500

const ellipsis = "..."

// FallbackText sustituye a la respuesta del modelo cuando la llamada falla.
const FallbackText = "Unable to generate a suggestion right now. Please try again later."

var (
	ErrCompletionDisabled = errors.New("completion provider disabled")
	ErrEmptyCompletion    = errors.New("completion returned no text")
)

// TaskSummary son los campos de una tarea que entran en el prompt.
type TaskSummary struct {
	Name        string
	Description *string
	Type        string
}

// Completer es el endpoint externo de generación de texto.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Truncate aplica MaxChars contando runas: lo que excede se corta y las tres
// últimas posiciones pasan a ser "...".
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxChars {
		return text
	}
	return string(runes[:MaxChars-len(ellipsis)]) + ellipsis
}
