package application

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/davicafu/tasksense/internal/completion/domain"
)

const promptTemplate = "You are an assistant specialized in productivity. " +
	"Analyze the following task and give a practical suggestion (at most two paragraphs and 3 sentences) " +
	"to help the person complete it:\n\n" +
	"Task: %s\n" +
	"Description: %s\n" +
	"Type: %s\n\n" +
	"Answer in a concise and motivating way."

const (
	noDescription = "No description"
	noType        = "Not specified"
)

// CompletionService envuelve al Completer: construye el prompt, acota la
// llamada y la longitud de la salida, y nunca devuelve error.
type CompletionService struct {
	completer domain.Completer
	maxTokens int
	timeout   time.Duration
	log       *zap.Logger
}

func NewCompletionService(completer domain.Completer, maxTokens int, timeout time.Duration, log *zap.Logger) *CompletionService {
	return &CompletionService{
		completer: completer,
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       log,
	}
}

// BuildPrompt es determinista para los mismos campos.
func BuildPrompt(task domain.TaskSummary) string {
	description := noDescription
	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		description = *task.Description
	}
	taskType := noType
	if strings.TrimSpace(task.Type) != "" {
		taskType = task.Type
	}
	return fmt.Sprintf(promptTemplate, task.Name, description, taskType)
}

// GenerateSuggestion devuelve el texto generado, recortado a domain.MaxChars, o
// domain.FallbackText si la llamada falla, vence el timeout o no hay texto.
func (s *CompletionService) GenerateSuggestion(ctx context.Context, task domain.TaskSummary) (text string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("❌ Panic in completion provider", zap.String("task", task.Name), zap.Any("panic", r))
			text = domain.FallbackText
		}
	}()

	if s.completer == nil {
		return domain.FallbackText
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Info("Generating AI suggestion", zap.String("task", task.Name))
	out, err := s.completer.Complete(callCtx, BuildPrompt(task), s.maxTokens)
	if err == nil && strings.TrimSpace(out) == "" {
		err = domain.ErrEmptyCompletion
	}
	if err != nil {
		s.log.Warn("⚠️ Completion failed, using fallback", zap.String("task", task.Name), zap.Error(err))
		return domain.FallbackText
	}

	if n := utf8.RuneCountInString(out); n > domain.MaxChars {
		s.log.Warn("Suggestion too long, truncating", zap.Int("chars", n), zap.Int("max", domain.MaxChars))
		out = domain.Truncate(out)
	}
	return out
}
