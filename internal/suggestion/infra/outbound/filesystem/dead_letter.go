package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/davicafu/tasksense/internal/suggestion/domain"
)

// JSONDeadLetterArchive es un adaptador outbound que añade los registros
// descartados por el consumidor a un fichero JSON Lines, uno por línea.
type JSONDeadLetterArchive struct {
	filePath string
	mu       sync.Mutex // serializa los append de los workers del pool
}

var _ domain.DeadLetterArchive = (*JSONDeadLetterArchive)(nil)

// NewJSONDeadLetterArchive es el constructor.
func NewJSONDeadLetterArchive(filePath string) *JSONDeadLetterArchive {
	return &JSONDeadLetterArchive{filePath: filePath}
}

// Archive añade una línea al fichero sin leer lo ya escrito. Si el fichero no existe, lo crea.
func (s *JSONDeadLetterArchive) Archive(ctx context.Context, rec domain.SkippedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding skipped record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	// Una sola escritura por registro: con O_APPEND la línea no se intercala.
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetAll recupera todos los registros archivados, en orden de escritura.
func (s *JSONDeadLetterArchive) GetAll(ctx context.Context) ([]domain.SkippedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.SkippedRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records := []domain.SkippedRecord{}
	dec := json.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec domain.SkippedRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding record %d of %s: %w", len(records)+1, s.filePath, err)
		}
		records = append(records, rec)
	}
}
