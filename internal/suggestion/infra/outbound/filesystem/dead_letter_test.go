package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/tasksense/internal/suggestion/domain"
)

func TestJSONDeadLetterArchive_AppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dlq", "skipped.json")
	archive := NewJSONDeadLetterArchive(path)
	ctx := context.Background()

	empty, err := archive.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, archive.Archive(ctx, domain.SkippedRecord{Offset: 1, Reason: "malformed", Payload: "{", SkippedAt: time.Now().UTC()}))
	require.NoError(t, archive.Archive(ctx, domain.SkippedRecord{Offset: 2, Key: "9", Reason: "unknown owner"}))

	records, err := archive.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "malformed", records[0].Reason)
	assert.Equal(t, int64(2), records[1].Offset)

	// El fichero lo puede leer otra instancia.
	again, err := NewJSONDeadLetterArchive(path).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestJSONDeadLetterArchive_ConcurrentWrites(t *testing.T) {
	archive := NewJSONDeadLetterArchive(filepath.Join(t.TempDir(), "skipped.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, archive.Archive(ctx, domain.SkippedRecord{Offset: int64(i), Key: fmt.Sprint(i)}))
		}(i)
	}
	wg.Wait()

	records, err := archive.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestJSONDeadLetterArchive_OneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipped.jsonl")
	archive := NewJSONDeadLetterArchive(path)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, archive.Archive(ctx, domain.SkippedRecord{Offset: int64(i), Reason: "malformed", Payload: "{\n}"}))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], `"reason":"malformed"`)
}

func TestJSONDeadLetterArchive_AppendKeepsExistingBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipped.jsonl")
	archive := NewJSONDeadLetterArchive(path)
	ctx := context.Background()

	require.NoError(t, archive.Archive(ctx, domain.SkippedRecord{Offset: 1}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, archive.Archive(ctx, domain.SkippedRecord{Offset: 2}))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(after), string(before)), "los registros previos no se reescriben")
}

func TestJSONDeadLetterArchive_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipped.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))

	_, err := NewJSONDeadLetterArchive(path).GetAll(context.Background())
	assert.Error(t, err)
}
