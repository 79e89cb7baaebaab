package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/davicafu/tasksense/internal/analytics/domain"
)

// PipelineSink guarda los eventos del pipeline en ClickHouse.
type PipelineSink struct {
	db *sql.DB
}

// NewPipelineSink es el constructor.
func NewPipelineSink(addr string, dbName string) (*PipelineSink, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return newPipelineSink(conn), nil
}

func newPipelineSink(db *sql.DB) *PipelineSink {
	return &PipelineSink{db: db}
}

// Record inserta los eventos como un único lote.
func (r *PipelineSink) Record(ctx context.Context, events ...domain.PipelineEvent) error {
	if len(events) == 0 {
		return nil
	}
	// ClickHouse funciona mejor con inserciones en lotes.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO pipeline_events (kind, user_id, task_id, count, failed, chars, duration_ms, event_time)")
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.Kind,
			e.UserID,
			e.TaskID,
			uint32(e.Count),
			uint32(e.Failed),
			uint32(e.Chars),
			uint64(e.Duration.Milliseconds()),
			e.OccurredAt,
		); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			_ = tx.Rollback()
			return fmt.Errorf("failed to exec statement for %s event: %w", e.Kind, err)
		}
	}

	return tx.Commit()
}

// DailyCounts agrupa los eventos del intervalo por día y tipo.
func (r *PipelineSink) DailyCounts(ctx context.Context, start, end time.Time) ([]domain.DailyCount, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			kind,
			sum(if(kind = 'sweep.completed', count, 1)) AS total
		FROM pipeline_events
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day, kind
		ORDER BY day, kind
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []domain.DailyCount{}
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Day, &c.Kind, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *PipelineSink) InitSchema(ctx context.Context) error {
	// Se particiona por mes y se ordena por tipo y fecha.
	query := `
		CREATE TABLE IF NOT EXISTS pipeline_events (
			kind        LowCardinality(String),
			user_id     Int64,
			task_id     Int64,
			count       UInt32,
			failed      UInt32,
			chars       UInt32,
			duration_ms UInt64,
			event_time  DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (kind, event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *PipelineSink) Close() error {
	return r.db.Close()
}

// Verificación estática de la interfaz.
var (
	_ domain.Sink     = (*PipelineSink)(nil)
	_ domain.Reporter = (*PipelineSink)(nil)
)
