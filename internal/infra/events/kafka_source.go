package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPartitionSource abre un lector independiente por partición, sin consumer
// group: la asignación es explícita y no hay offsets persistidos.
type KafkaPartitionSource struct {
	conn    Connection
	topic   string
	dialer  *kafka.Dialer
	backoff ReaderBackoff
	log     *zap.Logger
}

// ReaderBackoff fija la espera entre lecturas fallidas dentro de kafka-go. Es la
// misma política que aplica PartitionedConsumer al reabrir una partición.
type ReaderBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

var _ PartitionSource = (*KafkaPartitionSource)(nil)

// NewKafkaPartitionSource usa el consumer group como client id; con asignación
// explícita kafka-go no coordina grupo.
func NewKafkaPartitionSource(conn Connection, topic, consumerGroup string, backoff ReaderBackoff, log *zap.Logger) *KafkaPartitionSource {
	return &KafkaPartitionSource{
		conn:    conn,
		topic:   topic,
		dialer:  conn.Dialer(consumerGroup),
		backoff: backoff,
		log:     log,
	}
}

// Partitions prueba cada broker hasta que uno responde.
func (s *KafkaPartitionSource) Partitions(ctx context.Context) ([]int, error) {
	var errs []error
	for _, broker := range s.conn.Brokers {
		parts, err := s.dialer.LookupPartitions(ctx, "tcp", broker, s.topic)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", broker, err))
			continue
		}
		ids := make([]int, 0, len(parts))
		for _, p := range parts {
			ids = append(ids, p.ID)
		}
		sort.Ints(ids)
		return ids, nil
	}
	return nil, fmt.Errorf("looking up partitions of %q: %w", s.topic, errors.Join(errs...))
}

// Open comprueba que el líder de la partición es alcanzable y devuelve un lector
// posicionado al final del log: solo se leen registros nuevos.
func (s *KafkaPartitionSource) Open(ctx context.Context, partition int) (MessageReader, error) {
	var lastErr error
	for _, broker := range s.conn.Brokers {
		conn, err := s.dialer.DialLeader(ctx, "tcp", broker, s.topic, partition)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()

		r := kafka.NewReader(s.readerConfig(partition))
		if err := r.SetOffset(kafka.LastOffset); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("seeking partition %d to latest: %w", partition, err)
		}
		s.log.Debug("Partition reader opened", zap.String("topic", s.topic), zap.Int("partition", partition))
		return r, nil
	}
	return nil, fmt.Errorf("dialing leader of partition %d: %w", partition, lastErr)
}

func (s *KafkaPartitionSource) readerConfig(partition int) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        s.conn.Brokers,
		Topic:          s.topic,
		Partition:      partition,
		Dialer:         s.dialer,
		MinBytes:       1,
		MaxBytes:       10e6,
		ReadBackoffMin: s.backoff.Initial,
		ReadBackoffMax: s.backoff.Max,
	}
}
