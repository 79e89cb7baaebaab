package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/tasksense/internal/shared/infra/platform/bus"
)

// EventIDHeader identifica cada registro publicado.
const EventIDHeader = "event-id"

// messageWriter es el subconjunto de *kafka.Writer que usa el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher mantiene un único writer abierto durante toda la vida del proceso.
// WriteMessages es síncrono: bloquea hasta el ack del broker o hasta que vence el ctx.
type KafkaPublisher struct {
	writer messageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(writer messageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	var key []byte
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = []byte(keyer.PartitionKey())
	}

	eventID := uuid.New().String()
	msg := kafka.Message{
		Key:     key,
		Value:   data,
		Headers: []kafka.Header{{Key: EventIDHeader, Value: []byte(eventID)}},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully", zap.String("event_id", eventID), zap.ByteString("key", key))
	return nil
}

// Close libera el writer; se llama una vez en el apagado.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Verificación estática
var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)
