package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	sharedEvents "github.com/davicafu/tasksense/internal/shared/infra/events"
	sharedBus "github.com/davicafu/tasksense/internal/shared/infra/platform/bus"
)

var ErrBusClosed = errors.New("event bus closed")

// InMemoryEventBus es un stream en proceso de UN solo topic y una sola partición.
// Como Kafka leyendo desde "latest", un registro publicado sin lectores se pierde.
type InMemoryEventBus struct {
	topic       string
	bufferSize  int
	subscribers []*memorySubscription
	mu          sync.RWMutex
	offset      atomic.Int64
	stop        chan struct{}
	once        sync.Once
}

var (
	_ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)
	_ PartitionSource          = (*InMemoryEventBus)(nil)
)

func NewInMemoryEventBus(topic string, bufferSize int) *InMemoryEventBus {
	return &InMemoryEventBus{
		topic:      topic,
		bufferSize: bufferSize,
		stop:       make(chan struct{}),
	}
}

// Publish serializa el evento y lo entrega a cada lector abierto.
// Bloquea si un lector tiene el buffer lleno, acotado por ctx.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	var key string
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = keyer.PartitionKey()
	}
	return b.PublishRaw(ctx, key, data)
}

// PublishRaw publica un payload tal cual, sin serializar.
func (b *InMemoryEventBus) PublishRaw(ctx context.Context, key string, payload []byte) error {
	select {
	case <-b.stop:
		return ErrBusClosed
	default:
	}

	msg := kafka.Message{
		Topic:     b.topic,
		Partition: 0,
		Offset:    b.offset.Add(1) - 1,
		Key:       []byte(key),
		Value:     payload,
		Headers:   []kafka.Header{{Key: sharedEvents.EventIDHeader, Value: []byte(uuid.New().String())}},
		Time:      time.Now(),
	}

	b.mu.RLock()
	subs := append([]*memorySubscription(nil), b.subscribers...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- msg:
		case <-sub.done:
		case <-b.stop:
			return ErrBusClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Partitions siempre devuelve la partición 0.
func (b *InMemoryEventBus) Partitions(ctx context.Context) ([]int, error) {
	return []int{0}, nil
}

// Open suscribe un lector nuevo. Solo ve los registros publicados a partir de ahora.
func (b *InMemoryEventBus) Open(ctx context.Context, partition int) (MessageReader, error) {
	if partition != 0 {
		return nil, fmt.Errorf("partition %d does not exist", partition)
	}
	select {
	case <-b.stop:
		return nil, ErrBusClosed
	default:
	}

	sub := &memorySubscription{
		bus:  b,
		ch:   make(chan kafka.Message, b.bufferSize),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()
	return sub, nil
}

// Subscribers devuelve cuántos lectores hay abiertos.
func (b *InMemoryEventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close despierta a todos los lectores con ErrBusClosed.
func (b *InMemoryEventBus) Close() error {
	b.once.Do(func() { close(b.stop) })
	return nil
}

func (b *InMemoryEventBus) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscribers {
		if s == sub {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

type memorySubscription struct {
	bus  *InMemoryEventBus
	ch   chan kafka.Message
	done chan struct{}
	once sync.Once
}

func (s *memorySubscription) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-s.ch:
		return msg, nil
	case <-s.done:
		return kafka.Message{}, ErrBusClosed
	case <-s.bus.stop:
		return kafka.Message{}, ErrBusClosed
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
	return nil
}
