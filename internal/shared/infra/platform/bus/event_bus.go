package bus

import "context"

// Keyer lo implementan los eventos que eligen su clave de partición.
type Keyer interface {
	PartitionKey() string
}

// EventPublisher añade un registro al stream. El topic y el formato del payload
// los decide cada adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
	Close() error
}
