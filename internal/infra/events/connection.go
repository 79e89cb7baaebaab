package events

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// Event Hubs expone su endpoint Kafka en el 9093 con SASL PLAIN sobre TLS.
const (
	eventHubsKafkaPort = "9093"
	eventHubsUsername  = "$ConnectionString"
)

var ErrInvalidConnectionString = errors.New("invalid event stream connection string")

// Connection describe cómo llegar al broker.
type Connection struct {
	Brokers []string
	// EntityPath es el event hub indicado en la connection string, si lo hay.
	EntityPath string
	SASL       sasl.Mechanism
	TLS        *tls.Config
}

// ParseConnectionString acepta una lista de brokers "host:port,host:port" o una
// connection string de Azure Event Hubs ("Endpoint=sb://<ns>.servicebus.windows.net/;...").
func ParseConnectionString(cs string) (Connection, error) {
	cs = strings.TrimSpace(cs)
	if cs == "" {
		return Connection{}, fmt.Errorf("%w: empty", ErrInvalidConnectionString)
	}
	if strings.Contains(strings.ToLower(cs), "endpoint=") {
		return parseEventHubs(cs)
	}

	var brokers []string
	for _, b := range strings.Split(cs, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return Connection{}, fmt.Errorf("%w: no brokers", ErrInvalidConnectionString)
	}
	return Connection{Brokers: brokers}, nil
}

func parseEventHubs(cs string) (Connection, error) {
	fields := map[string]string{}
	for _, part := range strings.Split(cs, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		fields[strings.ToLower(kv[0])] = kv[1]
	}

	endpoint, ok := fields["endpoint"]
	if !ok || endpoint == "" {
		return Connection{}, fmt.Errorf("%w: missing Endpoint", ErrInvalidConnectionString)
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return Connection{}, fmt.Errorf("%w: bad Endpoint %q", ErrInvalidConnectionString, endpoint)
	}
	if fields["sharedaccesskeyname"] == "" || fields["sharedaccesskey"] == "" {
		return Connection{}, fmt.Errorf("%w: missing shared access key", ErrInvalidConnectionString)
	}

	return Connection{
		Brokers:    []string{u.Hostname() + ":" + eventHubsKafkaPort},
		EntityPath: fields["entitypath"],
		SASL:       plain.Mechanism{Username: eventHubsUsername, Password: cs},
		TLS:        &tls.Config{MinVersion: tls.VersionTLS12},
	}, nil
}

// Dialer se usa para descubrir particiones y abrir lectores.
func (c Connection) Dialer(clientID string) *kafka.Dialer {
	return &kafka.Dialer{
		ClientID:      clientID,
		Timeout:       10 * time.Second,
		DualStack:     true,
		TLS:           c.TLS,
		SASLMechanism: c.SASL,
	}
}

// NewWriter crea el writer compartido del proceso. Es síncrono: WriteMessages
// vuelve cuando el broker confirma o cuando vence el contexto.
func (c Connection) NewWriter(topic, clientID string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Transport: &kafka.Transport{
			ClientID: clientID,
			TLS:      c.TLS,
			SASL:     c.SASL,
		},
	}
}
