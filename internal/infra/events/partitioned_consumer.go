package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	sharedUtils "github.com/davicafu/tasksense/internal/shared/infra/utils"
)

var ErrConsumerStarted = errors.New("consumer already started")

// MessageHandler procesa un registro. No devuelve error: cada handler decide
// qué registrar y qué descartar.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg kafka.Message)
}

// MessageReader es un lector de una sola partición.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// PartitionSource enumera las particiones de un topic y abre lectores sobre ellas.
type PartitionSource interface {
	Partitions(ctx context.Context) ([]int, error)
	Open(ctx context.Context, partition int) (MessageReader, error)
}

type ConsumerOptions struct {
	Workers        int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// PartitionedConsumer lee todas las particiones en paralelo, una goroutine por
// partición, y despacha cada registro a un pool acotado para que un handler lento
// no frene la lectura.
type PartitionedConsumer struct {
	source  PartitionSource
	handler MessageHandler
	opts    ConsumerOptions
	log     *zap.Logger

	// wait duerme d o hasta que ctx se cancele; se sustituye en tests.
	wait func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	readers sync.WaitGroup
	workers *pool.Pool
}

func NewPartitionedConsumer(source PartitionSource, handler MessageHandler, opts ConsumerOptions, log *zap.Logger) *PartitionedConsumer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = 5 * time.Second
	}
	if opts.BackoffMax < opts.BackoffInitial {
		opts.BackoffMax = opts.BackoffInitial
	}
	return &PartitionedConsumer{
		source:  source,
		handler: handler,
		opts:    opts,
		log:     log,
		wait:    sleepCtx,
	}
}

// Start no bloquea. Las particiones se descubren en background, reintentando
// con backoff hasta que el broker responda o se cancele ctx.
func (c *PartitionedConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrConsumerStarted
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.workers = pool.New().WithMaxGoroutines(c.opts.Workers)

	c.log.Info("🎧 Iniciando consumidor particionado...", zap.Int("workers", c.opts.Workers))

	c.readers.Add(1)
	go c.run(runCtx)
	return nil
}

// Stop cancela los lectores, espera a que terminen y deja acabar los registros
// que ya estaban en el pool. No se aceptan registros nuevos tras la cancelación.
func (c *PartitionedConsumer) Stop() {
	c.mu.Lock()
	if !c.started || c.cancel == nil {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.readers.Wait()
	c.workers.Wait()
	c.log.Info("Consumidor particionado detenido.")
}

func (c *PartitionedConsumer) run(ctx context.Context) {
	defer c.readers.Done()

	partitions, err := c.discover(ctx)
	if err != nil {
		return
	}
	if len(partitions) == 0 {
		c.log.Warn("Topic without partitions, nothing to consume")
		return
	}

	c.log.Info("Subscribing to partitions", zap.Ints("partitions", partitions))
	for _, p := range partitions {
		c.readers.Add(1)
		go c.consumePartition(ctx, p)
	}
}

func (c *PartitionedConsumer) discover(ctx context.Context) ([]int, error) {
	backoff := c.newBackoff()
	for attempt := 1; ; attempt++ {
		partitions, err := c.source.Partitions(ctx)
		if err == nil {
			return partitions, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		delay, _ := backoff.Next()
		c.log.Warn("⚠️ No se pudieron listar las particiones, reintentando",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := c.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// consumePartition mantiene vivo el lector de una partición. Un error de lectura
// cierra el lector y reabre tras el backoff; la secuencia se reinicia en cuanto
// llega un registro.
func (c *PartitionedConsumer) consumePartition(ctx context.Context, partition int) {
	defer c.readers.Done()

	log := c.log.With(zap.Int("partition", partition))
	backoff := c.newBackoff()

	for attempt := 1; ; attempt++ {
		reader, err := c.source.Open(ctx, partition)
		if err == nil {
			var received bool
			received, err = c.readLoop(ctx, reader)
			if cerr := reader.Close(); cerr != nil {
				log.Debug("Error closing partition reader", zap.Error(cerr))
			}
			if received {
				backoff = c.newBackoff()
				attempt = 1
			}
		}

		if ctx.Err() != nil {
			log.Info("Lector de partición detenido.")
			return
		}

		delay, _ := backoff.Next()
		log.Warn("🔌 Subscription error, reconnecting",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if c.wait(ctx, delay) != nil {
			log.Info("Lector de partición detenido.")
			return
		}
	}
}

func (c *PartitionedConsumer) readLoop(ctx context.Context, reader MessageReader) (bool, error) {
	received := false
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return received, err
		}
		received = true
		c.dispatch(ctx, msg)
	}
}

// dispatch bloquea si el pool está lleno; esa es la contrapresión sobre la lectura.
// El handler recibe un contexto sin cancelación para que el trabajo en curso
// termine durante el apagado.
func (c *PartitionedConsumer) dispatch(ctx context.Context, msg kafka.Message) {
	if ctx.Err() != nil {
		return
	}
	handlerCtx := context.WithoutCancel(ctx)
	c.workers.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("❌ Panic processing record",
					zap.Int("partition", msg.Partition),
					zap.Int64("offset", msg.Offset),
					zap.String("panic", fmt.Sprint(r)))
			}
		}()
		c.handler.HandleMessage(handlerCtx, msg)
	})
}

func (c *PartitionedConsumer) newBackoff() retry.Backoff {
	return sharedUtils.ReconnectBackoff(c.opts.BackoffInitial, c.opts.BackoffMax)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
