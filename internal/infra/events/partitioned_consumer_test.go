package events

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Fakes ---

type recordingHandler struct {
	mu    sync.Mutex
	msgs  []string
	onMsg func(ctx context.Context, msg kafka.Message)
}

func (h *recordingHandler) HandleMessage(ctx context.Context, msg kafka.Message) {
	if h.onMsg != nil {
		h.onMsg(ctx, msg)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, string(msg.Value))
}

func (h *recordingHandler) values() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.msgs...)
}

// blockingReader no devuelve nada hasta que se cancela el contexto.
type blockingReader struct{}

func (blockingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}
func (blockingReader) Close() error { return nil }

// oneShotReader entrega un registro y luego falla como una conexión caída.
type oneShotReader struct {
	sent bool
}

func (r *oneShotReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if !r.sent {
		r.sent = true
		return kafka.Message{Value: []byte("ok")}, nil
	}
	return kafka.Message{}, errors.New("connection reset")
}
func (r *oneShotReader) Close() error { return nil }

type scriptedSource struct {
	mu             sync.Mutex
	partitionFails int
	partitions     []int
	openFails      int
	opened         []int
	newReader      func() MessageReader
}

func (s *scriptedSource) Partitions(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.partitionFails > 0 {
		s.partitionFails--
		return nil, errors.New("broker unreachable")
	}
	return s.partitions, nil
}

func (s *scriptedSource) Open(ctx context.Context, partition int) (MessageReader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, partition)
	if s.openFails > 0 {
		s.openFails--
		return nil, errors.New("dial tcp: connection refused")
	}
	return s.newReader(), nil
}

func (s *scriptedSource) openedPartitions() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.opened...)
}

type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *delayRecorder) wait(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *delayRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func newTestConsumer(src PartitionSource, h MessageHandler, rec *delayRecorder) *PartitionedConsumer {
	c := NewPartitionedConsumer(src, h, ConsumerOptions{
		Workers:        4,
		BackoffInitial: 5 * time.Second,
		BackoffMax:     60 * time.Second,
	}, zap.NewNop())
	if rec != nil {
		c.wait = rec.wait
	}
	return c
}

// --- Tests ---

func TestPartitionedConsumer_ReconnectBackoffIsBoundedAndExponential(t *testing.T) {
	// Arrange
	src := &scriptedSource{
		partitions: []int{0},
		openFails:  6,
		newReader:  func() MessageReader { return blockingReader{} },
	}
	rec := &delayRecorder{}
	c := newTestConsumer(src, &recordingHandler{}, rec)

	// Act
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(src.openedPartitions()) == 7 }, 2*time.Second, 5*time.Millisecond)
	c.Stop()

	// Assert
	delays := rec.recorded()
	assert.Equal(t, []time.Duration{
		5 * time.Second, 10 * time.Second, 20 * time.Second,
		40 * time.Second, 60 * time.Second, 60 * time.Second,
	}, delays)
	for _, d := range delays {
		assert.GreaterOrEqual(t, d, 5*time.Second)
		assert.LessOrEqual(t, d, 60*time.Second)
	}
}

func TestPartitionedConsumer_BackoffResetsAfterSuccessfulRead(t *testing.T) {
	src := &scriptedSource{
		partitions: []int{0},
		newReader:  func() MessageReader { return &oneShotReader{} },
	}
	rec := &delayRecorder{}
	h := &recordingHandler{}
	c := newTestConsumer(src, h, rec)

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(rec.recorded()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	c.Stop()

	for _, d := range rec.recorded() {
		assert.Equal(t, 5*time.Second, d)
	}
	assert.NotEmpty(t, h.values())
}

func TestPartitionedConsumer_RetriesPartitionDiscoveryAndOpensEveryPartition(t *testing.T) {
	src := &scriptedSource{
		partitionFails: 2,
		partitions:     []int{0, 1, 2},
		newReader:      func() MessageReader { return blockingReader{} },
	}
	rec := &delayRecorder{}
	c := newTestConsumer(src, &recordingHandler{}, rec)

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return len(src.openedPartitions()) == 3 }, 2*time.Second, 5*time.Millisecond)
	c.Stop()

	opened := src.openedPartitions()
	sort.Ints(opened)
	assert.Equal(t, []int{0, 1, 2}, opened)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, rec.recorded())
}

func TestPartitionedConsumer_PanickingRecordDoesNotStopSubscription(t *testing.T) {
	bus := NewInMemoryEventBus("todos", 8)
	h := &recordingHandler{onMsg: func(_ context.Context, msg kafka.Message) {
		if string(msg.Value) == "boom" {
			panic("handler exploded")
		}
	}}
	c := newTestConsumer(bus, h, nil)
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.PublishRaw(context.Background(), "1", []byte("boom")))
	require.NoError(t, bus.PublishRaw(context.Background(), "2", []byte("after")))

	require.Eventually(t, func() bool { return len(h.values()) == 1 }, time.Second, 5*time.Millisecond)
	c.Stop()
	assert.Equal(t, []string{"after"}, h.values())
}

func TestPartitionedConsumer_StopLetsInFlightRecordFinish(t *testing.T) {
	bus := NewInMemoryEventBus("todos", 8)
	started := make(chan struct{})
	release := make(chan struct{})
	var handlerCtxErr error
	h := &recordingHandler{onMsg: func(ctx context.Context, _ kafka.Message) {
		close(started)
		<-release
		handlerCtxErr = ctx.Err()
	}}
	c := newTestConsumer(bus, h, nil)
	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bus.PublishRaw(context.Background(), "1", []byte("slow")))
	<-started

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight record finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.NoError(t, handlerCtxErr)
	assert.Equal(t, []string{"slow"}, h.values())
	assert.Equal(t, 0, bus.Subscribers(), "el lector se cierra al parar")
}

func TestPartitionedConsumer_StartTwice(t *testing.T) {
	c := newTestConsumer(NewInMemoryEventBus("todos", 1), &recordingHandler{}, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Stop()

	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerStarted)
}
