package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	sharedCache "github.com/davicafu/tasksense/internal/shared/infra/platform/cache"
)

type entry struct {
	raw      []byte
	deadline time.Time
}

func (e entry) liveAt(t time.Time) bool {
	return !t.After(e.deadline)
}

// InMemoryCache es la alternativa a Redis cuando no hay servidor disponible.
// Solo vale para un proceso: la deduplicación no se comparte entre réplicas.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

var _ sharedCache.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache arranca una goroutine que purga claves expiradas cada purgeEvery.
func NewInMemoryCache(defaultTTL, purgeEvery time.Duration) *InMemoryCache {
	c := &InMemoryCache{
		entries: map[string]entry{},
		ttl:     defaultTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.janitor(purgeEvery)
	return c
}

func (c *InMemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !e.liveAt(c.now()) {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, val interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = c.entryFor(raw, ttl)
	c.mu.Unlock()
	return nil
}

// SetIfAbsent reserva key solo si no existe o ya expiró.
func (c *InMemoryCache) SetIfAbsent(_ context.Context, key string, val interface{}, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(val)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.liveAt(c.now()) {
		return false, nil
	}
	c.entries[key] = c.entryFor(raw, ttl)
	return true, nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Stop detiene la purga periódica. Es idempotente.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// Len devuelve cuántas claves hay guardadas, incluidas las expiradas sin purgar.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryCache) entryFor(raw []byte, ttl time.Duration) entry {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return entry{raw: raw, deadline: c.now().Add(ttl)}
}

func (c *InMemoryCache) purge() {
	at := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if !e.liveAt(at) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

func (c *InMemoryCache) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.purge()
		}
	}
}
