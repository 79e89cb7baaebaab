package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	sharedCache "github.com/davicafu/tasksense/internal/shared/infra/platform/cache"
)

var ErrCacheDown = errors.New("cache down")

// DummyCache es una caché en memoria sin expiración, segura para concurrencia.
// FailWith hace que Get, Set y SetIfAbsent devuelvan ese error.
type DummyCache struct {
	FailWith error

	mu sync.RWMutex
	kv map[string][]byte
}

var _ sharedCache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{kv: map[string][]byte{}}
}

func (c *DummyCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	raw, found := c.kv[key]
	fail := c.FailWith
	c.mu.RUnlock()

	switch {
	case fail != nil:
		return false, fail
	case !found:
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *DummyCache) Set(_ context.Context, key string, val interface{}, _ time.Duration) error {
	_, err := c.put(key, val, true)
	return err
}

func (c *DummyCache) SetIfAbsent(_ context.Context, key string, val interface{}, _ time.Duration) (bool, error) {
	return c.put(key, val, false)
}

func (c *DummyCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.kv, key)
	c.mu.Unlock()
	return nil
}

// Has indica si la clave existe; solo para aserciones.
func (c *DummyCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, found := c.kv[key]
	return found
}

func (c *DummyCache) put(key string, val interface{}, overwrite bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailWith != nil {
		return false, c.FailWith
	}
	if _, found := c.kv[key]; found && !overwrite {
		return false, nil
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return false, err
	}
	c.kv[key] = raw
	return true, nil
}
