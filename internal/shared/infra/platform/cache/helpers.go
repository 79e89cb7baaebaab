package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const asyncTimeout = 200 * time.Millisecond

// AsyncCacheSet actualiza caché en background sin bloquear.
// El contexto de la petición puede estar ya cancelado; la escritura usa uno propio.
func AsyncCacheSet(c Cache, key string, value interface{}, ttl time.Duration, log *zap.Logger) {
	runDetached(c, "set", key, log, func(ctx context.Context) error {
		return c.Set(ctx, key, value, ttl)
	})
}

// AsyncCacheDelete invalida key en background.
func AsyncCacheDelete(c Cache, key string, log *zap.Logger) {
	runDetached(c, "delete", key, log, func(ctx context.Context) error {
		return c.Delete(ctx, key)
	})
}

// runDetached ejecuta op con su propio timeout; un fallo solo se registra.
func runDetached(c Cache, op, key string, log *zap.Logger, fn func(ctx context.Context) error) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn("⚠️ Cache "+op+" failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
