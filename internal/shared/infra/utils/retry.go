package utils

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry ejecuta fn hasta attempts veces con una espera constante entre intentos.
// Los errores que coinciden (errors.Is) con alguno de stopOn cortan los reintentos.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error, stopOn ...error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		for _, target := range stopOn {
			if errors.Is(err, target) {
				return err
			}
		}
		return retry.RetryableError(err)
	})
}

// ReconnectBackoff devuelve una espera exponencial sin límite de intentos:
// initial, 2*initial, 4*initial... acotada a max. Es stateful; se crea una nueva
// para reiniciar la secuencia.
func ReconnectBackoff(initial, max time.Duration) retry.Backoff {
	return retry.WithCappedDuration(max, retry.NewExponential(initial))
}
