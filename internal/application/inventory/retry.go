package inventory

import (
	"context"
	"math/rand"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

// RetryPolicy reintentos acotados con backoff exponencial y jitter para errores
// transitorios (contención de bloqueos, fallas transitorias del almacén).
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Do ejecuta fn hasta que tenga éxito, falle con un error no reintentable o se agoten
// los intentos. Un error transitorio nunca se devuelve en el primer intento.
// Devuelve el número de intentos realizados.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 2 {
		maxAttempts = 2
	}
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil || !domain.IsRetryable(err) || attempt >= maxAttempts {
			return attempt, err
		}
		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, err
		case <-timer.C:
		}
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseBackoff
	if base <= 0 {
		base = 10 * time.Millisecond
	}
	d := base << (attempt - 1)
	if p.MaxBackoff > 0 && (d > p.MaxBackoff || d <= 0) {
		d = p.MaxBackoff
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
