package amazonclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vfg2006/ppc-optimizer/internal/config"
)

// RetryPolicy define o backoff exponencial aplicado a 429/425, 5xx e falhas de rede.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   5 * time.Second,
		MaxDelay:    120 * time.Second,
	}
}

func NewRetryPolicy(cfg config.Retry) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.BaseDelaySeconds) * time.Second,
		MaxDelay:    time.Duration(cfg.MaxDelaySeconds) * time.Second,
	}
}

// Backoff retorna a espera após a tentativa de número attempt (a partir de 1):
// base, 2*base, 4*base... limitado ao teto.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Delay respeita o Retry-After do servidor quando ele pede mais que o backoff, sem passar do teto.
func (p RetryPolicy) Delay(attempt int, retryAfter time.Duration) time.Duration {
	delay := p.Backoff(attempt)
	if retryAfter > delay {
		delay = retryAfter
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// parseRetryAfter aceita segundos ou data HTTP.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now)
	}

	return 0
}
