package ratelimit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Limiter é o ponto único de sincronização de todas as chamadas de saída.
type Limiter interface {
	Acquire(ctx context.Context, cost int) error
}

// TokenBucket reserva tokens do RateBudget e espera pelo tempo necessário.
// É seguro para uso concorrente: a reserva é feita sob o lock do RateBudget.
type TokenBucket struct {
	budget  *RateBudget
	maxWait time.Duration
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

type Option func(*TokenBucket)

// WithClock substitui o relógio e a espera. Usado em testes.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *TokenBucket) {
		b.now = now
		b.sleep = sleep
	}
}

// NewTokenBucket cria o limitador. maxWait <= 0 significa esperar o quanto for preciso.
func NewTokenBucket(budget *RateBudget, maxWait time.Duration, opts ...Option) *TokenBucket {
	b := &TokenBucket{
		budget:  budget,
		maxWait: maxWait,
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Acquire bloqueia até que cost tokens estejam disponíveis. Retorna
// ErrRateLimitWouldBlock se a espera passar de maxWait e o erro do contexto
// se ele for cancelado durante a espera; em ambos os casos os tokens voltam ao balde.
func (b *TokenBucket) Acquire(ctx context.Context, cost int) error {
	if cost < 1 {
		cost = 1
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	now := b.now()
	delay, reservation, err := b.budget.reserve(now, cost, b.maxWait)
	if err != nil {
		return err
	}

	if delay > 0 {
		logrus.WithFields(logrus.Fields{
			"delay": delay.String(),
			"cost":  cost,
		}).Debug("ratelimit: aguardando tokens")

		if err := b.sleep(ctx, delay); err != nil {
			// Os tokens voltam ao balde; a janela mantém o horário reservado.
			reservation.CancelAt(b.now())
			return err
		}
	}

	b.budget.recordAcquire(now.Add(delay))
	return nil
}

func (b *TokenBucket) Stats() BudgetStats {
	return b.budget.Stats(b.now())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
