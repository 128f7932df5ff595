package ratelimit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
	slept   []time.Duration
	advance bool
}

func newFakeClock(advance bool) *fakeClock {
	return &fakeClock{current: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), advance: advance}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	if c.advance {
		c.current = c.current.Add(d)
	}
	return nil
}

func newBucket(t *testing.T, capacity int, interval, maxWait time.Duration, clock *fakeClock) (*TokenBucket, *RateBudget) {
	t.Helper()
	budget, err := NewRateBudget(capacity, interval)
	require.NoError(t, err)
	return NewTokenBucket(budget, maxWait, WithClock(clock.now, clock.sleep)), budget
}

func TestNewRateBudget_ConfigInvalida(t *testing.T) {
	_, err := NewRateBudget(0, time.Second)
	assert.True(t, errors.Is(err, domain.ErrConfig))

	_, err = NewRateBudget(5, 0)
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestTokenBucket_BurstAteCapacidadeDepoisEspera(t *testing.T) {
	clock := newFakeClock(true)
	bucket, budget := newBucket(t, 5, time.Second, 0, clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, bucket.Acquire(ctx, 1))
	}
	assert.Empty(t, clock.slept, "o balde começa cheio")

	// O balde já teria um token em 200ms, mas a janela só libera quando a
	// primeira concessão completa um intervalo.
	require.NoError(t, bucket.Acquire(ctx, 1))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Second, clock.slept[0])

	stats := budget.Stats(clock.now())
	assert.Equal(t, int64(6), stats.TotalRequests)
	assert.Equal(t, 5, stats.Capacity)
	assert.InDelta(t, 4, stats.TokensAvailable, 0.0001)
}

func TestTokenBucket_CustoMaiorQueCapacidade(t *testing.T) {
	clock := newFakeClock(true)
	bucket, _ := newBucket(t, 3, time.Second, 0, clock)

	err := bucket.Acquire(context.Background(), 4)
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestTokenBucket_EsperaMaximaNaoConsomeTokens(t *testing.T) {
	clock := newFakeClock(false)
	bucket, budget := newBucket(t, 2, 10*time.Second, time.Second, clock)
	ctx := context.Background()

	require.NoError(t, bucket.Acquire(ctx, 2))

	err := bucket.Acquire(ctx, 1)
	assert.True(t, errors.Is(err, domain.ErrRateLimitWouldBlock))
	assert.Empty(t, clock.slept)

	// A reserva cancelada devolve o token: 5s depois há exatamente um disponível.
	clock.current = clock.current.Add(5 * time.Second)
	assert.InDelta(t, 1, budget.Stats(clock.now()).TokensAvailable, 0.0001)
	assert.Equal(t, int64(1), budget.Stats(clock.now()).TotalRequests)
}

func TestTokenBucket_ContextoCancelado(t *testing.T) {
	clock := newFakeClock(true)
	bucket, budget := newBucket(t, 1, time.Second, 0, clock)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bucket.Acquire(ctx, 1))
	cancel()

	err := bucket.Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), budget.Stats(clock.now()).TotalRequests)
}

func TestTokenBucket_ConcorrenciaRespeitaCapacidadePorJanela(t *testing.T) {
	const (
		capacity = 10
		callers  = 100
	)
	interval := time.Second

	// Relógio parado: o horário concedido a cada chamada é now + espera.
	clock := newFakeClock(false)
	bucket, budget := newBucket(t, capacity, interval, 0, clock)
	start := clock.now()

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, bucket.Acquire(context.Background(), 1))
		}()
	}
	wg.Wait()

	grants := make([]time.Duration, 0, callers)
	grants = append(grants, make([]time.Duration, callers-len(clock.slept))...)
	grants = append(grants, clock.slept...)
	sort.Slice(grants, func(i, j int) bool { return grants[i] < grants[j] })

	require.Len(t, grants, callers)
	assert.Equal(t, int64(callers), budget.Stats(start).TotalRequests)

	// Apenas o burst inicial sai sem espera.
	immediate := 0
	for _, g := range grants {
		if g == 0 {
			immediate++
		}
	}
	assert.Equal(t, capacity, immediate)

	// Qualquer janela deslizante de um intervalo contém no máximo capacity concessões.
	assert.LessOrEqual(t, maxInWindow(grants, interval), capacity)
}

func TestTokenBucket_JanelaDeslizanteSequencial(t *testing.T) {
	const capacity = 10
	interval := time.Second

	clock := newFakeClock(true)
	bucket, _ := newBucket(t, capacity, interval, 0, clock)
	start := clock.now()

	grants := make([]time.Duration, 0, 40)
	for i := 0; i < 40; i++ {
		require.NoError(t, bucket.Acquire(context.Background(), 1))
		grants = append(grants, clock.now().Sub(start))
	}

	assert.Equal(t, capacity, maxInWindow(grants, interval))
	assert.Equal(t, 3*interval, grants[len(grants)-1])
}

func TestTokenBucket_JanelaComCustoMaiorQueUm(t *testing.T) {
	clock := newFakeClock(true)
	bucket, _ := newBucket(t, 4, time.Second, 0, clock)
	ctx := context.Background()
	start := clock.now()

	require.NoError(t, bucket.Acquire(ctx, 3))
	require.NoError(t, bucket.Acquire(ctx, 1))
	assert.Empty(t, clock.slept)

	// Dois tokens só cabem quando as três primeiras concessões saem da janela.
	require.NoError(t, bucket.Acquire(ctx, 2))
	assert.Equal(t, time.Second, clock.now().Sub(start))
}

// maxInWindow conta o maior número de concessões em uma janela [g, g+interval).
func maxInWindow(grants []time.Duration, interval time.Duration) int {
	sorted := append([]time.Duration(nil), grants...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	best := 0
	for i := range sorted {
		count := 0
		for j := i; j < len(sorted) && sorted[j] < sorted[i]+interval; j++ {
			count++
		}
		best = max(best, count)
	}
	return best
}

func TestRateBudget_RecordRateLimited(t *testing.T) {
	budget, err := NewRateBudget(5, time.Second)
	require.NoError(t, err)

	budget.RecordRateLimited()
	budget.RecordRateLimited()

	assert.Equal(t, int64(2), budget.Stats(time.Now()).RateLimitedResponses)
}
