package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"golang.org/x/time/rate"
)

// RateBudget é o estado de cota compartilhado por todas as chamadas do processo.
// Deve ser criado uma única vez e repassado por referência a quem faz requisições.
type RateBudget struct {
	limiter  *rate.Limiter
	capacity int
	interval time.Duration

	mu sync.Mutex
	// grants guarda o horário de concessão dos últimos capacity tokens, em ordem
	// circular; next aponta para o mais antigo.
	grants      []time.Time
	next        int
	lastGrantAt time.Time

	totalRequests  int64
	rateLimited    int64
	lastAcquiredAt time.Time
}

// BudgetStats é uma cópia dos contadores em um instante.
type BudgetStats struct {
	Capacity             int       `json:"capacity"`
	RefillInterval       string    `json:"refill_interval"`
	TokensAvailable      float64   `json:"tokens_available"`
	TotalRequests        int64     `json:"total_requests"`
	RateLimitedResponses int64     `json:"rate_limited_responses"`
	LastAcquiredAt       time.Time `json:"last_acquired_at"`
}

// NewRateBudget cria um balde cheio com capacity tokens que é reabastecido
// continuamente à taxa de capacity por refillInterval. Além do balde, nenhuma
// janela deslizante de refillInterval concede mais que capacity tokens.
func NewRateBudget(capacity int, refillInterval time.Duration) (*RateBudget, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacidade do limitador deve ser >= 1, recebido %d", domain.ErrConfig, capacity)
	}
	if refillInterval <= 0 {
		return nil, fmt.Errorf("%w: intervalo de reabastecimento deve ser positivo", domain.ErrConfig)
	}

	every := refillInterval / time.Duration(capacity)
	return &RateBudget{
		limiter:  rate.NewLimiter(rate.Every(every), capacity),
		capacity: capacity,
		interval: refillInterval,
		grants:   make([]time.Time, capacity),
	}, nil
}

func (b *RateBudget) Capacity() int {
	return b.capacity
}

// reserve reserva cost tokens a partir de now e devolve a espera até a concessão.
// Se a espera passar de maxWait (quando positivo) nada é reservado.
func (b *RateBudget) reserve(now time.Time, cost int, maxWait time.Duration) (time.Duration, *rate.Reservation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	reservation := b.limiter.ReserveN(now, cost)
	if !reservation.OK() {
		return 0, nil, fmt.Errorf("%w: custo %d maior que a capacidade %d", domain.ErrConfig, cost, b.capacity)
	}

	grantAt := now.Add(reservation.DelayFrom(now))
	if ready := b.windowReadyAt(cost); ready.After(grantAt) {
		grantAt = ready
	}
	if b.lastGrantAt.After(grantAt) {
		grantAt = b.lastGrantAt
	}

	delay := grantAt.Sub(now)
	if maxWait > 0 && delay > maxWait {
		reservation.CancelAt(now)
		return delay, nil, fmt.Errorf("%w: espera de %s excede %s", domain.ErrRateLimitWouldBlock, delay, maxWait)
	}

	for i := 0; i < cost; i++ {
		b.grants[b.next] = grantAt
		b.next = (b.next + 1) % b.capacity
	}
	b.lastGrantAt = grantAt

	return delay, reservation, nil
}

// windowReadyAt é o primeiro instante em que cost tokens cabem na janela: o
// cost-ésimo registro mais antigo precisa ter saído dela.
func (b *RateBudget) windowReadyAt(cost int) time.Time {
	oldest := b.grants[(b.next+cost-1)%b.capacity]
	if oldest.IsZero() {
		return time.Time{}
	}
	return oldest.Add(b.interval)
}

func (b *RateBudget) recordAcquire(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalRequests++
	if at.After(b.lastAcquiredAt) {
		b.lastAcquiredAt = at
	}
}

// RecordRateLimited contabiliza uma resposta 429 recebida da API.
func (b *RateBudget) RecordRateLimited() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rateLimited++
}

func (b *RateBudget) Stats(now time.Time) BudgetStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BudgetStats{
		Capacity:             b.capacity,
		RefillInterval:       b.interval.String(),
		TokensAvailable:      b.limiter.TokensAt(now),
		TotalRequests:        b.totalRequests,
		RateLimitedResponses: b.rateLimited,
		LastAcquiredAt:       b.lastAcquiredAt,
	}
}
