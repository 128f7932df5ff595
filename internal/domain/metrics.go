package domain

import (
	"time"

	"github.com/vfg2006/ppc-optimizer/pkg/utils"
)

// MetricsSnapshot agrega o desempenho de uma entidade em uma janela de lookback.
// É um valor imutável: operações retornam novas cópias.
type MetricsSnapshot struct {
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Spend       float64   `json:"spend"`
	Sales       float64   `json:"sales"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// NewMetricsSnapshot valida as invariantes (gasto e vendas não negativos).
func NewMetricsSnapshot(impressions, clicks, conversions int64, spend, sales float64, start, end time.Time) (MetricsSnapshot, error) {
	if spend < 0 {
		return MetricsSnapshot{}, NewValidationError("spend", "gasto negativo: %.2f", spend)
	}
	if sales < 0 {
		return MetricsSnapshot{}, NewValidationError("sales", "vendas negativas: %.2f", sales)
	}
	if impressions < 0 || clicks < 0 || conversions < 0 {
		return MetricsSnapshot{}, NewValidationError("counters", "contadores negativos")
	}

	return MetricsSnapshot{
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
		Spend:       spend,
		Sales:       sales,
		WindowStart: start,
		WindowEnd:   end,
	}, nil
}

// HasSales informa se houve vendas atribuídas na janela.
func (m MetricsSnapshot) HasSales() bool {
	return m.Sales > 0
}

// ACOS retorna gasto/vendas. ok é falso quando não houve vendas (ACOS indefinido).
func (m MetricsSnapshot) ACOS() (acos float64, ok bool) {
	if !m.HasSales() {
		return 0, false
	}
	return m.Spend / m.Sales, true
}

// CTR retorna cliques/impressões, ou zero sem impressões.
func (m MetricsSnapshot) CTR() float64 {
	if m.Impressions == 0 {
		return 0
	}
	return float64(m.Clicks) / float64(m.Impressions)
}

// Add soma duas janelas; os limites resultantes cobrem ambas.
func (m MetricsSnapshot) Add(o MetricsSnapshot) MetricsSnapshot {
	out := MetricsSnapshot{
		Impressions: m.Impressions + o.Impressions,
		Clicks:      m.Clicks + o.Clicks,
		Conversions: m.Conversions + o.Conversions,
		Spend:       utils.RoundWithTwoDecimalPlace(m.Spend + o.Spend),
		Sales:       utils.RoundWithTwoDecimalPlace(m.Sales + o.Sales),
		WindowStart: m.WindowStart,
		WindowEnd:   m.WindowEnd,
	}

	if out.WindowStart.IsZero() || (!o.WindowStart.IsZero() && o.WindowStart.Before(out.WindowStart)) {
		out.WindowStart = o.WindowStart
	}
	if o.WindowEnd.After(out.WindowEnd) {
		out.WindowEnd = o.WindowEnd
	}

	return out
}
