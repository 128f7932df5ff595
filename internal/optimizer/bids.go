package optimizer

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// ctrDegrading indica CTR abaixo do mínimo ou abaixo da janela anterior, quando conhecida.
func (e *Engine) ctrDegrading(kw domain.Keyword) bool {
	ctr := kw.Metrics.CTR()
	if ctr < e.rules.MinCTR {
		return true
	}
	if kw.PriorMetrics != nil && kw.PriorMetrics.Impressions > 0 {
		return ctr < kw.PriorMetrics.CTR()
	}
	return false
}

// EvaluateKeyword aplica as regras de lance. O delta percentual é multiplicado pelo
// fator de dayparting antes do arredondamento e do clamp em [minBid, maxBid].
func (e *Engine) EvaluateKeyword(kw domain.Keyword, multiplier decimal.Decimal, peak bool) domain.Decision {
	decision := domain.Decision{
		EntityID:   kw.ID,
		EntityType: domain.EntityKeyword,
		EntityName: kw.Text,
		OldValue:   kw.Bid.StringFixed(2),
		Metrics:    kw.Metrics,
	}

	if kw.State != domain.CampaignStateEnabled {
		decision.Flag = domain.FlagNotManaged
		decision.Reason = fmt.Sprintf("palavra-chave %s não é gerenciada", kw.State)
		return decision
	}

	if !hasSufficientData(kw.Metrics, e.rules.MinClicks) {
		decision.Flag = domain.FlagInsufficientData
		decision.Reason = fmt.Sprintf("dados insuficientes: %d cliques (mínimo %d)", kw.Metrics.Clicks, e.rules.MinClicks)
		return decision
	}

	acos, hasSales := kw.Metrics.ACOS()

	var (
		pct    decimal.Decimal
		up     bool
		reason string
	)

	switch {
	case !hasSales && kw.Metrics.Spend > 0:
		pct = e.downPct
		reason = fmt.Sprintf("sem vendas com gasto de %.2f em %d cliques", kw.Metrics.Spend, kw.Metrics.Clicks)
	case !hasSales:
		decision.Flag = domain.FlagInsufficientData
		decision.Reason = "sem vendas e sem gasto na janela"
		return decision
	case acos > e.rules.ACOSHighThreshold:
		pct = e.downPct
		reason = fmt.Sprintf("ACOS %.2f%% acima de %.2f%%", percent(acos), percent(e.rules.ACOSHighThreshold))
	case acos < e.rules.ACOSLowThreshold && !e.ctrDegrading(kw):
		pct = e.upPct
		up = true
		reason = fmt.Sprintf("ACOS %.2f%% abaixo de %.2f%% com CTR %.2f%% estável", percent(acos), percent(e.rules.ACOSLowThreshold), percent(kw.Metrics.CTR()))
	case acos < e.rules.ACOSLowThreshold:
		decision.Flag = domain.FlagNoChange
		decision.Reason = fmt.Sprintf("ACOS %.2f%% abaixo da meta, mas CTR %.2f%% em queda", percent(acos), percent(kw.Metrics.CTR()))
		return decision
	default:
		decision.Flag = domain.FlagWithinTarget
		decision.Reason = fmt.Sprintf("dentro da faixa alvo: ACOS %.2f%% entre %.2f%% e %.2f%%",
			percent(acos), percent(e.rules.ACOSLowThreshold), percent(e.rules.ACOSHighThreshold))
		return decision
	}

	delta := kw.Bid.Mul(pct).Mul(multiplier)
	proposed := kw.Bid.Sub(delta)
	if up {
		proposed = kw.Bid.Add(delta)
	}
	newBid := domain.ClampBid(proposed, e.minBid, e.maxBid)

	if e.dayparting.Enabled() {
		window := "fora do pico"
		if peak {
			window = "pico"
		}
		reason += fmt.Sprintf("; dayparting %s x%s", window, multiplier.String())
	}

	// O clamp pode inverter a direção quando o lance atual já está fora da faixa.
	if up && newBid.LessThan(kw.Bid) {
		reason += fmt.Sprintf("; lance atual %s acima do máximo %s, reduzido ao limite", kw.Bid.StringFixed(2), e.maxBid.StringFixed(2))
	}
	if !up && newBid.GreaterThan(kw.Bid) {
		reason += fmt.Sprintf("; lance atual %s abaixo do mínimo %s, elevado ao limite", kw.Bid.StringFixed(2), e.minBid.StringFixed(2))
	}

	if newBid.Equal(kw.Bid) {
		decision.Flag = domain.FlagNoChange
		decision.Reason = reason + fmt.Sprintf("; lance %s já no limite", kw.Bid.StringFixed(2))
		return decision
	}

	action := domain.NewBidAction(kw, newBid, reason)
	decision.Flag = domain.FlagActionProposed
	decision.Reason = reason
	decision.Action = &action
	return decision
}
