package optimizer

import (
	"fmt"

	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// EvaluateCampaign implementa a máquina de estados enabled <-> paused.
// Campanhas arquivadas não são gerenciadas e o estado inicial é o da conta.
func (e *Engine) EvaluateCampaign(c domain.Campaign) domain.Decision {
	decision := domain.Decision{
		EntityID:   c.ID,
		EntityType: domain.EntityCampaign,
		EntityName: c.Name,
		OldValue:   string(c.State),
		Metrics:    c.Metrics,
	}

	if c.State != domain.CampaignStateEnabled && c.State != domain.CampaignStatePaused {
		decision.Flag = domain.FlagNotManaged
		decision.Reason = fmt.Sprintf("campanha %s não é gerenciada", c.State)
		return decision
	}

	if !hasSufficientData(c.Metrics, e.rules.MinClicks) {
		decision.Flag = domain.FlagInsufficientData
		decision.Reason = fmt.Sprintf("dados insuficientes: %d cliques (mínimo %d)", c.Metrics.Clicks, e.rules.MinClicks)
		return decision
	}

	acos, hasSales := c.Metrics.ACOS()
	if !hasSales && c.Metrics.Spend == 0 {
		decision.Flag = domain.FlagInsufficientData
		decision.Reason = "sem vendas e sem gasto na janela"
		return decision
	}

	// Sem vendas e com gasto o ACOS é tratado como acima de qualquer limite.
	high := !hasSales || acos > e.rules.ACOSHighThreshold

	acosText := "indefinido (sem vendas)"
	if hasSales {
		acosText = fmt.Sprintf("%.2f%%", percent(acos))
	}

	switch {
	case high && c.State == domain.CampaignStatePaused:
		decision.Flag = domain.FlagNoChange
		decision.Reason = fmt.Sprintf("ACOS %s acima de %.2f%%, campanha já pausada", acosText, percent(e.rules.ACOSHighThreshold))

	case high && !e.rules.AutoPauseCampaigns:
		decision.Flag = domain.FlagNoChange
		decision.Reason = fmt.Sprintf("ACOS %s acima de %.2f%%, pausa automática desabilitada", acosText, percent(e.rules.ACOSHighThreshold))

	case high:
		reason := fmt.Sprintf("ACOS %s acima de %.2f%%", acosText, percent(e.rules.ACOSHighThreshold))
		action := domain.NewStateAction(c, domain.CampaignStatePaused, reason, -100)
		decision.Flag = domain.FlagActionProposed
		decision.Reason = reason
		decision.Action = &action

	case c.State == domain.CampaignStatePaused && !e.rules.AutoActivateCampaigns:
		decision.Flag = domain.FlagNoChange
		decision.Reason = fmt.Sprintf("ACOS %s dentro do limite, ativação automática desabilitada", acosText)

	case c.State == domain.CampaignStatePaused:
		reason := fmt.Sprintf("ACOS %s dentro do limite de %.2f%%", acosText, percent(e.rules.ACOSHighThreshold))
		action := domain.NewStateAction(c, domain.CampaignStateEnabled, reason, 100)
		decision.Flag = domain.FlagActionProposed
		decision.Reason = reason
		decision.Action = &action

	default:
		decision.Flag = domain.FlagWithinTarget
		decision.Reason = fmt.Sprintf("dentro da faixa alvo: ACOS %s", acosText)
	}

	return decision
}
