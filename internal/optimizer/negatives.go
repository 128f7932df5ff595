package optimizer

import (
	"fmt"

	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// ProposeNegatives bloqueia termos de busca que acumularam cliques acima do piso sem
// nenhuma conversão. Termos que já são negativos ou palavras-chave do grupo ficam de fora.
func (e *Engine) ProposeNegatives(snapshot *domain.AccountSnapshot) []domain.Decision {
	decisions := make([]domain.Decision, 0)

	negativesByAdGroup := snapshot.NegativesByAdGroup()
	positives := make(map[string]bool)
	for _, kw := range snapshot.Keywords {
		positives[kw.AdGroupID+"|"+domain.NormalizeKeywordText(kw.Text)] = true
	}
	proposed := make(map[string]bool)

	for _, term := range snapshot.SearchTerms {
		text := domain.NormalizeKeywordText(term.Term)
		decision := domain.Decision{
			EntityID:   term.AdGroupID + ":" + text,
			EntityType: domain.EntitySearchTerm,
			EntityName: text,
			Metrics:    term.Metrics,
		}

		switch {
		case term.Metrics.Clicks < e.rules.NegativeClickFloor:
			decision.Flag = domain.FlagInsufficientData
			decision.Reason = fmt.Sprintf("%d cliques abaixo do piso de %d", term.Metrics.Clicks, e.rules.NegativeClickFloor)

		case term.Metrics.Conversions > 0:
			decision.Flag = domain.FlagWithinTarget
			decision.Reason = fmt.Sprintf("termo converte: %d conversões", term.Metrics.Conversions)

		case negativesByAdGroup[term.AdGroupID][text]:
			decision.Flag = domain.FlagNoChange
			decision.Reason = "termo já é negativo no grupo"

		case positives[term.AdGroupID+"|"+text]:
			decision.Flag = domain.FlagNoChange
			decision.Reason = "termo é palavra-chave do grupo"

		case proposed[term.AdGroupID+"|"+text]:
			decision.Flag = domain.FlagNoChange
			decision.Reason = "termo já proposto nesta execução"

		default:
			proposed[term.AdGroupID+"|"+text] = true
			reason := fmt.Sprintf("%d cliques e gasto de %.2f sem conversão", term.Metrics.Clicks, term.Metrics.Spend)
			action := domain.NewAddNegativeKeywordAction(domain.SearchTerm{
				Term:       text,
				CampaignID: term.CampaignID,
				AdGroupID:  term.AdGroupID,
				KeywordID:  term.KeywordID,
				Metrics:    term.Metrics,
			}, reason, -100)
			decision.Flag = domain.FlagActionProposed
			decision.Reason = reason
			decision.Action = &action
		}

		decisions = append(decisions, decision)
	}

	return decisions
}
