package optimizer

import (
	"fmt"

	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// DiscoverKeywords propõe até MaxKeywordsPerAdGroup sugestões novas por grupo,
// sem repetir textos já existentes (positivos ou negativos) no grupo.
func (e *Engine) DiscoverKeywords(snapshot *domain.AccountSnapshot) []domain.Decision {
	decisions := make([]domain.Decision, 0)

	keywordsByAdGroup := snapshot.KeywordsByAdGroup()
	negativesByAdGroup := snapshot.NegativesByAdGroup()
	matchType := domain.MatchType(e.rules.NewKeywordMatchType)

	for _, ag := range snapshot.AdGroups {
		existing := keywordsByAdGroup[ag.ID]

		base := domain.Decision{
			EntityID:   ag.ID,
			EntityType: domain.EntityAdGroup,
			EntityName: ag.Name,
			OldValue:   fmt.Sprintf("%d palavras-chave", len(existing)),
		}

		if ag.State != domain.CampaignStateEnabled {
			base.Flag = domain.FlagNotManaged
			base.Reason = fmt.Sprintf("grupo %s não recebe novas palavras-chave", ag.State)
			decisions = append(decisions, base)
			continue
		}

		if len(existing) >= e.rules.MaxKeywordsPerAdGroupTotal {
			base.Flag = domain.FlagNoChange
			base.Reason = fmt.Sprintf("grupo já possui %d palavras-chave (limite %d)", len(existing), e.rules.MaxKeywordsPerAdGroupTotal)
			decisions = append(decisions, base)
			continue
		}

		limit := min(e.rules.MaxKeywordsPerAdGroup, e.rules.MaxKeywordsPerAdGroupTotal-len(existing))

		seen := make(map[string]bool, len(existing))
		for _, kw := range existing {
			seen[domain.NormalizeKeywordText(kw.Text)] = true
		}
		for text := range negativesByAdGroup[ag.ID] {
			seen[text] = true
		}

		added := 0
		for _, s := range snapshot.Suggestions[ag.ID] {
			if added >= limit {
				break
			}

			text := domain.NormalizeKeywordText(s.Text)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true

			bid := e.newKeywordBid
			source := "lance padrão"
			if s.SuggestedBid.IsPositive() {
				bid = s.SuggestedBid
				source = "lance sugerido"
			}
			bid = domain.ClampBid(bid, e.minBid, e.maxBid)

			reason := fmt.Sprintf("sugestão da API para o grupo (%d/%d), %s %s", added+1, limit, source, bid.StringFixed(2))
			action := domain.NewAddKeywordAction(ag, text, matchType, bid, reason)

			decision := base
			decision.Flag = domain.FlagActionProposed
			decision.Reason = reason
			decision.Action = &action
			decisions = append(decisions, decision)
			added++
		}

		if added == 0 {
			base.Flag = domain.FlagNoChange
			base.Reason = "nenhuma sugestão nova para o grupo"
			decisions = append(decisions, base)
		}
	}

	return decisions
}
