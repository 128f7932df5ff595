package amazon

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(field, id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.NewValidationError(field, "id inválido %q", id)
	}
	return v, nil
}

func toBid(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}

// FactoryMetrics converte uma linha de relatório em MetricsSnapshot. Linhas com
// valores negativos são descartadas com aviso e viram métricas zeradas.
func FactoryMetrics(row amazondomain.ReportRow, start, end time.Time) domain.MetricsSnapshot {
	metrics, err := domain.NewMetricsSnapshot(row.Impressions, row.Clicks, row.Purchases14d, row.Cost, row.Sales14d, start, end)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": row.CampaignID,
			"keyword_id":  row.KeywordID,
		}).Warn("amazon: linha de relatório inválida, métricas ignoradas")
		return domain.MetricsSnapshot{WindowStart: start, WindowEnd: end}
	}
	return metrics
}

// aggregateRows soma as linhas por chave. Relatórios SUMMARY costumam trazer uma
// linha por entidade, mas o formato CSV antigo pode repetir.
func aggregateRows(rows []amazondomain.ReportRow, key func(amazondomain.ReportRow) int64, start, end time.Time) map[int64]domain.MetricsSnapshot {
	out := make(map[int64]domain.MetricsSnapshot)
	for _, row := range rows {
		id := key(row)
		if id == 0 {
			continue
		}
		metrics := FactoryMetrics(row, start, end)
		if current, ok := out[id]; ok {
			metrics = current.Add(metrics)
		}
		out[id] = metrics
	}
	return out
}

func FactoryCampaign(c amazondomain.Campaign, metrics map[int64]domain.MetricsSnapshot, start, end time.Time) domain.Campaign {
	m, ok := metrics[c.CampaignID]
	if !ok {
		m = domain.MetricsSnapshot{WindowStart: start, WindowEnd: end}
	}

	return domain.Campaign{
		ID:          formatID(c.CampaignID),
		Name:        c.Name,
		State:       domain.CampaignState(strings.ToLower(c.State)),
		DailyBudget: toBid(c.DailyBudget),
		Metrics:     m,
	}
}

func FactoryAdGroup(ag amazondomain.AdGroup) domain.AdGroup {
	return domain.AdGroup{
		ID:         formatID(ag.AdGroupID),
		CampaignID: formatID(ag.CampaignID),
		Name:       ag.Name,
		State:      domain.CampaignState(strings.ToLower(ag.State)),
		DefaultBid: toBid(ag.DefaultBid),
	}
}

// FactoryKeyword usa o lance padrão do grupo quando a palavra-chave não tem lance próprio.
func FactoryKeyword(kw amazondomain.Keyword, defaultBids map[int64]float64, metrics, prior map[int64]domain.MetricsSnapshot, start, end time.Time) domain.Keyword {
	bid := kw.Bid
	if bid <= 0 {
		bid = defaultBids[kw.AdGroupID]
	}

	m, ok := metrics[kw.KeywordID]
	if !ok {
		m = domain.MetricsSnapshot{WindowStart: start, WindowEnd: end}
	}

	out := domain.Keyword{
		ID:         formatID(kw.KeywordID),
		CampaignID: formatID(kw.CampaignID),
		AdGroupID:  formatID(kw.AdGroupID),
		Text:       kw.KeywordText,
		MatchType:  domain.MatchType(strings.ToLower(kw.MatchType)),
		Bid:        toBid(bid),
		State:      domain.CampaignState(strings.ToLower(kw.State)),
		Metrics:    m,
	}

	if prior != nil {
		if p, ok := prior[kw.KeywordID]; ok {
			out.PriorMetrics = &p
		}
	}

	return out
}

func FactoryNegativeKeyword(kw amazondomain.Keyword) domain.NegativeKeyword {
	return domain.NegativeKeyword{
		ID:         formatID(kw.KeywordID),
		CampaignID: formatID(kw.CampaignID),
		AdGroupID:  formatID(kw.AdGroupID),
		Text:       kw.KeywordText,
		MatchType:  domain.MatchType(kw.MatchType),
	}
}

// FactorySearchTerms agrega as linhas do relatório de termos por (grupo, termo normalizado).
func FactorySearchTerms(rows []amazondomain.ReportRow, start, end time.Time) []domain.SearchTerm {
	index := make(map[string]int)
	out := make([]domain.SearchTerm, 0)

	for _, row := range rows {
		if strings.TrimSpace(row.SearchTerm) == "" || row.AdGroupID == 0 {
			continue
		}

		key := formatID(row.AdGroupID) + "|" + domain.NormalizeKeywordText(row.SearchTerm)
		metrics := FactoryMetrics(row, start, end)

		if i, ok := index[key]; ok {
			out[i].Metrics = out[i].Metrics.Add(metrics)
			continue
		}

		index[key] = len(out)
		out = append(out, domain.SearchTerm{
			Term:       domain.NormalizeKeywordText(row.SearchTerm),
			CampaignID: formatID(row.CampaignID),
			AdGroupID:  formatID(row.AdGroupID),
			KeywordID:  formatID(row.KeywordID),
			Metrics:    metrics,
		})
	}

	return out
}

func FactorySuggestions(adGroupID string, suggestions []amazondomain.SuggestedKeyword) []domain.KeywordSuggestion {
	out := make([]domain.KeywordSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if strings.TrimSpace(s.KeywordText) == "" {
			continue
		}
		out = append(out, domain.KeywordSuggestion{
			AdGroupID:    adGroupID,
			Text:         s.KeywordText,
			MatchType:    domain.MatchType(strings.ToLower(s.MatchType)),
			SuggestedBid: toBid(s.SuggestedBid),
		})
	}
	return out
}
