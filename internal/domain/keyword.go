package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type MatchType string

const (
	MatchTypeExact          MatchType = "exact"
	MatchTypePhrase         MatchType = "phrase"
	MatchTypeBroad          MatchType = "broad"
	MatchTypeNegativeExact  MatchType = "negativeExact"
	MatchTypeNegativePhrase MatchType = "negativePhrase"
)

// IsPositive informa se o tipo de correspondência é de palavra-chave positiva.
func (m MatchType) IsPositive() bool {
	return m == MatchTypeExact || m == MatchTypePhrase || m == MatchTypeBroad
}

// Keyword é uma palavra-chave com lance atual (duas casas decimais) e métricas da janela.
type Keyword struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaign_id"`
	AdGroupID  string          `json:"ad_group_id"`
	Text       string          `json:"text"`
	MatchType  MatchType       `json:"match_type"`
	Bid        decimal.Decimal `json:"bid"`
	State      CampaignState   `json:"state"`
	Metrics    MetricsSnapshot `json:"metrics"`

	// PriorMetrics é a janela anterior, quando disponível, usada para detectar queda de CTR.
	PriorMetrics *MetricsSnapshot `json:"prior_metrics,omitempty"`
}

type NegativeKeyword struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	AdGroupID  string    `json:"ad_group_id"`
	Text       string    `json:"text"`
	MatchType  MatchType `json:"match_type"`
}

// SearchTerm é um termo de busca real do comprador que casou com uma palavra-chave.
type SearchTerm struct {
	Term       string          `json:"term"`
	CampaignID string          `json:"campaign_id"`
	AdGroupID  string          `json:"ad_group_id"`
	KeywordID  string          `json:"keyword_id"`
	Metrics    MetricsSnapshot `json:"metrics"`
}

type KeywordSuggestion struct {
	AdGroupID    string          `json:"ad_group_id"`
	Text         string          `json:"text"`
	MatchType    MatchType       `json:"match_type"`
	SuggestedBid decimal.Decimal `json:"suggested_bid"`
}

// NormalizeKeywordText normaliza o texto para comparação de duplicidade.
func NormalizeKeywordText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
