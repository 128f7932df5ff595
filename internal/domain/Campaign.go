package domain

import "github.com/shopspring/decimal"

type CampaignState string

const (
	CampaignStateEnabled  CampaignState = "enabled"
	CampaignStatePaused   CampaignState = "paused"
	CampaignStateArchived CampaignState = "archived"
)

// Campaign é uma campanha de Sponsored Products com as métricas da janela de lookback.
// O estado inicial é sempre o informado pela conta no momento da busca.
type Campaign struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	State       CampaignState   `json:"state"`
	DailyBudget decimal.Decimal `json:"daily_budget"`
	Metrics     MetricsSnapshot `json:"metrics"`
}

type AdGroup struct {
	ID         string          `json:"id"`
	CampaignID string          `json:"campaign_id"`
	Name       string          `json:"name"`
	State      CampaignState   `json:"state"`
	DefaultBid decimal.Decimal `json:"default_bid"`
}
