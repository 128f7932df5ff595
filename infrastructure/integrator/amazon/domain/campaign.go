package amazondomain

// Estados aceitos pela API v2.
const (
	StateEnabled  = "enabled"
	StatePaused   = "paused"
	StateArchived = "archived"
)

type Campaign struct {
	CampaignID           int64   `json:"campaignId"`
	Name                 string  `json:"name"`
	CampaignType         string  `json:"campaignType,omitempty"`
	TargetingType        string  `json:"targetingType,omitempty"`
	State                string  `json:"state"`
	DailyBudget          float64 `json:"dailyBudget"`
	StartDate            string  `json:"startDate,omitempty"`
	PremiumBidAdjustment bool    `json:"premiumBidAdjustment,omitempty"`
}

type AdGroup struct {
	AdGroupID  int64   `json:"adGroupId"`
	Name       string  `json:"name"`
	CampaignID int64   `json:"campaignId"`
	DefaultBid float64 `json:"defaultBid"`
	State      string  `json:"state"`
}

type CampaignStateUpdate struct {
	CampaignID int64  `json:"campaignId"`
	State      string `json:"state"`
}
