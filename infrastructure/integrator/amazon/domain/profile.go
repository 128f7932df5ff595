package amazondomain

import "strconv"

type Profile struct {
	ProfileID    int64       `json:"profileId"`
	CountryCode  string      `json:"countryCode"`
	CurrencyCode string      `json:"currencyCode"`
	Timezone     string      `json:"timezone"`
	DailyBudget  float64     `json:"dailyBudget,omitempty"`
	AccountInfo  AccountInfo `json:"accountInfo"`
}

type AccountInfo struct {
	MarketplaceStringID string `json:"marketplaceStringId"`
	ID                  string `json:"id"`
	Type                string `json:"type"`
	Name                string `json:"name"`
}

func (p Profile) ID() string {
	return strconv.FormatInt(p.ProfileID, 10)
}
