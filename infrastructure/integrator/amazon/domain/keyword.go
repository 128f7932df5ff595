package amazondomain

type Keyword struct {
	KeywordID   int64   `json:"keywordId"`
	CampaignID  int64   `json:"campaignId"`
	AdGroupID   int64   `json:"adGroupId"`
	State       string  `json:"state"`
	KeywordText string  `json:"keywordText"`
	MatchType   string  `json:"matchType"`
	Bid         float64 `json:"bid,omitempty"`
}

type KeywordBidUpdate struct {
	KeywordID int64   `json:"keywordId"`
	Bid       float64 `json:"bid"`
}

// KeywordCreate serve tanto para palavras-chave quanto para negativas.
type KeywordCreate struct {
	CampaignID  int64   `json:"campaignId"`
	AdGroupID   int64   `json:"adGroupId"`
	KeywordText string  `json:"keywordText"`
	MatchType   string  `json:"matchType"`
	State       string  `json:"state"`
	Bid         float64 `json:"bid,omitempty"`
}

type SuggestedKeywordsResponse struct {
	AdGroupID         int64              `json:"adGroupId"`
	SuggestedKeywords []SuggestedKeyword `json:"suggestedKeywords"`
}

type SuggestedKeyword struct {
	KeywordText  string  `json:"keywordText"`
	MatchType    string  `json:"matchType"`
	SuggestedBid float64 `json:"suggestedBid,omitempty"`
}
