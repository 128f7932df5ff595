package amazondomain

type ReportType string

const (
	ReportCampaigns   ReportType = "spCampaigns"
	ReportTargeting   ReportType = "spTargeting"
	ReportSearchTerms ReportType = "spSearchTerm"
)

const (
	ReportStatusPending    = "PENDING"
	ReportStatusProcessing = "PROCESSING"
	ReportStatusCompleted  = "COMPLETED"
	ReportStatusFailed     = "FAILED"
)

var metricColumns = []string{"impressions", "clicks", "cost", "purchases14d", "sales14d"}

var reportLayouts = map[ReportType]struct {
	groupBy []string
	columns []string
}{
	ReportCampaigns: {
		groupBy: []string{"campaign"},
		columns: []string{"campaignId", "campaignName", "campaignStatus"},
	},
	ReportTargeting: {
		groupBy: []string{"targeting"},
		columns: []string{"campaignId", "adGroupId", "keywordId", "keyword", "matchType"},
	},
	ReportSearchTerms: {
		groupBy: []string{"searchTerm"},
		columns: []string{"campaignId", "adGroupId", "keywordId", "searchTerm"},
	},
}

type CreateReportRequest struct {
	Name          string              `json:"name"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Configuration ReportConfiguration `json:"configuration"`
}

type ReportConfiguration struct {
	AdProduct    string     `json:"adProduct"`
	GroupBy      []string   `json:"groupBy"`
	Columns      []string   `json:"columns"`
	ReportTypeID ReportType `json:"reportTypeId"`
	TimeUnit     string     `json:"timeUnit"`
	Format       string     `json:"format"`
}

// NewReportRequest monta o pedido de relatório resumido para [start, end] (YYYY-MM-DD).
func NewReportRequest(reportType ReportType, start, end string) CreateReportRequest {
	layout := reportLayouts[reportType]
	columns := append(append([]string{}, layout.columns...), metricColumns...)

	return CreateReportRequest{
		Name:      string(reportType) + " " + start + " " + end,
		StartDate: start,
		EndDate:   end,
		Configuration: ReportConfiguration{
			AdProduct:    "SPONSORED_PRODUCTS",
			GroupBy:      layout.groupBy,
			Columns:      columns,
			ReportTypeID: reportType,
			TimeUnit:     "SUMMARY",
			Format:       "GZIP_JSON",
		},
	}
}

type ReportStatus struct {
	ReportID      string `json:"reportId"`
	Status        string `json:"status"`
	URL           string `json:"url,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// ReportRow reúne todas as colunas possíveis dos três relatórios usados.
type ReportRow struct {
	CampaignID     int64   `json:"campaignId"`
	CampaignName   string  `json:"campaignName,omitempty"`
	CampaignStatus string  `json:"campaignStatus,omitempty"`
	AdGroupID      int64   `json:"adGroupId,omitempty"`
	KeywordID      int64   `json:"keywordId,omitempty"`
	Keyword        string  `json:"keyword,omitempty"`
	MatchType      string  `json:"matchType,omitempty"`
	SearchTerm     string  `json:"searchTerm,omitempty"`
	Impressions    int64   `json:"impressions"`
	Clicks         int64   `json:"clicks"`
	Cost           float64 `json:"cost"`
	Purchases14d   int64   `json:"purchases14d"`
	Sales14d       float64 `json:"sales14d"`
}
