package amazonclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/infrastructure/cache"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

const (
	pathReports       = "/reporting/reports"
	contentTypeReport = "application/vnd.createasyncreportrequest.v3+json"
)

var duplicateReportID = regexp.MustCompile(`duplicate of\s*:?\s*([0-9a-fA-F-]{8,})`)

// FetchReport cria um relatório resumido, aguarda sua conclusão e devolve as linhas.
// As linhas já interpretadas ficam no cache sob uma chave lógica por tipo e janela.
func (c *AmazonClient) FetchReport(ctx context.Context, profileID string, reportType amazondomain.ReportType, startDate, endDate string) ([]amazondomain.ReportRow, error) {
	cacheKey := cache.Key(profileID, pathReports+"/"+string(reportType), url.Values{
		"startDate": {startDate},
		"endDate":   {endDate},
	})

	if raw, found := c.cache.Get(cacheKey); found {
		var rows []amazondomain.ReportRow
		if err := json.Unmarshal(raw, &rows); err == nil {
			c.observer.ObserveCache(true)
			return rows, nil
		}
	}
	c.observer.ObserveCache(false)

	reportID, err := c.createReport(ctx, profileID, amazondomain.NewReportRequest(reportType, startDate, endDate))
	if err != nil {
		return nil, err
	}

	location, err := c.waitReport(ctx, profileID, reportID)
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     location,
		endpoint: "report-download",
		absolute: true,
	})
	if err != nil {
		return nil, err
	}

	rows, err := ParseReport(raw)
	if err != nil {
		return nil, fmt.Errorf("relatório %s: %w", reportType, err)
	}

	logrus.WithFields(logrus.Fields{
		"profile_id":  profileID,
		"report_type": reportType,
		"rows":        len(rows),
	}).Info("amazon: relatório obtido")

	if encoded, err := json.Marshal(rows); err == nil {
		if err := c.cache.Set(cacheKey, encoded, c.cacheTTL); err != nil {
			logrus.WithError(err).Warn("amazon: falha ao gravar relatório no cache")
		}
	}

	return rows, nil
}

func (c *AmazonClient) createReport(ctx context.Context, profileID string, payload amazondomain.CreateReportRequest) (string, error) {
	body, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      pathReports,
		body:      payload,
		profileID: profileID,
		headers:   map[string]string{"Content-Type": contentTypeReport},
	})
	if err != nil {
		// Um pedido idêntico ainda em processamento é reaproveitado.
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && errors.Is(err, errDuplicateReport) {
			if match := duplicateReportID.FindStringSubmatch(apiErr.Body); match != nil {
				return match[1], nil
			}
		}
		return "", err
	}

	var status amazondomain.ReportStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("erro ao decodificar criação de relatório: %w", err)
	}
	if status.ReportID == "" {
		return "", fmt.Errorf("%w: criação de relatório sem reportId", domain.ErrTransientAPI)
	}

	return status.ReportID, nil
}

func (c *AmazonClient) waitReport(ctx context.Context, profileID, reportID string) (string, error) {
	deadline := c.now().Add(c.pollTimeout)

	for {
		body, err := c.do(ctx, request{
			method:    http.MethodGet,
			path:      pathReports + "/" + reportID,
			endpoint:  pathReports + "/{id}",
			profileID: profileID,
		})
		if err != nil {
			return "", err
		}

		var status amazondomain.ReportStatus
		if err := json.Unmarshal(body, &status); err != nil {
			return "", fmt.Errorf("erro ao decodificar status do relatório: %w", err)
		}

		switch status.Status {
		case amazondomain.ReportStatusCompleted:
			if status.URL == "" {
				return "", fmt.Errorf("%w: relatório %s concluído sem url", domain.ErrTransientAPI, reportID)
			}
			return status.URL, nil
		case amazondomain.ReportStatusFailed:
			return "", fmt.Errorf("%w: relatório %s falhou: %s", domain.ErrTransientAPI, reportID, status.FailureReason)
		}

		if !c.now().Add(c.pollInterval).Before(deadline) {
			return "", fmt.Errorf("%w: tempo esgotado aguardando relatório %s (status %s)", domain.ErrTransientAPI, reportID, status.Status)
		}

		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return "", err
		}
	}
}

// ParseReport aceita JSON ou CSV, comprimidos com gzip ou não.
func ParseReport(raw []byte) ([]amazondomain.ReportRow, error) {
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("erro ao abrir gzip: %w", err)
		}
		defer reader.Close()

		raw, err = io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("erro ao descomprimir relatório: %w", err)
		}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []amazondomain.ReportRow{}, nil
	}

	if trimmed[0] == '[' {
		rows := make([]amazondomain.ReportRow, 0)
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("erro ao decodificar relatório JSON: %w", err)
		}
		return rows, nil
	}

	return parseCSVReport(trimmed)
}

// Colunas do formato v2 são aceitas como sinônimos.
var csvColumnAliases = map[string]string{
	"keywordtext":              "keyword",
	"query":                    "searchterm",
	"spend":                    "cost",
	"attributedconversions14d": "purchases14d",
	"attributedsales14d":       "sales14d",
}

func parseCSVReport(raw []byte) ([]amazondomain.ReportRow, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler relatório CSV: %w", err)
	}
	if len(records) == 0 {
		return []amazondomain.ReportRow{}, nil
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(name))
		if alias, ok := csvColumnAliases[name]; ok {
			name = alias
		}
		header[i] = name
	}

	rows := make([]amazondomain.ReportRow, 0, len(records)-1)
	for line, record := range records[1:] {
		var row amazondomain.ReportRow
		for i, value := range record {
			if i >= len(header) {
				break
			}
			if err := setColumn(&row, header[i], strings.TrimSpace(value)); err != nil {
				return nil, fmt.Errorf("linha %d coluna %s: %w", line+2, header[i], err)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func setColumn(row *amazondomain.ReportRow, column, value string) error {
	var err error
	switch column {
	case "campaignid":
		row.CampaignID, err = parseInt(value)
	case "campaignname":
		row.CampaignName = value
	case "campaignstatus":
		row.CampaignStatus = value
	case "adgroupid":
		row.AdGroupID, err = parseInt(value)
	case "keywordid":
		row.KeywordID, err = parseInt(value)
	case "keyword":
		row.Keyword = value
	case "matchtype":
		row.MatchType = value
	case "searchterm":
		row.SearchTerm = value
	case "impressions":
		row.Impressions, err = parseInt(value)
	case "clicks":
		row.Clicks, err = parseInt(value)
	case "cost":
		row.Cost, err = parseFloat(value)
	case "purchases14d":
		row.Purchases14d, err = parseInt(value)
	case "sales14d":
		row.Sales14d, err = parseFloat(value)
	}
	return err
}

func parseInt(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}
