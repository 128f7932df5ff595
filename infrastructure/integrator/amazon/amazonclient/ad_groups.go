package amazonclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
)

const pathAdGroups = "/v2/sp/adGroups"

func (c *AmazonClient) ListAdGroups(ctx context.Context, profileID string) ([]amazondomain.AdGroup, error) {
	query := url.Values{}
	query.Set("stateFilter", "enabled,paused")

	return listPaged[amazondomain.AdGroup](ctx, c, profileID, pathAdGroups, query)
}

// GetKeywordSuggestions busca sugestões de palavras-chave para um grupo de anúncios.
func (c *AmazonClient) GetKeywordSuggestions(ctx context.Context, profileID, adGroupID string, max int) ([]amazondomain.SuggestedKeyword, error) {
	query := url.Values{}
	query.Set("maxNumSuggestions", strconv.Itoa(max))

	body, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      fmt.Sprintf("%s/%s/suggested/keywords", pathAdGroups, adGroupID),
		endpoint:  pathAdGroups + "/{id}/suggested/keywords",
		query:     query,
		profileID: profileID,
		cacheable: true,
	})
	if err != nil {
		return nil, err
	}

	var response amazondomain.SuggestedKeywordsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).WithField("ad_group_id", adGroupID).Error("amazon: erro ao decodificar sugestões")
		return nil, fmt.Errorf("erro ao decodificar sugestões: %w", err)
	}

	return response.SuggestedKeywords, nil
}
