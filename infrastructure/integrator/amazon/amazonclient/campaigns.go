package amazonclient

import (
	"context"
	"net/http"
	"net/url"

	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
)

const pathCampaigns = "/v2/sp/campaigns"

// ListCampaigns lista campanhas ativas e pausadas do perfil. Arquivadas ficam de fora.
func (c *AmazonClient) ListCampaigns(ctx context.Context, profileID string) ([]amazondomain.Campaign, error) {
	query := url.Values{}
	query.Set("stateFilter", "enabled,paused")

	return listPaged[amazondomain.Campaign](ctx, c, profileID, pathCampaigns, query)
}

func (c *AmazonClient) UpdateCampaignStates(ctx context.Context, profileID string, updates []amazondomain.CampaignStateUpdate) ([]amazondomain.MutationResult, error) {
	return mutateInChunks(ctx, c, profileID, http.MethodPut, pathCampaigns, updates)
}
