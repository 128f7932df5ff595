package amazonclient

import (
	"context"
	"net/http"
	"net/url"

	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
)

const (
	pathKeywords         = "/v2/sp/keywords"
	pathNegativeKeywords = "/v2/sp/negativeKeywords"
)

func (c *AmazonClient) ListKeywords(ctx context.Context, profileID string) ([]amazondomain.Keyword, error) {
	query := url.Values{}
	query.Set("stateFilter", "enabled,paused")

	return listPaged[amazondomain.Keyword](ctx, c, profileID, pathKeywords, query)
}

func (c *AmazonClient) ListNegativeKeywords(ctx context.Context, profileID string) ([]amazondomain.Keyword, error) {
	query := url.Values{}
	query.Set("stateFilter", "enabled")

	return listPaged[amazondomain.Keyword](ctx, c, profileID, pathNegativeKeywords, query)
}

func (c *AmazonClient) UpdateKeywordBids(ctx context.Context, profileID string, updates []amazondomain.KeywordBidUpdate) ([]amazondomain.MutationResult, error) {
	return mutateInChunks(ctx, c, profileID, http.MethodPut, pathKeywords, updates)
}

func (c *AmazonClient) CreateKeywords(ctx context.Context, profileID string, keywords []amazondomain.KeywordCreate) ([]amazondomain.MutationResult, error) {
	return mutateInChunks(ctx, c, profileID, http.MethodPost, pathKeywords, keywords)
}

func (c *AmazonClient) CreateNegativeKeywords(ctx context.Context, profileID string, keywords []amazondomain.KeywordCreate) ([]amazondomain.MutationResult, error) {
	return mutateInChunks(ctx, c, profileID, http.MethodPost, pathNegativeKeywords, keywords)
}
