package amazon

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/mocks"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newIntegrator(t *testing.T) (*AmazonIntegrator, *mocks.MockClient) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	cfg := &config.Config{OptimizerSync: config.OptimizerSync{MaxConcurrentJobs: 2}}
	return New(cfg, client), client
}

func expectProfile(client *mocks.MockClient) {
	client.EXPECT().GetProfiles(gomock.Any()).Return([]amazondomain.Profile{
		{ProfileID: 999, CountryCode: "BR", CurrencyCode: "BRL", Timezone: "America/Sao_Paulo"},
		{ProfileID: 123, CountryCode: "US", CurrencyCode: "USD", Timezone: "America/Los_Angeles"},
	}, nil)
}

func TestFetchSnapshot_TodasAsFeatures(t *testing.T) {
	s, client := newIntegrator(t)
	ctx := context.Background()
	rules := config.DefaultRules()
	rules.ComparePriorWindow = true
	features, err := domain.ParseFeatures(nil)
	require.NoError(t, err)

	expectProfile(client)
	client.EXPECT().ListCampaigns(ctx, "123").Return([]amazondomain.Campaign{
		{CampaignID: 1, Name: "Tênis", State: "enabled", DailyBudget: 50},
		{CampaignID: 2, Name: "Meias", State: "paused", DailyBudget: 10},
	}, nil)
	client.EXPECT().ListAdGroups(ctx, "123").Return([]amazondomain.AdGroup{
		{AdGroupID: 10, CampaignID: 1, Name: "corrida", State: "enabled", DefaultBid: 0.75},
		{AdGroupID: 20, CampaignID: 2, Name: "algodão", State: "paused", DefaultBid: 0.40},
	}, nil)
	client.EXPECT().ListKeywords(ctx, "123").Return([]amazondomain.Keyword{
		{KeywordID: 100, CampaignID: 1, AdGroupID: 10, KeywordText: "tenis corrida", MatchType: "exact", State: "enabled", Bid: 0.85},
		{KeywordID: 101, CampaignID: 1, AdGroupID: 10, KeywordText: "tenis", MatchType: "broad", State: "enabled"},
	}, nil)
	client.EXPECT().ListNegativeKeywords(ctx, "123").Return([]amazondomain.Keyword{
		{KeywordID: 500, CampaignID: 1, AdGroupID: 10, KeywordText: "gratis", MatchType: "negativeExact", State: "enabled"},
	}, nil)

	client.EXPECT().FetchReport(ctx, "123", amazondomain.ReportCampaigns, "2025-02-24", "2025-03-09").Return([]amazondomain.ReportRow{
		{CampaignID: 1, Impressions: 10000, Clicks: 200, Cost: 52, Purchases14d: 4, Sales14d: 100},
	}, nil)
	client.EXPECT().FetchReport(ctx, "123", amazondomain.ReportTargeting, "2025-02-24", "2025-03-09").Return([]amazondomain.ReportRow{
		{CampaignID: 1, AdGroupID: 10, KeywordID: 100, Impressions: 1000, Clicks: 20, Cost: 5.6, Purchases14d: 2, Sales14d: 20},
	}, nil)
	client.EXPECT().FetchReport(ctx, "123", amazondomain.ReportTargeting, "2025-02-10", "2025-02-23").Return([]amazondomain.ReportRow{
		{CampaignID: 1, AdGroupID: 10, KeywordID: 100, Impressions: 1000, Clicks: 30},
	}, nil)
	client.EXPECT().FetchReport(ctx, "123", amazondomain.ReportSearchTerms, "2025-02-24", "2025-03-09").Return([]amazondomain.ReportRow{
		{CampaignID: 1, AdGroupID: 10, KeywordID: 101, SearchTerm: "Tenis  Barato", Clicks: 8, Cost: 4},
		{CampaignID: 1, AdGroupID: 10, KeywordID: 100, SearchTerm: "tenis barato", Clicks: 4, Cost: 2},
		{CampaignID: 1, AdGroupID: 10, KeywordID: 100},
	}, nil)

	// Apenas o grupo habilitado recebe sugestões.
	client.EXPECT().GetKeywordSuggestions(gomock.Any(), "123", "10", rules.MaxSuggestions).Return([]amazondomain.SuggestedKeyword{
		{KeywordText: "tenis corrida masculino", MatchType: "EXACT", SuggestedBid: 0.9},
		{KeywordText: " "},
	}, nil)

	snapshot, err := s.FetchSnapshot(ctx, "123", rules, features, testNow)
	require.NoError(t, err)

	assert.Equal(t, "America/Los_Angeles", snapshot.Timezone)
	assert.Equal(t, "USD", snapshot.CurrencyCode)
	assert.Equal(t, "2025-02-24", snapshot.WindowStart.Format(time.DateOnly))
	assert.Equal(t, "2025-03-09", snapshot.WindowEnd.Format(time.DateOnly))

	require.Len(t, snapshot.Campaigns, 2)
	assert.Equal(t, domain.CampaignStateEnabled, snapshot.Campaigns[0].State)
	assert.Equal(t, int64(200), snapshot.Campaigns[0].Metrics.Clicks)
	acos, ok := snapshot.Campaigns[0].Metrics.ACOS()
	assert.True(t, ok)
	assert.InDelta(t, 0.52, acos, 1e-9)
	assert.Equal(t, int64(0), snapshot.Campaigns[1].Metrics.Clicks)

	require.Len(t, snapshot.Keywords, 2)
	assert.True(t, decimal.RequireFromString("0.85").Equal(snapshot.Keywords[0].Bid))
	assert.Equal(t, int64(20), snapshot.Keywords[0].Metrics.Clicks)
	require.NotNil(t, snapshot.Keywords[0].PriorMetrics)
	assert.Equal(t, int64(30), snapshot.Keywords[0].PriorMetrics.Clicks)
	// Sem lance próprio, herda o lance padrão do grupo.
	assert.True(t, decimal.RequireFromString("0.75").Equal(snapshot.Keywords[1].Bid))
	assert.Nil(t, snapshot.Keywords[1].PriorMetrics)

	require.Len(t, snapshot.NegativeKeywords, 1)
	assert.Equal(t, "gratis", snapshot.NegativeKeywords[0].Text)

	require.Len(t, snapshot.SearchTerms, 1)
	assert.Equal(t, "tenis barato", snapshot.SearchTerms[0].Term)
	assert.Equal(t, int64(12), snapshot.SearchTerms[0].Metrics.Clicks)
	assert.Equal(t, 6.0, snapshot.SearchTerms[0].Metrics.Spend)

	require.Len(t, snapshot.Suggestions["10"], 1)
	assert.Equal(t, domain.MatchTypeExact, snapshot.Suggestions["10"][0].MatchType)
	assert.True(t, decimal.RequireFromString("0.90").Equal(snapshot.Suggestions["10"][0].SuggestedBid))
}

func TestFetchSnapshot_ApenasLances(t *testing.T) {
	s, client := newIntegrator(t)
	ctx := context.Background()
	features, err := domain.ParseFeatures([]string{"bids"})
	require.NoError(t, err)

	expectProfile(client)
	client.EXPECT().ListCampaigns(ctx, "123").Return(nil, nil)
	client.EXPECT().ListAdGroups(ctx, "123").Return(nil, nil)
	client.EXPECT().ListKeywords(ctx, "123").Return(nil, nil)
	client.EXPECT().FetchReport(ctx, "123", amazondomain.ReportTargeting, gomock.Any(), gomock.Any()).Return(nil, nil)

	snapshot, err := s.FetchSnapshot(ctx, "123", config.DefaultRules(), features, testNow)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Keywords)
	assert.Empty(t, snapshot.Suggestions)
}

func TestFetchSnapshot_PerfilInacessivel(t *testing.T) {
	s, client := newIntegrator(t)
	features, _ := domain.ParseFeatures(nil)

	expectProfile(client)

	_, err := s.FetchSnapshot(context.Background(), "777", config.DefaultRules(), features, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfig))
	assert.True(t, domain.IsFatal(err))
}

func TestFetchSnapshot_ErroDeRelatorio(t *testing.T) {
	s, client := newIntegrator(t)
	ctx := context.Background()
	features, _ := domain.ParseFeatures([]string{"campaigns"})

	expectProfile(client)
	client.EXPECT().ListCampaigns(ctx, "123").Return(nil, nil)
	client.EXPECT().ListAdGroups(ctx, "123").Return(nil, nil)
	client.EXPECT().ListKeywords(ctx, "123").Return(nil, nil)
	client.EXPECT().FetchReport(ctx, "123", amazondomain.ReportCampaigns, gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrTransientAPI)

	_, err := s.FetchSnapshot(ctx, "123", config.DefaultRules(), features, testNow)
	assert.True(t, errors.Is(err, domain.ErrTransientAPI))
}

func TestFetchSuggestions(t *testing.T) {
	snapshotWith := func() *domain.AccountSnapshot {
		return &domain.AccountSnapshot{
			ProfileID: "123",
			AdGroups: []domain.AdGroup{
				{ID: "10", State: domain.CampaignStateEnabled},
				{ID: "20", State: domain.CampaignStateEnabled},
				{ID: "30", State: domain.CampaignStateEnabled},
			},
			Keywords: []domain.Keyword{
				{ID: "1", AdGroupID: "30"},
				{ID: "2", AdGroupID: "30"},
			},
			Suggestions: make(map[string][]domain.KeywordSuggestion),
		}
	}
	rules := config.DefaultRules()
	rules.MaxKeywordsPerAdGroupTotal = 2

	t.Run("erro transitório ignora o grupo", func(t *testing.T) {
		s, client := newIntegrator(t)
		snapshot := snapshotWith()

		client.EXPECT().GetKeywordSuggestions(gomock.Any(), "123", "10", rules.MaxSuggestions).
			Return([]amazondomain.SuggestedKeyword{{KeywordText: "a", MatchType: "exact"}}, nil)
		client.EXPECT().GetKeywordSuggestions(gomock.Any(), "123", "20", rules.MaxSuggestions).
			Return(nil, domain.ErrTransientAPI)

		require.NoError(t, s.fetchSuggestions(context.Background(), snapshot, rules))
		assert.Len(t, snapshot.Suggestions["10"], 1)
		assert.NotContains(t, snapshot.Suggestions, "20")
		// O grupo 30 já está no limite total e não é consultado.
		assert.NotContains(t, snapshot.Suggestions, "30")
	})

	t.Run("erro de autenticação interrompe", func(t *testing.T) {
		s, client := newIntegrator(t)
		snapshot := snapshotWith()

		client.EXPECT().GetKeywordSuggestions(gomock.Any(), "123", gomock.Any(), gomock.Any()).
			Return(nil, &domain.APIError{StatusCode: 401, Err: domain.ErrAuth}).Times(2)

		err := s.fetchSuggestions(context.Background(), snapshot, rules)
		assert.True(t, errors.Is(err, domain.ErrAuth))
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	bidAction := func(id string) domain.Action {
		return domain.NewBidAction(domain.Keyword{ID: id, CampaignID: "1", AdGroupID: "10", Bid: decimal.RequireFromString("0.85")},
			decimal.RequireFromString("1.00"), "acos baixo")
	}

	t.Run("resultado por item", func(t *testing.T) {
		s, client := newIntegrator(t)

		client.EXPECT().UpdateKeywordBids(ctx, "123", []amazondomain.KeywordBidUpdate{
			{KeywordID: 100, Bid: 1},
			{KeywordID: 101, Bid: 1},
		}).Return([]amazondomain.MutationResult{
			{KeywordID: 100, Code: amazondomain.CodeSuccess},
			{KeywordID: 101, Code: "INVALID_ARGUMENT", Details: "keyword archived"},
		}, nil)

		errs, err := s.Submit(ctx, "123", domain.OperationBidUpdate, []domain.Action{bidAction("100"), bidAction("abc"), bidAction("101")})
		require.NoError(t, err)
		require.Len(t, errs, 3)
		assert.NoError(t, errs[0])
		assert.True(t, errors.Is(errs[1], domain.ErrValidation))
		require.Error(t, errs[2])
		assert.Contains(t, errs[2].Error(), "keyword archived")
	})

	t.Run("falha da chamada marca itens sem resultado", func(t *testing.T) {
		s, client := newIntegrator(t)

		client.EXPECT().UpdateKeywordBids(ctx, "123", gomock.Len(3)).Return([]amazondomain.MutationResult{
			{KeywordID: 100, Code: amazondomain.CodeSuccess},
		}, domain.ErrTransientAPI)

		errs, err := s.Submit(ctx, "123", domain.OperationBidUpdate, []domain.Action{bidAction("100"), bidAction("101"), bidAction("102")})
		assert.True(t, errors.Is(err, domain.ErrTransientAPI))
		assert.NoError(t, errs[0])
		assert.True(t, errors.Is(errs[1], domain.ErrTransientAPI))
		assert.True(t, errors.Is(errs[2], domain.ErrTransientAPI))
	})

	t.Run("mudança de estado", func(t *testing.T) {
		s, client := newIntegrator(t)
		action := domain.NewStateAction(domain.Campaign{ID: "1", State: domain.CampaignStateEnabled}, domain.CampaignStatePaused, "acos alto", 0)

		client.EXPECT().UpdateCampaignStates(ctx, "123", []amazondomain.CampaignStateUpdate{{CampaignID: 1, State: "paused"}}).
			Return([]amazondomain.MutationResult{{CampaignID: 1, Code: amazondomain.CodeSuccess}}, nil)

		errs, err := s.Submit(ctx, "123", domain.OperationStateChange, []domain.Action{action})
		require.NoError(t, err)
		assert.NoError(t, errs[0])
	})

	t.Run("criação de palavras-chave e negativas", func(t *testing.T) {
		s, client := newIntegrator(t)
		ag := domain.AdGroup{ID: "10", CampaignID: "1"}
		add := domain.NewAddKeywordAction(ag, "tenis azul", domain.MatchTypeExact, decimal.RequireFromString("0.50"), "sugestão")
		neg := domain.NewAddNegativeKeywordAction(domain.SearchTerm{Term: "gratis", CampaignID: "1", AdGroupID: "10"}, "sem conversão", 0)

		client.EXPECT().CreateKeywords(ctx, "123", []amazondomain.KeywordCreate{
			{CampaignID: 1, AdGroupID: 10, KeywordText: "tenis azul", MatchType: "exact", State: "enabled", Bid: 0.5},
		}).Return([]amazondomain.MutationResult{{KeywordID: 900, Code: amazondomain.CodeSuccess}}, nil)
		client.EXPECT().CreateNegativeKeywords(ctx, "123", []amazondomain.KeywordCreate{
			{CampaignID: 1, AdGroupID: 10, KeywordText: "gratis", MatchType: "negativeExact", State: "enabled"},
		}).Return([]amazondomain.MutationResult{{KeywordID: 901, Code: amazondomain.CodeSuccess}}, nil)

		errs, err := s.Submit(ctx, "123", domain.OperationKeywordCreation, []domain.Action{add})
		require.NoError(t, err)
		assert.NoError(t, errs[0])

		errs, err = s.Submit(ctx, "123", domain.OperationNegativeKeywordCreation, []domain.Action{neg})
		require.NoError(t, err)
		assert.NoError(t, errs[0])
	})
}
