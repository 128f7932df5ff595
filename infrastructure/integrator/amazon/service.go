package amazon

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/amazonclient"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/utils"
)

type AmazonIntegrator struct {
	cfg    *config.Config
	Client amazonclient.Client
}

func New(cfg *config.Config, client amazonclient.Client) *AmazonIntegrator {
	return &AmazonIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

// ResolveProfile confirma que o perfil está acessível com as credenciais atuais.
func (s *AmazonIntegrator) ResolveProfile(ctx context.Context, profileID string) (*amazondomain.Profile, error) {
	profiles, err := s.Client.GetProfiles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listando perfis")
	}

	for _, p := range profiles {
		if p.ID() == profileID {
			return &p, nil
		}
	}

	return nil, errors.Wrapf(domain.ErrConfig, "perfil %s não está acessível com estas credenciais", profileID)
}

// FetchSnapshot monta o retrato da conta para a janela de lookback terminada ontem,
// no fuso do marketplace do perfil. Só busca os relatórios que as features pedem.
func (s *AmazonIntegrator) FetchSnapshot(ctx context.Context, profileID string, rules config.Rules, features domain.FeatureSet, now time.Time) (*domain.AccountSnapshot, error) {
	profile, err := s.ResolveProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.AccountSnapshot{
		ProfileID:    profileID,
		Timezone:     profile.Timezone,
		CurrencyCode: profile.CurrencyCode,
		FetchedAt:    now,
		Suggestions:  make(map[string][]domain.KeywordSuggestion),
	}

	start, end := utils.LookbackWindow(now, rules.LookbackDays, snapshot.Location())
	snapshot.WindowStart, snapshot.WindowEnd = start, end
	startDate, endDate := start.Format(utils.DateLayout), end.Format(utils.DateLayout)

	logger := logrus.WithFields(logrus.Fields{
		"profile_id": profileID,
		"start_date": startDate,
		"end_date":   endDate,
		"features":   features.List(),
	})
	logger.Info("amazon: buscando retrato da conta")

	campaigns, err := s.Client.ListCampaigns(ctx, profileID)
	if err != nil {
		return nil, errors.Wrap(err, "listando campanhas")
	}

	adGroups, err := s.Client.ListAdGroups(ctx, profileID)
	if err != nil {
		return nil, errors.Wrap(err, "listando grupos de anúncios")
	}

	keywords, err := s.Client.ListKeywords(ctx, profileID)
	if err != nil {
		return nil, errors.Wrap(err, "listando palavras-chave")
	}

	if features.Has(domain.FeatureNegatives) || features.Has(domain.FeatureKeywords) {
		negatives, err := s.Client.ListNegativeKeywords(ctx, profileID)
		if err != nil {
			return nil, errors.Wrap(err, "listando palavras-chave negativas")
		}
		for _, nk := range negatives {
			snapshot.NegativeKeywords = append(snapshot.NegativeKeywords, FactoryNegativeKeyword(nk))
		}
	}

	campaignMetrics := map[int64]domain.MetricsSnapshot{}
	if features.Has(domain.FeatureCampaigns) {
		rows, err := s.Client.FetchReport(ctx, profileID, amazondomain.ReportCampaigns, startDate, endDate)
		if err != nil {
			return nil, errors.Wrap(err, "relatório de campanhas")
		}
		campaignMetrics = aggregateRows(rows, func(r amazondomain.ReportRow) int64 { return r.CampaignID }, start, end)
	}

	keywordMetrics := map[int64]domain.MetricsSnapshot{}
	var priorMetrics map[int64]domain.MetricsSnapshot
	if features.Has(domain.FeatureBids) {
		rows, err := s.Client.FetchReport(ctx, profileID, amazondomain.ReportTargeting, startDate, endDate)
		if err != nil {
			return nil, errors.Wrap(err, "relatório de palavras-chave")
		}
		keywordMetrics = aggregateRows(rows, func(r amazondomain.ReportRow) int64 { return r.KeywordID }, start, end)

		if rules.ComparePriorWindow {
			priorEnd := start.AddDate(0, 0, -1)
			priorStart := start.AddDate(0, 0, -rules.LookbackDays)
			rows, err := s.Client.FetchReport(ctx, profileID, amazondomain.ReportTargeting, priorStart.Format(utils.DateLayout), priorEnd.Format(utils.DateLayout))
			if err != nil {
				return nil, errors.Wrap(err, "relatório de palavras-chave da janela anterior")
			}
			priorMetrics = aggregateRows(rows, func(r amazondomain.ReportRow) int64 { return r.KeywordID }, priorStart, priorEnd)
		}
	}

	if features.Has(domain.FeatureNegatives) {
		rows, err := s.Client.FetchReport(ctx, profileID, amazondomain.ReportSearchTerms, startDate, endDate)
		if err != nil {
			return nil, errors.Wrap(err, "relatório de termos de busca")
		}
		snapshot.SearchTerms = FactorySearchTerms(rows, start, end)
	}

	for _, c := range campaigns {
		snapshot.Campaigns = append(snapshot.Campaigns, FactoryCampaign(c, campaignMetrics, start, end))
	}

	defaultBids := make(map[int64]float64, len(adGroups))
	for _, ag := range adGroups {
		defaultBids[ag.AdGroupID] = ag.DefaultBid
		snapshot.AdGroups = append(snapshot.AdGroups, FactoryAdGroup(ag))
	}

	for _, kw := range keywords {
		snapshot.Keywords = append(snapshot.Keywords, FactoryKeyword(kw, defaultBids, keywordMetrics, priorMetrics, start, end))
	}

	if features.Has(domain.FeatureKeywords) {
		if err := s.fetchSuggestions(ctx, snapshot, rules); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"campaigns":    len(snapshot.Campaigns),
		"ad_groups":    len(snapshot.AdGroups),
		"keywords":     len(snapshot.Keywords),
		"negatives":    len(snapshot.NegativeKeywords),
		"search_terms": len(snapshot.SearchTerms),
		"suggestions":  len(snapshot.Suggestions),
	}).Info("amazon: retrato da conta obtido")

	return snapshot, nil
}

// fetchSuggestions busca sugestões por grupo de anúncios em paralelo. Todas as
// chamadas passam pelo mesmo limitador do cliente. Falhas de um grupo são
// ignoradas, exceto autenticação, que interrompe a execução.
func (s *AmazonIntegrator) fetchSuggestions(ctx context.Context, snapshot *domain.AccountSnapshot, rules config.Rules) error {
	counts := make(map[string]int)
	for _, kw := range snapshot.Keywords {
		counts[kw.AdGroupID]++
	}

	targets := make([]domain.AdGroup, 0)
	for _, ag := range snapshot.AdGroups {
		if ag.State != domain.CampaignStateEnabled || counts[ag.ID] >= rules.MaxKeywordsPerAdGroupTotal {
			continue
		}
		targets = append(targets, ag)
	}

	maxConcurrent := s.cfg.OptimizerSync.MaxConcurrentJobs
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	semaphore := make(chan struct{}, maxConcurrent)

	var (
		wg       sync.WaitGroup
		mutex    sync.Mutex
		fatalErr error
	)

	for _, ag := range targets {
		wg.Add(1)

		go func(ag domain.AdGroup) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			suggestions, err := s.Client.GetKeywordSuggestions(ctx, snapshot.ProfileID, ag.ID, rules.MaxSuggestions)
			if err != nil {
				if domain.IsFatal(err) {
					mutex.Lock()
					if fatalErr == nil {
						fatalErr = errors.Wrapf(err, "sugestões do grupo %s", ag.ID)
					}
					mutex.Unlock()
					return
				}
				logrus.WithError(err).WithFields(logrus.Fields{
					"profile_id":  snapshot.ProfileID,
					"ad_group_id": ag.ID,
				}).Warn("amazon: erro ao buscar sugestões, grupo ignorado")
				return
			}

			mutex.Lock()
			snapshot.Suggestions[ag.ID] = FactorySuggestions(ag.ID, suggestions)
			mutex.Unlock()
		}(ag)
	}

	wg.Wait()

	return fatalErr
}

// Submit envia um lote de ações de um mesmo tipo de operação. O slice retornado
// está alinhado com actions: nil para itens aplicados, o erro do item caso contrário.
// O erro de retorno indica que a chamada em si falhou; itens sem resultado
// recebem esse mesmo erro.
func (s *AmazonIntegrator) Submit(ctx context.Context, profileID string, op domain.OperationType, actions []domain.Action) ([]error, error) {
	itemErrs := make([]error, len(actions))
	indexes := make([]int, 0, len(actions))

	var (
		results []amazondomain.MutationResult
		callErr error
	)

	switch op {
	case domain.OperationBidUpdate:
		updates := make([]amazondomain.KeywordBidUpdate, 0, len(actions))
		for i, a := range actions {
			id, err := parseID("keyword_id", a.EntityID)
			if err != nil {
				itemErrs[i] = err
				continue
			}
			indexes = append(indexes, i)
			updates = append(updates, amazondomain.KeywordBidUpdate{KeywordID: id, Bid: a.Bid.NewBid.InexactFloat64()})
		}
		if len(updates) > 0 {
			results, callErr = s.Client.UpdateKeywordBids(ctx, profileID, updates)
		}

	case domain.OperationStateChange:
		updates := make([]amazondomain.CampaignStateUpdate, 0, len(actions))
		for i, a := range actions {
			id, err := parseID("campaign_id", a.EntityID)
			if err != nil {
				itemErrs[i] = err
				continue
			}
			indexes = append(indexes, i)
			updates = append(updates, amazondomain.CampaignStateUpdate{CampaignID: id, State: string(a.State.To)})
		}
		if len(updates) > 0 {
			results, callErr = s.Client.UpdateCampaignStates(ctx, profileID, updates)
		}

	case domain.OperationKeywordCreation, domain.OperationNegativeKeywordCreation:
		creates := make([]amazondomain.KeywordCreate, 0, len(actions))
		for i, a := range actions {
			create, err := keywordCreate(a, op)
			if err != nil {
				itemErrs[i] = err
				continue
			}
			indexes = append(indexes, i)
			creates = append(creates, create)
		}
		if len(creates) > 0 {
			if op == domain.OperationKeywordCreation {
				results, callErr = s.Client.CreateKeywords(ctx, profileID, creates)
			} else {
				results, callErr = s.Client.CreateNegativeKeywords(ctx, profileID, creates)
			}
		}

	default:
		return nil, errors.Errorf("operação desconhecida %q", op)
	}

	for pos, i := range indexes {
		if pos < len(results) {
			if !results[pos].OK() {
				itemErrs[i] = &domain.APIError{
					StatusCode: http.StatusMultiStatus,
					Endpoint:   string(op),
					Body:       results[pos].Code + ": " + results[pos].Details,
				}
			}
			continue
		}
		if callErr != nil {
			itemErrs[i] = callErr
		}
	}

	if callErr != nil {
		logrus.WithError(callErr).WithFields(logrus.Fields{
			"profile_id": profileID,
			"operation":  op,
			"items":      len(indexes),
			"applied":    len(results),
		}).Warn("amazon: falha ao enviar lote")
	}

	return itemErrs, callErr
}

func keywordCreate(a domain.Action, op domain.OperationType) (amazondomain.KeywordCreate, error) {
	campaignID, err := parseID("campaign_id", a.CampaignID)
	if err != nil {
		return amazondomain.KeywordCreate{}, err
	}
	adGroupID, err := parseID("ad_group_id", a.AdGroupID)
	if err != nil {
		return amazondomain.KeywordCreate{}, err
	}

	create := amazondomain.KeywordCreate{
		CampaignID:  campaignID,
		AdGroupID:   adGroupID,
		KeywordText: a.Keyword.Text,
		MatchType:   string(a.Keyword.MatchType),
		State:       amazondomain.StateEnabled,
	}
	if op == domain.OperationKeywordCreation {
		create.Bid = a.Keyword.StartBid.InexactFloat64()
	}
	return create, nil
}

// CheckOAuth valida as credenciais trocando o refresh token.
func (s *AmazonIntegrator) CheckOAuth(ctx context.Context) (*amazonclient.OAuthCheck, error) {
	return s.Client.CheckOAuth(ctx)
}
