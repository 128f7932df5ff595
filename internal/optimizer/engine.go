package optimizer

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

// Engine avalia um AccountSnapshot e propõe ações. Não faz I/O: o mesmo
// snapshot com o mesmo relógio produz sempre as mesmas decisões, na mesma ordem.
type Engine struct {
	rules      config.Rules
	dayparting *Dayparting

	minBid        decimal.Decimal
	maxBid        decimal.Decimal
	upPct         decimal.Decimal
	downPct       decimal.Decimal
	newKeywordBid decimal.Decimal
}

func NewEngine(rules config.Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	dayparting, err := NewDayparting(rules)
	if err != nil {
		return nil, err
	}

	return &Engine{
		rules:         rules,
		dayparting:    dayparting,
		minBid:        rules.MinBidDecimal(),
		maxBid:        rules.MaxBidDecimal(),
		upPct:         decimal.NewFromFloat(rules.BidUpPct),
		downPct:       decimal.NewFromFloat(rules.BidDownPct),
		newKeywordBid: rules.NewKeywordBidDecimal(),
	}, nil
}

func (e *Engine) Rules() config.Rules {
	return e.rules
}

// Evaluate roda os passes habilitados na ordem campanhas, lances, descoberta e
// negativas. Toda entidade avaliada gera uma Decision, com ou sem ação.
func (e *Engine) Evaluate(snapshot *domain.AccountSnapshot, features domain.FeatureSet, now time.Time) []domain.Decision {
	decisions := make([]domain.Decision, 0)
	if snapshot == nil {
		return decisions
	}

	if features.Has(domain.FeatureCampaigns) {
		for _, c := range snapshot.Campaigns {
			decisions = append(decisions, e.EvaluateCampaign(c))
		}
	}

	if features.Has(domain.FeatureBids) {
		multiplier := e.dayparting.Multiplier(now, snapshot.Location())
		peak := e.dayparting.Enabled() && e.dayparting.IsPeak(now, snapshot.Location())
		for _, kw := range snapshot.Keywords {
			decisions = append(decisions, e.EvaluateKeyword(kw, multiplier, peak))
		}
	}

	if features.Has(domain.FeatureKeywords) {
		decisions = append(decisions, e.DiscoverKeywords(snapshot)...)
	}

	if features.Has(domain.FeatureNegatives) {
		decisions = append(decisions, e.ProposeNegatives(snapshot)...)
	}

	return decisions
}

func hasSufficientData(m domain.MetricsSnapshot, minClicks int64) bool {
	return m.Clicks >= minClicks
}

func percent(v float64) float64 {
	return v * 100
}
