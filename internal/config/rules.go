package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"gopkg.in/yaml.v3"
)

var errConfig = domain.ErrConfig

// Rules são os limiares e toggles do motor de decisão.
type Rules struct {
	ACOSHighThreshold float64 `mapstructure:"acos_high_threshold" yaml:"acos_high_threshold"`
	ACOSLowThreshold  float64 `mapstructure:"acos_low_threshold" yaml:"acos_low_threshold"`
	LookbackDays      int     `mapstructure:"lookback_days" yaml:"lookback_days"`
	MinClicks         int64   `mapstructure:"min_clicks" yaml:"min_clicks"`
	MinCTR            float64 `mapstructure:"min_ctr" yaml:"min_ctr"`
	// ComparePriorWindow busca também a janela anterior para detectar queda de CTR.
	ComparePriorWindow bool    `mapstructure:"compare_prior_window" yaml:"compare_prior_window"`
	BidUpPct           float64 `mapstructure:"bid_up_pct" yaml:"bid_up_pct"`
	BidDownPct         float64 `mapstructure:"bid_down_pct" yaml:"bid_down_pct"`
	MinBid             float64 `mapstructure:"min_bid" yaml:"min_bid"`
	MaxBid             float64 `mapstructure:"max_bid" yaml:"max_bid"`

	DaypartingEnabled bool     `mapstructure:"dayparting_enabled" yaml:"dayparting_enabled"`
	PeakHours         []string `mapstructure:"peak_hours" yaml:"peak_hours"`
	PeakMultiplier    float64  `mapstructure:"peak_multiplier" yaml:"peak_multiplier"`
	OffPeakMultiplier float64  `mapstructure:"off_peak_multiplier" yaml:"off_peak_multiplier"`

	AutoPauseCampaigns    bool `mapstructure:"auto_pause_campaigns" yaml:"auto_pause_campaigns"`
	AutoActivateCampaigns bool `mapstructure:"auto_activate_campaigns" yaml:"auto_activate_campaigns"`

	MaxKeywordsPerAdGroup      int     `mapstructure:"max_keywords_per_ad_group" yaml:"max_keywords_per_ad_group"`
	MaxKeywordsPerAdGroupTotal int     `mapstructure:"max_keywords_per_ad_group_total" yaml:"max_keywords_per_ad_group_total"`
	NewKeywordBid              float64 `mapstructure:"new_keyword_bid" yaml:"new_keyword_bid"`
	NewKeywordMatchType        string  `mapstructure:"new_keyword_match_type" yaml:"new_keyword_match_type"`
	NegativeClickFloor         int64   `mapstructure:"negative_click_floor" yaml:"negative_click_floor"`
	MaxSuggestions             int     `mapstructure:"max_suggestions" yaml:"max_suggestions"`

	MaxBatchSize int  `mapstructure:"max_batch_size" yaml:"max_batch_size"`
	DryRun       bool `mapstructure:"dry_run" yaml:"dry_run"`
}

func SetRuleDefaults() {
	viper.SetDefault("ACOS_HIGH_THRESHOLD", 0.45)
	viper.SetDefault("ACOS_LOW_THRESHOLD", 0.30)
	viper.SetDefault("LOOKBACK_DAYS", 14)
	viper.SetDefault("MIN_CLICKS", 10)
	viper.SetDefault("MIN_CTR", 0.003)
	viper.SetDefault("COMPARE_PRIOR_WINDOW", false)
	viper.SetDefault("BID_UP_PCT", 0.15)
	viper.SetDefault("BID_DOWN_PCT", 0.15)
	viper.SetDefault("MIN_BID", 0.25)
	viper.SetDefault("MAX_BID", 5.00)

	viper.SetDefault("DAYPARTING_ENABLED", true)
	viper.SetDefault("PEAK_HOURS", "9-20")
	viper.SetDefault("PEAK_MULTIPLIER", 1.20)
	viper.SetDefault("OFF_PEAK_MULTIPLIER", 0.85)

	viper.SetDefault("AUTO_PAUSE_CAMPAIGNS", true)
	viper.SetDefault("AUTO_ACTIVATE_CAMPAIGNS", true)

	viper.SetDefault("MAX_KEYWORDS_PER_AD_GROUP", 5)
	viper.SetDefault("MAX_KEYWORDS_PER_AD_GROUP_TOTAL", 50)
	viper.SetDefault("NEW_KEYWORD_BID", 0.50)
	viper.SetDefault("NEW_KEYWORD_MATCH_TYPE", "exact")
	viper.SetDefault("NEGATIVE_CLICK_FLOOR", 10)
	viper.SetDefault("MAX_SUGGESTIONS", 100)

	viper.SetDefault("MAX_BATCH_SIZE", 100)
	viper.SetDefault("DRY_RUN", false)
}

// DefaultRules retorna as regras padrão sem depender do viper. Usado em testes e na CLI.
func DefaultRules() Rules {
	return Rules{
		ACOSHighThreshold:          0.45,
		ACOSLowThreshold:           0.30,
		LookbackDays:               14,
		MinClicks:                  10,
		MinCTR:                     0.003,
		BidUpPct:                   0.15,
		BidDownPct:                 0.15,
		MinBid:                     0.25,
		MaxBid:                     5.00,
		DaypartingEnabled:          true,
		PeakHours:                  []string{"9-20"},
		PeakMultiplier:             1.20,
		OffPeakMultiplier:          0.85,
		AutoPauseCampaigns:         true,
		AutoActivateCampaigns:      true,
		MaxKeywordsPerAdGroup:      5,
		MaxKeywordsPerAdGroupTotal: 50,
		NewKeywordBid:              0.50,
		NewKeywordMatchType:        string(domain.MatchTypeExact),
		NegativeClickFloor:         10,
		MaxSuggestions:             100,
		MaxBatchSize:               100,
	}
}

// LoadRules lê um arquivo YAML e sobrepõe apenas os campos presentes nele.
func LoadRules(path string, base Rules) (Rules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("%w: lendo arquivo de regras %s: %v", errConfig, path, err)
	}

	rules := base
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return Rules{}, fmt.Errorf("%w: arquivo de regras %s: %v", errConfig, path, err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}

	return rules, nil
}

func (r Rules) MinBidDecimal() decimal.Decimal {
	return decimal.NewFromFloat(r.MinBid)
}

func (r Rules) MaxBidDecimal() decimal.Decimal {
	return decimal.NewFromFloat(r.MaxBid)
}

func (r Rules) NewKeywordBidDecimal() decimal.Decimal {
	return decimal.NewFromFloat(r.NewKeywordBid)
}

// Validate garante que as regras são coerentes antes de qualquer chamada à API.
func (r Rules) Validate() error {
	switch {
	case r.ACOSHighThreshold <= 0 || r.ACOSHighThreshold > 10:
		return newConfigError("acos_high_threshold", "fora de (0, 10]: %v", r.ACOSHighThreshold)
	case r.ACOSLowThreshold <= 0 || r.ACOSLowThreshold > 10:
		return newConfigError("acos_low_threshold", "fora de (0, 10]: %v", r.ACOSLowThreshold)
	case r.ACOSLowThreshold > r.ACOSHighThreshold:
		return newConfigError("acos_low_threshold", "limiar baixo (%v) maior que o alto (%v)", r.ACOSLowThreshold, r.ACOSHighThreshold)
	case r.LookbackDays < 1 || r.LookbackDays > 60:
		return newConfigError("lookback_days", "deve estar entre 1 e 60, recebido %d", r.LookbackDays)
	case r.MinClicks < 0:
		return newConfigError("min_clicks", "não pode ser negativo")
	case r.MinCTR < 0 || r.MinCTR > 1:
		return newConfigError("min_ctr", "fora de [0, 1]: %v", r.MinCTR)
	case r.BidUpPct < 0 || r.BidUpPct > 1:
		return newConfigError("bid_up_pct", "fora de [0, 1]: %v", r.BidUpPct)
	case r.BidDownPct < 0 || r.BidDownPct > 1:
		return newConfigError("bid_down_pct", "fora de [0, 1]: %v", r.BidDownPct)
	case r.MinBid <= 0:
		return newConfigError("min_bid", "deve ser positivo")
	case r.MaxBid < r.MinBid:
		return newConfigError("max_bid", "menor que min_bid")
	case !domain.IsWholeCent(r.MinBidDecimal()):
		return newConfigError("min_bid", "deve ter no máximo duas casas decimais: %v", r.MinBid)
	case !domain.IsWholeCent(r.MaxBidDecimal()):
		return newConfigError("max_bid", "deve ter no máximo duas casas decimais: %v", r.MaxBid)
	case r.PeakMultiplier <= 0 || r.OffPeakMultiplier <= 0:
		return newConfigError("peak_multiplier", "multiplicadores devem ser positivos")
	case r.MaxKeywordsPerAdGroup < 0 || r.MaxKeywordsPerAdGroupTotal < 0:
		return newConfigError("max_keywords_per_ad_group", "não pode ser negativo")
	case r.NewKeywordBid <= 0:
		return newConfigError("new_keyword_bid", "deve ser positivo")
	case r.MaxSuggestions < 1 || r.MaxSuggestions > 1000:
		return newConfigError("max_suggestions", "deve estar entre 1 e 1000, recebido %d", r.MaxSuggestions)
	case r.NegativeClickFloor < 1:
		return newConfigError("negative_click_floor", "deve ser >= 1")
	case r.MaxBatchSize < 1 || r.MaxBatchSize > 1000:
		return newConfigError("max_batch_size", "deve estar entre 1 e 1000, recebido %d", r.MaxBatchSize)
	}

	switch domain.MatchType(r.NewKeywordMatchType) {
	case domain.MatchTypeExact, domain.MatchTypePhrase, domain.MatchTypeBroad:
	default:
		return newConfigError("new_keyword_match_type", "tipo desconhecido %q", r.NewKeywordMatchType)
	}

	if _, err := ParseHourRanges(r.PeakHours); err != nil {
		return err
	}

	return nil
}

// HourRange é um intervalo inclusivo de horas locais. Start > End cruza a meia-noite.
type HourRange struct {
	Start int
	End   int
}

func (h HourRange) Contains(hour int) bool {
	if h.Start <= h.End {
		return hour >= h.Start && hour <= h.End
	}
	return hour >= h.Start || hour <= h.End
}

// ParseHourRanges interpreta entradas como "9-20", "22-2" ou "13".
func ParseHourRanges(values []string) ([]HourRange, error) {
	out := make([]HourRange, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			start, end, found := strings.Cut(part, "-")
			if !found {
				end = start
			}

			s, err := parseHour(start)
			if err != nil {
				return nil, newConfigError("peak_hours", "intervalo inválido %q: %v", part, err)
			}
			e, err := parseHour(end)
			if err != nil {
				return nil, newConfigError("peak_hours", "intervalo inválido %q: %v", part, err)
			}

			out = append(out, HourRange{Start: s, End: e})
		}
	}
	return out, nil
}

func parseHour(value string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hora %d fora de 0..23", h)
	}
	return h, nil
}

func newConfigError(field, format string, args ...any) error {
	return fmt.Errorf("%w: %w", errConfig, domain.NewValidationError(field, format, args...))
}
