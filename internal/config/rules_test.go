package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
)

func TestDefaultRules_SaoValidas(t *testing.T) {
	rules := DefaultRules()
	require.NoError(t, rules.Validate())
	assert.Equal(t, "0.25", rules.MinBidDecimal().StringFixed(2))
	assert.Equal(t, "5.00", rules.MaxBidDecimal().StringFixed(2))
}

func TestRules_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Rules)
		field  string
	}{
		{name: "Limiar baixo acima do alto", mutate: func(r *Rules) { r.ACOSLowThreshold = 0.5 }, field: "acos_low_threshold"},
		{name: "Limiar alto zerado", mutate: func(r *Rules) { r.ACOSHighThreshold = 0 }, field: "acos_high_threshold"},
		{name: "Lance mínimo com fração de centavo", mutate: func(r *Rules) { r.MinBid = 0.255 }, field: "min_bid"},
		{name: "Lance máximo menor que o mínimo", mutate: func(r *Rules) { r.MaxBid = 0.10 }, field: "max_bid"},
		{name: "Lote acima do limite", mutate: func(r *Rules) { r.MaxBatchSize = 5000 }, field: "max_batch_size"},
		{name: "Lote zerado", mutate: func(r *Rules) { r.MaxBatchSize = 0 }, field: "max_batch_size"},
		{name: "Faixa de horas inválida", mutate: func(r *Rules) { r.PeakHours = []string{"9-25"} }, field: "peak_hours"},
		{name: "Tipo de correspondência desconhecido", mutate: func(r *Rules) { r.NewKeywordMatchType = "fuzzy" }, field: "new_keyword_match_type"},
		{name: "Percentual acima de 100%", mutate: func(r *Rules) { r.BidUpPct = 1.5 }, field: "bid_up_pct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)

			err := rules.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig))
			assert.True(t, domain.IsFatal(err))

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestLoadRules_SobrepoeApenasCamposPresentes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
acos_high_threshold: 0.50
bid_down_pct: 0.20
peak_hours: ["8-12", "18-22"]
dry_run: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, 0.50, rules.ACOSHighThreshold)
	assert.Equal(t, 0.20, rules.BidDownPct)
	assert.Equal(t, []string{"8-12", "18-22"}, rules.PeakHours)
	assert.True(t, rules.DryRun)
	assert.Equal(t, 0.30, rules.ACOSLowThreshold)
	assert.Equal(t, int64(10), rules.MinClicks)
}

func TestLoadRules_Erros(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nao-existe.yaml"), DefaultRules())
	assert.True(t, errors.Is(err, domain.ErrConfig))

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("acos_high_threshold: [1, 2"), 0o600))
	_, err = LoadRules(path, DefaultRules())
	assert.True(t, errors.Is(err, domain.ErrConfig))

	require.NoError(t, os.WriteFile(path, []byte("acos_low_threshold: 0.9"), 0o600))
	_, err = LoadRules(path, DefaultRules())
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestParseHourRanges(t *testing.T) {
	ranges, err := ParseHourRanges([]string{"9-20", "22-2,13"})
	require.NoError(t, err)
	require.Len(t, ranges, 3)

	assert.Equal(t, HourRange{Start: 9, End: 20}, ranges[0])
	assert.True(t, ranges[0].Contains(9))
	assert.True(t, ranges[0].Contains(20))
	assert.False(t, ranges[0].Contains(21))
	assert.False(t, ranges[0].Contains(8))

	// Faixa que cruza a meia-noite.
	assert.True(t, ranges[1].Contains(23))
	assert.True(t, ranges[1].Contains(0))
	assert.True(t, ranges[1].Contains(2))
	assert.False(t, ranges[1].Contains(3))

	assert.Equal(t, HourRange{Start: 13, End: 13}, ranges[2])

	_, err = ParseHourRanges([]string{"abc"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{
		RateLimit: RateLimit{Capacity: 10, RefillSeconds: 1},
		Retry:     Retry{MaxAttempts: 5, BaseDelaySeconds: 5, MaxDelaySeconds: 120},
		Cache:     Cache{TTLSeconds: 60},
		Rules:     DefaultRules(),
	}
	require.NoError(t, cfg.Validate())

	cfg.RateLimit.Capacity = 0
	assert.True(t, errors.Is(cfg.Validate(), domain.ErrConfig))

	cfg.RateLimit.Capacity = 10
	cfg.Retry.MaxDelaySeconds = 1
	assert.True(t, errors.Is(cfg.Validate(), domain.ErrConfig))
}
