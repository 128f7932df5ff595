package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundWithTwoDecimalPlace(t *testing.T) {
	assert.Equal(t, 0.0, RoundWithTwoDecimalPlace(0))
	assert.Equal(t, 1.0, RoundWithTwoDecimalPlace(1.003))
	assert.Equal(t, 0.15, RoundWithTwoDecimalPlace(0.153))
}

func TestLookbackWindow(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC do dia 15 ainda é dia 14 em São Paulo.
	now := time.Date(2025, 3, 15, 1, 30, 0, 0, time.UTC)
	start, end := LookbackWindow(now, 14, sp)

	assert.Equal(t, "2025-02-28", start.Format(DateLayout))
	assert.Equal(t, "2025-03-13", end.Format(DateLayout))

	start, end = LookbackWindow(now, 1, nil)
	assert.Equal(t, "2025-03-14", start.Format(DateLayout))
	assert.Equal(t, start, end)
}

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	assert.Len(t, NewRunID(), 36)
}

func TestPrettyJson(t *testing.T) {
	assert.Equal(t, "{\n\t\"a\": 1\n}", PrettyJson(map[string]int{"a": 1}))
	assert.Equal(t, "{\n\t\"b\": true\n}", PrettyJson([]byte(`{"b":true}`)))
	assert.Equal(t, "not json", PrettyJson([]byte("not json")))
}
