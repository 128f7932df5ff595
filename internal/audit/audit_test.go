package audit

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repomocks "github.com/vfg2006/ppc-optimizer/infrastructure/repository/mocks"
	"github.com/vfg2006/ppc-optimizer/internal/audit/mocks"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/log"
)

var recordedAt = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func bidDecision() domain.Decision {
	kw := domain.Keyword{ID: "kw-1", AdGroupID: "10", CampaignID: "1", Text: "capa celular", Bid: decimal.RequireFromString("0.85")}
	action := domain.NewBidAction(kw, decimal.RequireFromString("1.00"), "ACOS abaixo do alvo")
	return domain.Decision{
		EntityID:   kw.ID,
		EntityType: domain.EntityKeyword,
		EntityName: kw.Text,
		Flag:       domain.FlagActionProposed,
		Reason:     action.Reason,
		OldValue:   "0.85",
		Action:     &action,
	}
}

func TestNewEntry(t *testing.T) {
	t.Run("decisão sem ação é registrada como skipped(no_action)", func(t *testing.T) {
		decision := domain.Decision{
			EntityID:   "kw-2",
			EntityType: domain.EntityKeyword,
			Flag:       domain.FlagWithinTarget,
			Reason:     "dentro da faixa alvo",
			OldValue:   "0.85",
		}

		entry, err := NewEntry("run-1", "123", decision, nil, recordedAt)
		require.NoError(t, err)

		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "run-1", entry.RunID)
		assert.Equal(t, "123", entry.ProfileID)
		assert.Equal(t, domain.OutcomeSkipped, entry.Outcome)
		assert.Equal(t, domain.SkipNoAction, entry.SkipReason)
		assert.Equal(t, "0.85", entry.OldValue)
		assert.Empty(t, entry.NewValue)
		assert.Nil(t, entry.Action)
		assert.Equal(t, recordedAt, entry.RecordedAt)
	})

	t.Run("ação aplicada carrega valores antigo e novo", func(t *testing.T) {
		decision := bidDecision()
		result := &domain.ActionResult{Action: *decision.Action, Outcome: domain.OutcomeApplied}

		entry, err := NewEntry("run-1", "123", decision, result, recordedAt)
		require.NoError(t, err)

		assert.Equal(t, domain.ActionBidIncrease, entry.ActionType)
		assert.Equal(t, "0.85", entry.OldValue)
		assert.Equal(t, "1.00", entry.NewValue)
		assert.Equal(t, domain.OutcomeApplied, entry.Outcome)
		assert.InDelta(t, 17.65, entry.ImpactPercent, 0.001)
		require.NotNil(t, entry.Action)
		assert.NotSame(t, decision.Action, entry.Action)
	})

	t.Run("falha registra o erro", func(t *testing.T) {
		decision := bidDecision()
		result := &domain.ActionResult{Action: *decision.Action, Outcome: domain.OutcomeFailed, Error: "erro na API"}

		entry, err := NewEntry("run-1", "123", decision, result, recordedAt)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeFailed, entry.Outcome)
		assert.Equal(t, "erro na API", entry.Error)
	})

	t.Run("ação sem resultado é erro", func(t *testing.T) {
		_, err := NewEntry("run-1", "123", bidDecision(), nil, recordedAt)
		assert.Error(t, err)
	})
}

func TestLog_RecordEFlush(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockSink(ctrl)
	second := mocks.NewMockSink(ctrl)

	auditLog := NewLog("run-1", "123", first, second)
	auditLog.now = func() time.Time { return recordedAt }

	_, err := auditLog.Record(domain.Decision{EntityID: "c-1", EntityType: domain.EntityCampaign, Flag: domain.FlagNoChange}, nil)
	require.NoError(t, err)
	decision := bidDecision()
	_, err = auditLog.Record(decision, &domain.ActionResult{Action: *decision.Action, Outcome: domain.OutcomeSkipped, SkipReason: domain.SkipDryRun})
	require.NoError(t, err)

	require.Equal(t, 2, auditLog.Len())
	entries := auditLog.Entries()
	assert.Equal(t, "c-1", entries[0].EntityID)
	assert.Equal(t, domain.SkipDryRun, entries[1].SkipReason)

	run := domain.NewRunRecord("run-1", "123", domain.TriggerManual, true, domain.AllFeatures, recordedAt)

	// O primeiro sink falha, o segundo ainda recebe as entradas.
	first.EXPECT().Write(gomock.Any(), run, entries).Return(assert.AnError)
	second.EXPECT().Write(gomock.Any(), run, entries).Return(nil)

	err = auditLog.Flush(context.Background(), run)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRepositorySink_Write(t *testing.T) {
	ctrl := gomock.NewController(t)
	runs := repomocks.NewMockRunRepository(ctrl)
	audits := repomocks.NewMockAuditRepository(ctrl)

	run := domain.NewRunRecord("run-1", "123", domain.TriggerScheduled, false, domain.AllFeatures, recordedAt)
	entries := []domain.AuditEntry{{ID: "a1", RunID: "run-1"}}

	t.Run("salva a execução antes das entradas", func(t *testing.T) {
		gomock.InOrder(
			runs.EXPECT().Save(gomock.Any(), run).Return(nil),
			audits.EXPECT().SaveEntries(gomock.Any(), entries).Return(nil),
		)

		require.NoError(t, NewRepositorySink(runs, audits).Write(context.Background(), run, entries))
	})

	t.Run("falha ao salvar a execução não grava entradas", func(t *testing.T) {
		runs.EXPECT().Save(gomock.Any(), run).Return(assert.AnError)

		err := NewRepositorySink(runs, audits).Write(context.Background(), run, entries)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestLogSink_Write(t *testing.T) {
	buf := &bytes.Buffer{}
	base := logrus.New()
	base.SetOutput(buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.InfoLevel)

	decision := bidDecision()
	applied, err := NewEntry("run-1", "123", decision, &domain.ActionResult{Action: *decision.Action, Outcome: domain.OutcomeApplied}, recordedAt)
	require.NoError(t, err)
	noAction, err := NewEntry("run-1", "123", domain.Decision{EntityID: "kw-9", Reason: "dados insuficientes"}, nil, recordedAt)
	require.NoError(t, err)

	run := domain.NewRunRecord("run-1", "123", domain.TriggerManual, false, domain.AllFeatures, recordedAt)
	run.Finalize(domain.RunStatusCompleted, recordedAt.Add(time.Second), nil)

	err = NewLogSink(log.New(base)).Write(context.Background(), run, []domain.AuditEntry{applied, noAction})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"entity_id":"kw-1"`)
	assert.Contains(t, out, `"new_value":"1.00"`)
	assert.NotContains(t, out, "kw-9", "decisões sem ação ficam em debug")
}
