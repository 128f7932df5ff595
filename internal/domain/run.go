package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

type RunStatus string

const (
	RunStatusRunning                 RunStatus = "running"
	RunStatusCompleted               RunStatus = "completed"
	RunStatusCompletedWithTruncation RunStatus = "completed_with_truncation"
	RunStatusCancelled               RunStatus = "cancelled"
	RunStatusFailed                  RunStatus = "failed"
)

type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type SkipReason string

const (
	SkipDryRun     SkipReason = "dry_run"
	SkipNoAction   SkipReason = "no_action"
	SkipValidation SkipReason = "validation"
	SkipTruncated  SkipReason = "truncated"
	SkipCancelled  SkipReason = "cancelled"
	SkipAborted    SkipReason = "aborted"
)

// Features que podem ser selecionadas em uma execução.
const (
	FeatureBids      = "bids"
	FeatureCampaigns = "campaigns"
	FeatureKeywords  = "keywords"
	FeatureNegatives = "negatives"
)

var AllFeatures = []string{FeatureBids, FeatureCampaigns, FeatureKeywords, FeatureNegatives}

// ActionResult é o desfecho de uma ação após o BatchApplier.
type ActionResult struct {
	Action     Action     `json:"action"`
	Outcome    Outcome    `json:"outcome"`
	SkipReason SkipReason `json:"skip_reason,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// RunRecord resume uma execução do otimizador.
type RunRecord struct {
	ID                string         `json:"id"`
	ProfileID         string         `json:"profile_id"`
	Trigger           Trigger        `json:"trigger"`
	DryRun            bool           `json:"dry_run"`
	Features          []string       `json:"features"`
	Status            RunStatus      `json:"status"`
	StartedAt         time.Time      `json:"started_at"`
	EndedAt           time.Time      `json:"ended_at"`
	EntitiesEvaluated int            `json:"entities_evaluated"`
	EntitiesModified  int            `json:"entities_modified"`
	Applied           int            `json:"applied"`
	Skipped           int            `json:"skipped"`
	Failed            int            `json:"failed"`
	Results           []ActionResult `json:"results"`
	FatalError        string         `json:"fatal_error,omitempty"`
}

func NewRunRecord(id, profileID string, trigger Trigger, dryRun bool, features []string, startedAt time.Time) *RunRecord {
	return &RunRecord{
		ID:        id,
		ProfileID: profileID,
		Trigger:   trigger,
		DryRun:    dryRun,
		Features:  features,
		Status:    RunStatusRunning,
		StartedAt: startedAt,
		Results:   make([]ActionResult, 0),
	}
}

// AddResult registra o desfecho de uma ação e atualiza os contadores.
func (r *RunRecord) AddResult(res ActionResult) {
	r.Results = append(r.Results, res)

	switch res.Outcome {
	case OutcomeApplied:
		r.Applied++
		r.EntitiesModified++
	case OutcomeFailed:
		r.Failed++
	default:
		r.Skipped++
	}
}

// Finalize fecha o registro. Um registro finalizado não volta para running.
func (r *RunRecord) Finalize(status RunStatus, endedAt time.Time, fatal error) {
	r.Status = status
	r.EndedAt = endedAt
	if fatal != nil {
		r.FatalError = fatal.Error()
	}
}

func (r *RunRecord) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Summary é a linha exibida ao final de toda execução.
func (r *RunRecord) Summary() string {
	mode := "LIVE"
	if r.DryRun {
		mode = "DRY RUN"
	}

	summary := fmt.Sprintf("run %s profile=%s mode=%s status=%s evaluated=%d applied=%d skipped=%d failed=%d duration=%s",
		r.ID, r.ProfileID, mode, r.Status, r.EntitiesEvaluated, r.Applied, r.Skipped, r.Failed, r.Duration().Round(time.Millisecond))
	if r.FatalError != "" {
		summary += " fatal_error=" + r.FatalError
	}
	return summary
}

// FeatureSet indica quais passes do otimizador estão habilitados. Vazio habilita todos.
type FeatureSet map[string]bool

// ParseFeatures valida a lista de features informada. Lista vazia seleciona todas.
func ParseFeatures(features []string) (FeatureSet, error) {
	set := make(FeatureSet)
	if len(features) == 0 {
		for _, f := range AllFeatures {
			set[f] = true
		}
		return set, nil
	}

	for _, f := range features {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !slices.Contains(AllFeatures, f) {
			return nil, NewValidationError("features", "feature desconhecida %q (use %s)", f, strings.Join(AllFeatures, ","))
		}
		set[f] = true
	}
	if len(set) == 0 {
		return ParseFeatures(nil)
	}
	return set, nil
}

func (s FeatureSet) Has(feature string) bool {
	return s[feature]
}

// List retorna as features na ordem canônica.
func (s FeatureSet) List() []string {
	out := make([]string, 0, len(s))
	for _, f := range AllFeatures {
		if s[f] {
			out = append(out, f)
		}
	}
	return out
}
