package domain

import "time"

// AuditEntry é uma linha da trilha de auditoria: uma por entidade avaliada,
// mesmo quando nenhuma ação foi proposta.
type AuditEntry struct {
	ID            string          `json:"id"`
	RunID         string          `json:"run_id"`
	ProfileID     string          `json:"profile_id"`
	EntityID      string          `json:"entity_id"`
	EntityType    EntityType      `json:"entity_type"`
	EntityName    string          `json:"entity_name"`
	ActionType    ActionType      `json:"action_type,omitempty"`
	OldValue      string          `json:"old_value"`
	NewValue      string          `json:"new_value,omitempty"`
	Reason        string          `json:"reason"`
	Flag          DecisionFlag    `json:"flag"`
	Outcome       Outcome         `json:"outcome"`
	SkipReason    SkipReason      `json:"skip_reason,omitempty"`
	Error         string          `json:"error,omitempty"`
	ImpactPercent float64         `json:"impact_percent"`
	Metrics       MetricsSnapshot `json:"metrics"`
	Action        *Action         `json:"action,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}
