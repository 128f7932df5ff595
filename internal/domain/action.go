package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionBidIncrease        ActionType = "bid_increase"
	ActionBidDecrease        ActionType = "bid_decrease"
	ActionCampaignPause      ActionType = "campaign_pause"
	ActionCampaignActivate   ActionType = "campaign_activate"
	ActionAddKeyword         ActionType = "add_keyword"
	ActionAddNegativeKeyword ActionType = "add_negative_keyword"
)

type EntityType string

const (
	EntityCampaign   EntityType = "campaign"
	EntityKeyword    EntityType = "keyword"
	EntityAdGroup    EntityType = "ad_group"
	EntitySearchTerm EntityType = "search_term"
)

// OperationType agrupa ações que compartilham o mesmo endpoint de escrita.
type OperationType string

const (
	OperationBidUpdate               OperationType = "bid_update"
	OperationStateChange             OperationType = "state_change"
	OperationKeywordCreation         OperationType = "keyword_creation"
	OperationNegativeKeywordCreation OperationType = "negative_keyword_creation"
)

// Operations lista as operações na ordem em que são aplicadas.
var Operations = []OperationType{
	OperationStateChange,
	OperationBidUpdate,
	OperationKeywordCreation,
	OperationNegativeKeywordCreation,
}

func (t ActionType) Operation() OperationType {
	switch t {
	case ActionBidIncrease, ActionBidDecrease:
		return OperationBidUpdate
	case ActionCampaignPause, ActionCampaignActivate:
		return OperationStateChange
	case ActionAddKeyword:
		return OperationKeywordCreation
	default:
		return OperationNegativeKeywordCreation
	}
}

type BidChange struct {
	OldBid decimal.Decimal `json:"old_bid"`
	NewBid decimal.Decimal `json:"new_bid"`
	Delta  decimal.Decimal `json:"delta"`
}

type StateChange struct {
	From CampaignState `json:"from"`
	To   CampaignState `json:"to"`
}

type KeywordAddition struct {
	Text      string          `json:"text"`
	MatchType MatchType       `json:"match_type"`
	StartBid  decimal.Decimal `json:"start_bid"`
}

// Action é uma alteração proposta pelo motor de decisão. Apenas o payload
// correspondente a Type é preenchido. Ações são passadas por valor e não mudam depois de criadas.
type Action struct {
	Type          ActionType      `json:"type"`
	EntityID      string          `json:"entity_id"`
	EntityType    EntityType      `json:"entity_type"`
	CampaignID    string          `json:"campaign_id,omitempty"`
	AdGroupID     string          `json:"ad_group_id,omitempty"`
	Reason        string          `json:"reason"`
	ImpactPercent float64         `json:"impact_percent"`
	Bid           BidChange       `json:"bid,omitempty"`
	State         StateChange     `json:"state,omitempty"`
	Keyword       KeywordAddition `json:"keyword,omitempty"`
}

func NewBidAction(kw Keyword, newBid decimal.Decimal, reason string) Action {
	delta := newBid.Sub(kw.Bid)
	actionType := ActionBidIncrease
	if delta.IsNegative() {
		actionType = ActionBidDecrease
	}

	impact := 0.0
	if kw.Bid.IsPositive() {
		impact = delta.Div(kw.Bid).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	return Action{
		Type:          actionType,
		EntityID:      kw.ID,
		EntityType:    EntityKeyword,
		CampaignID:    kw.CampaignID,
		AdGroupID:     kw.AdGroupID,
		Reason:        reason,
		ImpactPercent: impact,
		Bid: BidChange{
			OldBid: kw.Bid,
			NewBid: newBid,
			Delta:  delta,
		},
	}
}

func NewStateAction(c Campaign, to CampaignState, reason string, impactPercent float64) Action {
	actionType := ActionCampaignPause
	if to == CampaignStateEnabled {
		actionType = ActionCampaignActivate
	}

	return Action{
		Type:          actionType,
		EntityID:      c.ID,
		EntityType:    EntityCampaign,
		CampaignID:    c.ID,
		Reason:        reason,
		ImpactPercent: impactPercent,
		State:         StateChange{From: c.State, To: to},
	}
}

func NewAddKeywordAction(ag AdGroup, text string, matchType MatchType, startBid decimal.Decimal, reason string) Action {
	return Action{
		Type:       ActionAddKeyword,
		EntityID:   ag.ID,
		EntityType: EntityAdGroup,
		CampaignID: ag.CampaignID,
		AdGroupID:  ag.ID,
		Reason:     reason,
		Keyword: KeywordAddition{
			Text:      text,
			MatchType: matchType,
			StartBid:  startBid,
		},
	}
}

func NewAddNegativeKeywordAction(term SearchTerm, reason string, impactPercent float64) Action {
	return Action{
		Type:          ActionAddNegativeKeyword,
		EntityID:      term.AdGroupID,
		EntityType:    EntityAdGroup,
		CampaignID:    term.CampaignID,
		AdGroupID:     term.AdGroupID,
		Reason:        reason,
		ImpactPercent: impactPercent,
		Keyword: KeywordAddition{
			Text:      term.Term,
			MatchType: MatchTypeNegativeExact,
		},
	}
}

// Key identifica o item dentro de um lote. Para criações o id da entidade não existe ainda.
func (a Action) Key() string {
	switch a.Type {
	case ActionAddKeyword, ActionAddNegativeKeyword:
		return fmt.Sprintf("%s:%s:%s", a.AdGroupID, a.Keyword.MatchType, NormalizeKeywordText(a.Keyword.Text))
	default:
		return a.EntityID
	}
}

// OldValue retorna o valor anterior legível para a trilha de auditoria.
func (a Action) OldValue() string {
	switch a.Type.Operation() {
	case OperationBidUpdate:
		return a.Bid.OldBid.StringFixed(2)
	case OperationStateChange:
		return string(a.State.From)
	default:
		return ""
	}
}

// NewValue retorna o valor proposto legível para a trilha de auditoria.
func (a Action) NewValue() string {
	switch a.Type.Operation() {
	case OperationBidUpdate:
		return a.Bid.NewBid.StringFixed(2)
	case OperationStateChange:
		return string(a.State.To)
	case OperationKeywordCreation:
		return fmt.Sprintf("%s (%s) @ %s", a.Keyword.Text, a.Keyword.MatchType, a.Keyword.StartBid.StringFixed(2))
	default:
		return fmt.Sprintf("%s (%s)", a.Keyword.Text, a.Keyword.MatchType)
	}
}

// DecisionFlag classifica o motivo de uma avaliação sem ação.
type DecisionFlag string

const (
	FlagActionProposed   DecisionFlag = "action_proposed"
	FlagInsufficientData DecisionFlag = "insufficient_data"
	FlagWithinTarget     DecisionFlag = "within_target_band"
	FlagNoChange         DecisionFlag = "no_change"
	FlagNotManaged       DecisionFlag = "not_managed"
)

// Decision é o resultado de avaliar uma entidade, com ou sem ação.
type Decision struct {
	EntityID   string          `json:"entity_id"`
	EntityType EntityType      `json:"entity_type"`
	EntityName string          `json:"entity_name"`
	Flag       DecisionFlag    `json:"flag"`
	Reason     string          `json:"reason"`
	OldValue   string          `json:"old_value"`
	Metrics    MetricsSnapshot `json:"metrics"`
	Action     *Action         `json:"action,omitempty"`
}

// Actions extrai as ações propostas preservando a ordem das decisões.
func Actions(decisions []Decision) []Action {
	out := make([]Action, 0)
	for _, d := range decisions {
		if d.Action != nil {
			out = append(out, *d.Action)
		}
	}
	return out
}

// Validate confere as invariantes locais antes do envio. Uma ação inválida
// nunca chega à API.
func (a Action) Validate(minBid, maxBid decimal.Decimal) error {
	if a.EntityID == "" {
		return NewValidationError("entity_id", "ação %s sem entidade", a.Type)
	}

	switch a.Type.Operation() {
	case OperationBidUpdate:
		bid := a.Bid.NewBid
		if !IsWholeCent(bid) {
			return NewValidationError("bid", "lance %s com fração de centavo", bid.String())
		}
		if bid.LessThan(minBid) || bid.GreaterThan(maxBid) {
			return NewValidationError("bid", "lance %s fora de [%s, %s]", bid.StringFixed(2), minBid.StringFixed(2), maxBid.StringFixed(2))
		}
		if bid.Equal(a.Bid.OldBid) {
			return NewValidationError("bid", "lance inalterado %s", bid.StringFixed(2))
		}
	case OperationStateChange:
		if a.State.To != CampaignStateEnabled && a.State.To != CampaignStatePaused {
			return NewValidationError("state", "transição para %q não permitida", a.State.To)
		}
		if a.State.From == a.State.To {
			return NewValidationError("state", "campanha já está %s", a.State.To)
		}
	case OperationKeywordCreation:
		if NormalizeKeywordText(a.Keyword.Text) == "" {
			return NewValidationError("keyword", "texto vazio")
		}
		if !a.Keyword.MatchType.IsPositive() {
			return NewValidationError("match_type", "tipo %q inválido para palavra-chave", a.Keyword.MatchType)
		}
		bid := a.Keyword.StartBid
		if !IsWholeCent(bid) || bid.LessThan(minBid) || bid.GreaterThan(maxBid) {
			return NewValidationError("start_bid", "lance inicial %s fora de [%s, %s]", bid.String(), minBid.StringFixed(2), maxBid.StringFixed(2))
		}
	case OperationNegativeKeywordCreation:
		if NormalizeKeywordText(a.Keyword.Text) == "" {
			return NewValidationError("keyword", "texto vazio")
		}
	}

	return nil
}
