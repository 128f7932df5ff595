package amazondomain

import "strconv"

const CodeSuccess = "SUCCESS"

// MutationResult é o resultado por item de um PUT/POST em lote. A API devolve
// os itens na mesma ordem do corpo enviado.
type MutationResult struct {
	KeywordID  int64  `json:"keywordId,omitempty"`
	CampaignID int64  `json:"campaignId,omitempty"`
	Code       string `json:"code"`
	Details    string `json:"details,omitempty"`
}

func (r MutationResult) OK() bool {
	return r.Code == CodeSuccess
}

// EntityID retorna o id afetado, seja palavra-chave ou campanha.
func (r MutationResult) EntityID() string {
	if r.KeywordID != 0 {
		return strconv.FormatInt(r.KeywordID, 10)
	}
	if r.CampaignID != 0 {
		return strconv.FormatInt(r.CampaignID, 10)
	}
	return ""
}
