package domain

import "time"

// AccountSnapshot é tudo o que o motor de decisão precisa para avaliar um perfil.
type AccountSnapshot struct {
	ProfileID        string                         `json:"profile_id"`
	Timezone         string                         `json:"timezone"`
	CurrencyCode     string                         `json:"currency_code"`
	FetchedAt        time.Time                      `json:"fetched_at"`
	WindowStart      time.Time                      `json:"window_start"`
	WindowEnd        time.Time                      `json:"window_end"`
	Campaigns        []Campaign                     `json:"campaigns"`
	AdGroups         []AdGroup                      `json:"ad_groups"`
	Keywords         []Keyword                      `json:"keywords"`
	NegativeKeywords []NegativeKeyword              `json:"negative_keywords"`
	SearchTerms      []SearchTerm                   `json:"search_terms"`
	Suggestions      map[string][]KeywordSuggestion `json:"suggestions"`
}

// Location retorna o fuso do marketplace do perfil, ou UTC quando desconhecido.
func (s *AccountSnapshot) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// KeywordsByAdGroup agrupa as palavras-chave positivas por grupo de anúncios.
func (s *AccountSnapshot) KeywordsByAdGroup() map[string][]Keyword {
	out := make(map[string][]Keyword)
	for _, kw := range s.Keywords {
		out[kw.AdGroupID] = append(out[kw.AdGroupID], kw)
	}
	return out
}

// NegativesByAdGroup agrupa os textos normalizados das negativas por grupo de anúncios.
func (s *AccountSnapshot) NegativesByAdGroup() map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, nk := range s.NegativeKeywords {
		if out[nk.AdGroupID] == nil {
			out[nk.AdGroupID] = make(map[string]bool)
		}
		out[nk.AdGroupID][NormalizeKeywordText(nk.Text)] = true
	}
	return out
}
