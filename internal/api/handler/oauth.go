package handler

import (
	"net/http"

	"github.com/vfg2006/ppc-optimizer/pkg/apiErrors"
	"github.com/vfg2006/ppc-optimizer/pkg/log"
)

// CheckOAuth troca o refresh token e lista os perfis acessíveis.
func CheckOAuth(checker OAuthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		check, err := checker.CheckOAuth(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Verificação OAuth falhou")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, check)
	}
}
