package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
	"github.com/vfg2006/ppc-optimizer/pkg/apiErrors"
	"github.com/vfg2006/ppc-optimizer/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type RunRequestBody struct {
	ProfileID string   `json:"profile_id"`
	DryRun    bool     `json:"dry_run"`
	Features  []string `json:"features"`
	// Wait executa de forma síncrona e devolve o registro da execução.
	Wait bool `json:"wait"`
}

type StopRequestBody struct {
	ProfileID string `json:"profile_id"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("api: erro ao escrever resposta")
	}
}

// decodeBody aceita corpo vazio.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// TriggerRun dispara uma execução manual. Com wait=true responde com o RunRecord final.
func TriggerRun(service RunScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var body RunRequestBody
		if err := decodeBody(r, &body); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", err.Error())
			return
		}
		if body.ProfileID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "profile_id é obrigatório", nil)
			return
		}

		req := optimizing.RunRequest{
			ProfileID: body.ProfileID,
			DryRun:    body.DryRun,
			Features:  body.Features,
		}

		if !body.Wait {
			if err := service.TriggerManualRun(req); err != nil {
				logger.WithError(err).Warn("Disparo manual recusado")
				apiErrors.WriteDomainError(w, err)
				return
			}

			writeJSON(w, http.StatusAccepted, map[string]any{
				"message":    "Execução iniciada",
				"profile_id": req.ProfileID,
				"dry_run":    req.DryRun,
			})
			return
		}

		// A execução segue mesmo se o cliente desconectar; a parada é feita por /v1/runs/stop.
		run, err := service.RunNow(context.WithoutCancel(r.Context()), req)
		if err != nil {
			logger.WithError(err).Error("Execução manual terminou com erro fatal")
			apiErrors.WriteError(w, apiErrors.CodeFor(err), err.Error(), run)
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}

func GetRunStatus(service RunScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.GetStatus())
	}
}

// GetLatestRun retorna a última execução, opcionalmente filtrada por ?profile_id=.
func GetLatestRun(service RunScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := r.URL.Query().Get("profile_id")

		run, err := service.LatestRun(r.Context(), profileID)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao consultar última execução")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar última execução", nil)
			return
		}
		if run == nil {
			apiErrors.WriteError(w, apiErrors.ErrNotFound, "Nenhuma execução encontrada", nil)
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}

// StopRuns pede a parada de emergência. Sem profile_id, para todas as execuções em andamento.
func StopRuns(service RunScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body StopRequestBody
		if err := decodeBody(r, &body); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", err.Error())
			return
		}

		stopped := service.StopRuns(body.ProfileID)
		writeJSON(w, http.StatusOK, map[string]any{
			"stopped":    stopped,
			"profile_id": body.ProfileID,
		})
	}
}
