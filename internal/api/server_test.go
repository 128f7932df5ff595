package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/amazonclient"
	amazondomain "github.com/vfg2006/ppc-optimizer/infrastructure/integrator/amazon/domain"
	"github.com/vfg2006/ppc-optimizer/internal/api/handler/mocks"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/authenticating"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
	"github.com/vfg2006/ppc-optimizer/pkg/apiErrors"
)

type fixture struct {
	handler  http.Handler
	runs     *mocks.MockRunScheduler
	oauth    *mocks.MockOAuthChecker
	operator string
	viewer   string
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Auth.Secret = "segredo-de-teste"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	auth := authenticating.NewService(cfg)
	operator, err := auth.GenerateToken("operador", domain.RoleOperator, time.Hour)
	require.NoError(t, err)
	viewer, err := auth.GenerateToken("painel", domain.RoleViewer, time.Hour)
	require.NoError(t, err)

	f := &fixture{
		runs:     mocks.NewMockRunScheduler(ctrl),
		oauth:    mocks.NewMockOAuthChecker(ctrl),
		operator: operator,
		viewer:   viewer,
	}

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ppc_runs_total 0\n"))
	})
	f.handler = NewHandler(cfg, f.runs, f.oauth, auth, metricsHandler)
	return f
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	var apiErr apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ppc_runs_total")
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	t.Run("sem token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/runs/status", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidToken, decodeError(t, rec).Code)
	})

	t.Run("token inválido", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/runs/status", "abc", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("visualizador não dispara execução", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/runs", f.viewer, map[string]any{"profile_id": "111"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apiErrors.ErrInsufficientPrivilege, decodeError(t, rec).Code)
	})

	t.Run("rota desconhecida", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/nada", f.operator, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTriggerRun(t *testing.T) {
	t.Run("assíncrono", func(t *testing.T) {
		f := newFixture(t)
		f.runs.EXPECT().TriggerManualRun(optimizing.RunRequest{
			ProfileID: "111",
			DryRun:    true,
			Features:  []string{"bids", "negatives"},
		}).Return(nil)

		rec := f.do(http.MethodPost, "/v1/runs", f.operator, map[string]any{
			"profile_id": "111",
			"dry_run":    true,
			"features":   []string{"bids", "negatives"},
		})

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"profile_id":"111"`)
	})

	t.Run("perfil obrigatório", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/v1/runs", f.operator, map[string]any{"dry_run": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrMissingRequiredData, decodeError(t, rec).Code)
	})

	t.Run("corpo inválido", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+f.operator)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("execução em andamento", func(t *testing.T) {
		f := newFixture(t)
		f.runs.EXPECT().TriggerManualRun(gomock.Any()).Return(fmt.Errorf("%w: perfil 111", domain.ErrRunInProgress))

		rec := f.do(http.MethodPost, "/v1/runs", f.operator, map[string]any{"profile_id": "111"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apiErrors.ErrRunInProgress, decodeError(t, rec).Code)
	})

	t.Run("feature desconhecida", func(t *testing.T) {
		f := newFixture(t)
		f.runs.EXPECT().TriggerManualRun(gomock.Any()).Return(domain.NewValidationError("features", "feature desconhecida"))

		rec := f.do(http.MethodPost, "/v1/runs", f.operator, map[string]any{"profile_id": "111", "features": []string{"budget"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("síncrono devolve o registro", func(t *testing.T) {
		f := newFixture(t)
		started := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
		run := domain.NewRunRecord("run-1", "111", domain.TriggerManual, false, domain.AllFeatures, started)
		run.Finalize(domain.RunStatusCompleted, started.Add(time.Minute), nil)

		f.runs.EXPECT().RunNow(gomock.Any(), optimizing.RunRequest{ProfileID: "111"}).Return(run, nil)

		rec := f.do(http.MethodPost, "/v1/runs", f.operator, map[string]any{"profile_id": "111", "wait": true})
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.RunRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "run-1", got.ID)
		assert.Equal(t, domain.RunStatusCompleted, got.Status)
	})

	t.Run("síncrono com erro fatal", func(t *testing.T) {
		f := newFixture(t)
		run := domain.NewRunRecord("run-2", "111", domain.TriggerManual, false, domain.AllFeatures, time.Now())
		run.Finalize(domain.RunStatusFailed, time.Now(), fmt.Errorf("%w: invalid_grant", domain.ErrAuth))

		f.runs.EXPECT().RunNow(gomock.Any(), gomock.Any()).Return(run, fmt.Errorf("%w: invalid_grant", domain.ErrAuth))

		rec := f.do(http.MethodPost, "/v1/runs", f.operator, map[string]any{"profile_id": "111", "wait": true})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		apiErr := decodeError(t, rec)
		assert.Equal(t, apiErrors.ErrUpstreamAuth, apiErr.Code)
		assert.NotNil(t, apiErr.Details)
	})
}

func TestRunQueries(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		f := newFixture(t)
		f.runs.EXPECT().GetStatus().Return(map[string]any{"sync_running": false, "running_profiles": []string{"111"}})

		rec := f.do(http.MethodGet, "/v1/runs/status", f.viewer, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"sync_running":false,"running_profiles":["111"]}`, rec.Body.String())
	})

	t.Run("última execução", func(t *testing.T) {
		f := newFixture(t)
		run := domain.NewRunRecord("run-9", "222", domain.TriggerScheduled, true, domain.AllFeatures, time.Now())
		f.runs.EXPECT().LatestRun(gomock.Any(), "222").Return(run, nil)

		rec := f.do(http.MethodGet, "/v1/runs/latest?profile_id=222", f.viewer, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"run-9"`)
	})

	t.Run("nenhuma execução", func(t *testing.T) {
		f := newFixture(t)
		f.runs.EXPECT().LatestRun(gomock.Any(), "").Return(nil, nil)

		rec := f.do(http.MethodGet, "/v1/runs/latest", f.viewer, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("erro no banco", func(t *testing.T) {
		f := newFixture(t)
		f.runs.EXPECT().LatestRun(gomock.Any(), "").Return(nil, fmt.Errorf("conexão recusada"))

		rec := f.do(http.MethodGet, "/v1/runs/latest", f.viewer, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestStopRuns(t *testing.T) {
	f := newFixture(t)
	f.runs.EXPECT().StopRuns("111").Return(true)
	f.runs.EXPECT().StopRuns("").Return(false)

	rec := f.do(http.MethodPost, "/v1/runs/stop", f.operator, map[string]any{"profile_id": "111"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stopped":true,"profile_id":"111"}`, rec.Body.String())

	// Corpo vazio para todas as execuções.
	rec = f.do(http.MethodPost, "/v1/runs/stop", f.operator, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stopped":false,"profile_id":""}`, rec.Body.String())
}

func TestCheckOAuth(t *testing.T) {
	t.Run("credenciais válidas", func(t *testing.T) {
		f := newFixture(t)
		f.oauth.EXPECT().CheckOAuth(gomock.Any()).Return(&amazonclient.OAuthCheck{
			Token:    amazonclient.TokenStatus{HasToken: true},
			Profiles: []amazondomain.Profile{{ProfileID: 111, CountryCode: "US"}},
		}, nil)

		rec := f.do(http.MethodGet, "/v1/oauth/check", f.operator, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"has_token":true`)
		assert.Contains(t, rec.Body.String(), `"profileId":111`)
	})

	t.Run("refresh token rejeitado", func(t *testing.T) {
		f := newFixture(t)
		f.oauth.EXPECT().CheckOAuth(gomock.Any()).Return(nil, fmt.Errorf("%w: invalid_grant", domain.ErrAuth))

		rec := f.do(http.MethodGet, "/v1/oauth/check", f.operator, nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestNew_ExigeSegredo(t *testing.T) {
	_, err := New(&config.Config{}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, authenticating.ErrMissingSecret)
}
