package handler

import (
	"net/http"

	"github.com/vfg2006/ppc-optimizer/internal/api/handler/router"
	"github.com/vfg2006/ppc-optimizer/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics(handler http.Handler) []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: handler,
		},
	}
}

func Runs(service RunScheduler) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/runs",
			Method:      http.MethodPost,
			Handler:     TriggerRun(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.OperatorOnly()},
		},
		{
			Path:        "/v1/runs/status",
			Method:      http.MethodGet,
			Handler:     GetRunStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/runs/latest",
			Method:      http.MethodGet,
			Handler:     GetLatestRun(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/runs/stop",
			Method:      http.MethodPost,
			Handler:     StopRuns(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.OperatorOnly()},
		},
	}
}

func OAuth(checker OAuthChecker) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/oauth/check",
			Method:      http.MethodGet,
			Handler:     CheckOAuth(checker),
			Middlewares: []func(http.Handler) http.Handler{middleware.OperatorOnly()},
		},
	}
}
