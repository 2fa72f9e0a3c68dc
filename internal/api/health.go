// Copyright (c) 2026 Corkboard. All rights reserved.

package api

import (
	"log/slog"
	"net/http"

	"github.com/corkboard/corkboard/internal/platform/constants"
	"github.com/corkboard/corkboard/internal/platform/respond"
)

// HealthDependencies carries the dependency probes the readiness endpoint runs.
type HealthDependencies struct {
	CheckDatabase func() error
	CheckCache    func() error
}

/*
NewHealthHandlers builds the liveness and readiness endpoints.

Description: Liveness only proves the process is serving; readiness pings the
real backing services so an orchestrator stops routing traffic when postgres
or redis is gone.

Parameters:
  - deps: HealthDependencies
  - logger: *slog.Logger

Returns:
  - http.HandlerFunc: Liveness handler (/healthz)
  - http.HandlerFunc: Readiness handler (/readyz)
*/
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (http.HandlerFunc, http.HandlerFunc) {
	liveness := func(writer http.ResponseWriter, request *http.Request) {
		respond.JSON(writer, http.StatusOK, map[string]string{
			constants.FieldStatus:  "ok",
			constants.FieldApp:     constants.AppName,
			constants.FieldVersion: constants.AppVersion,
		})
	}

	readiness := func(writer http.ResponseWriter, request *http.Request) {
		checks := map[string]func() error{
			"database": deps.CheckDatabase,
			"cache":    deps.CheckCache,
		}

		results := make(map[string]string, len(checks))
		healthy := true

		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				healthy = false
				results[name] = "unavailable"
				logger.WarnContext(request.Context(), "readiness_check_failed",
					slog.String("dependency", name),
					slog.String("error", err.Error()),
				)
				continue
			}
			results[name] = "ok"
		}

		status := http.StatusOK
		overall := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		respond.JSON(writer, status, map[string]interface{}{
			constants.FieldStatus: overall,
			constants.FieldChecks: results,
		})
	}

	return liveness, readiness
}
