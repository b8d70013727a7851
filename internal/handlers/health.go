package handlers

import (
	"net/http"
	"time"

	domain "github.com/triade-beauty/intake/internal/domain"
	"github.com/triade-beauty/intake/internal/platform/httpx"
	"github.com/triade-beauty/intake/internal/services"
)

var startTime = time.Now()

// HealthHandlers exposes liveness and readiness endpoints.
type HealthHandlers struct {
	system services.SystemService
}

// NewHealthHandlers constructs the health handler set. A nil system service
// leaves /readyz reporting liveness only.
func NewHealthHandlers(system services.SystemService) *HealthHandlers {
	return &HealthHandlers{system: system}
}

// Healthz reports process liveness without touching any dependency.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    domain.HealthStatusOK,
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz evaluates dependency probes and reports 503 until all pass.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.system == nil {
		writeJSONResponse(w, http.StatusOK, map[string]any{"status": domain.HealthStatusOK})
		return
	}

	report, err := h.system.HealthReport(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("health_unavailable", "health report could not be produced", http.StatusServiceUnavailable))
		return
	}

	status := http.StatusOK
	if report.Status == domain.HealthStatusError {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]any, len(report.Checks))
	for name, check := range report.Checks {
		entry := map[string]any{
			"status":    check.Status,
			"latencyMs": check.Latency.Milliseconds(),
		}
		if check.Detail != "" {
			entry["detail"] = check.Detail
		}
		if check.Error != "" {
			entry["error"] = check.Error
		}
		checks[name] = entry
	}

	payload := map[string]any{
		"status":      report.Status,
		"checks":      checks,
		"uptime":      report.Uptime.String(),
		"generatedAt": report.GeneratedAt.Format(time.RFC3339),
	}
	if report.Version != "" {
		payload["version"] = report.Version
	}
	if report.Environment != "" {
		payload["environment"] = report.Environment
	}

	writeJSONResponse(w, status, payload)
}
