package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/triade-beauty/intake/internal/domain"
	"github.com/triade-beauty/intake/internal/platform/httpx"
	"github.com/triade-beauty/intake/internal/services"
)

const maxFormConfigRequestBody = 32 * 1024

// FormConfigHandlers exposes the saved form configuration endpoints.
type FormConfigHandlers struct {
	configs services.FormConfigService
}

// NewFormConfigHandlers constructs the form configuration handler set.
func NewFormConfigHandlers(configs services.FormConfigService) *FormConfigHandlers {
	return &FormConfigHandlers{configs: configs}
}

// Routes registers the form configuration endpoints.
func (h *FormConfigHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Get("/{name}", h.get)
	r.Delete("/{name}", h.delete)
}

type saveFormConfigRequest struct {
	Name   string            `json:"name"`
	Config domain.FormConfig `json:"config"`
}

func (h *FormConfigHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.configs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "form config service not available", http.StatusServiceUnavailable))
		return
	}

	configs, err := h.configs.List(ctx)
	if err != nil {
		writeFormConfigError(ctx, w, err)
		return
	}
	if configs == nil {
		configs = []services.SavedFormConfig{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"data": configs})
}

func (h *FormConfigHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.configs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "form config service not available", http.StatusServiceUnavailable))
		return
	}

	config, err := h.configs.Get(ctx, chi.URLParam(r, "name"))
	if err != nil {
		writeFormConfigError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"data": config})
}

func (h *FormConfigHandlers) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.configs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "form config service not available", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxFormConfigRequestBody)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		}
		return
	}

	var req saveFormConfigRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	overwrite, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("overwrite")))

	saved, err := h.configs.Save(ctx, services.SavedFormConfig{Name: req.Name, Config: req.Config}, overwrite)
	if err != nil {
		writeFormConfigError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if overwrite {
		status = http.StatusOK
	}
	writeJSONResponse(w, status, map[string]any{
		"message": "Form configuration saved",
		"data":    saved,
	})
}

func (h *FormConfigHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.configs == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "form config service not available", http.StatusServiceUnavailable))
		return
	}

	if err := h.configs.Delete(ctx, chi.URLParam(r, "name")); err != nil {
		writeFormConfigError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"message": "Form configuration deleted"})
}

func writeFormConfigError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrFormConfigInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrFormConfigNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("config_not_found", "no form configuration with the given name", http.StatusNotFound))
	case errors.Is(err, services.ErrFormConfigConflict):
		httpx.WriteError(ctx, w, httpx.NewError("config_exists", "a form configuration with the given name already exists", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process form configuration request", http.StatusInternalServerError))
	}
}
