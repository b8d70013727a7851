package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/triade-beauty/intake/internal/platform/httpx"
	"github.com/triade-beauty/intake/internal/platform/monday"
	"github.com/triade-beauty/intake/internal/services"
)

const maxTriadeRequestBody = 16 * 1024

// tokenQueryParam carries the access token on triade page requests.
const tokenQueryParam = "t"

// TriadeHandlers exposes the token-gated client update endpoints.
type TriadeHandlers struct {
	triade services.TriadeService
}

// NewTriadeHandlers constructs the triade handler set.
func NewTriadeHandlers(triade services.TriadeService) *TriadeHandlers {
	return &TriadeHandlers{triade: triade}
}

// Routes registers the triade endpoints beneath /clients.
func (h *TriadeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/{clientID}/triade", h.view)
	r.Post("/{clientID}/triade", h.update)
	r.Post("/{clientID}/triade-links", h.mintLink)
}

func (h *TriadeHandlers) view(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.triade == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "triade service not available", http.StatusServiceUnavailable))
		return
	}

	clientID, token, ok := triadeParams(ctx, w, r)
	if !ok {
		return
	}

	view, err := h.triade.View(ctx, clientID, token)
	if err != nil {
		writeTriadeError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"data": view})
}

func (h *TriadeHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.triade == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "triade service not available", http.StatusServiceUnavailable))
		return
	}

	clientID, token, ok := triadeParams(ctx, w, r)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxTriadeRequestBody)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		}
		return
	}

	var update services.TriadeUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	view, err := h.triade.Update(ctx, clientID, token, update)
	if err != nil {
		writeTriadeError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message": "Client record updated",
		"data":    view,
	})
}

func (h *TriadeHandlers) mintLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.triade == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "triade service not available", http.StatusServiceUnavailable))
		return
	}

	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	if clientID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "client id is required", http.StatusBadRequest))
		return
	}

	link, err := h.triade.MintLink(ctx, clientID)
	if err != nil {
		writeTriadeError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"data": link})
}

func triadeParams(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, string, bool) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	if clientID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "client id is required", http.StatusBadRequest))
		return "", "", false
	}
	token := strings.TrimSpace(r.URL.Query().Get(tokenQueryParam))
	if token == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "access token is required", http.StatusBadRequest))
		return "", "", false
	}
	return clientID, token, true
}

func writeTriadeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTriadeTokenInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("forbidden", "access token was rejected", http.StatusForbidden))
	case errors.Is(err, services.ErrTriadeClientNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("client_not_found", "no client record for the given id", http.StatusNotFound))
	case errors.Is(err, services.ErrTriadeInvalidRequest):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case monday.IsUpstreamUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("board_unavailable", "board API is unavailable", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process triade request", http.StatusInternalServerError))
	}
}
