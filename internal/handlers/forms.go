package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/triade-beauty/intake/internal/platform/httpx"
	"github.com/triade-beauty/intake/internal/platform/monday"
	"github.com/triade-beauty/intake/internal/services"
)

const maxFormRequestBody = 64 * 1024

// FormHandlers exposes the public form submission endpoint.
type FormHandlers struct {
	intake  services.IntakeService
	limiter rateLimiter
}

// FormHandlersOption customises the form handler set.
type FormHandlersOption func(*FormHandlers)

// WithSubmitRateLimit throttles submissions per client address. The endpoint
// is unauthenticated, so the limiter is the only brake on scripted posts.
func WithSubmitRateLimit(limit int, window time.Duration) FormHandlersOption {
	return func(h *FormHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// NewFormHandlers constructs the form handler set.
func NewFormHandlers(intake services.IntakeService, opts ...FormHandlersOption) *FormHandlers {
	h := &FormHandlers{intake: intake}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the form endpoints.
func (h *FormHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
}

func (h *FormHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.intake == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "intake service not available", http.StatusServiceUnavailable))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(clientAddress(r)) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many submissions; slow down", http.StatusTooManyRequests))
		return
	}

	body, err := readLimitedBody(r, maxFormRequestBody)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		}
		return
	}

	var submission services.Submission
	if err := json.Unmarshal(body, &submission); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	receipt, err := h.intake.Submit(ctx, submission)
	if err != nil {
		writeIntakeError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message": "Form submitted successfully",
		"data":    receipt,
	})
}

func writeIntakeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrIntakeInvalidSubmission):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_submission", err.Error(), http.StatusBadRequest))
	case errors.Is(err, monday.ErrBoardNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("board_not_found", "board not found or no columns available", http.StatusBadGateway))
	case monday.IsUpstreamUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("board_unavailable", "board API is unavailable", http.StatusBadGateway))
	case monday.IsAPIError(err):
		httpx.WriteError(ctx, w, httpx.NewError("board_rejected", "board API rejected the submission", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process submission", http.StatusInternalServerError))
	}
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
