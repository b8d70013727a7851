package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/triade-beauty/intake/internal/platform/httpx"
	"github.com/triade-beauty/intake/internal/platform/monday"
	"github.com/triade-beauty/intake/internal/services"
)

// BoardItemHandlers exposes board item listings for form pickers.
type BoardItemHandlers struct {
	boards services.BoardService
}

// NewBoardItemHandlers constructs the board item handler set.
func NewBoardItemHandlers(boards services.BoardService) *BoardItemHandlers {
	return &BoardItemHandlers{boards: boards}
}

// Routes registers the board item endpoints.
func (h *BoardItemHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
}

func (h *BoardItemHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.boards == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "board service not available", http.StatusServiceUnavailable))
		return
	}

	rawBoardID := strings.TrimSpace(r.URL.Query().Get("boardId"))
	if rawBoardID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "boardId query parameter is required", http.StatusBadRequest))
		return
	}
	boardID, err := strconv.ParseInt(rawBoardID, 10, 64)
	if err != nil || boardID <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "boardId must be a positive integer", http.StatusBadRequest))
		return
	}

	columnID := strings.TrimSpace(r.URL.Query().Get("columnId"))

	board, err := h.boards.ListItems(ctx, boardID, columnID)
	if err != nil {
		writeBoardError(ctx, w, err)
		return
	}

	items := make([]map[string]string, 0, len(board.Items))
	for _, item := range board.Items {
		items = append(items, map[string]string{"id": item.ID, "name": item.Name})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"boardId":   board.ID,
			"boardName": board.Name,
			"items":     items,
		},
	})
}

func writeBoardError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrBoardInvalidRequest):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, monday.ErrBoardNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("board_not_found", "no board with the given id", http.StatusNotFound))
	case monday.IsUpstreamUnavailable(err):
		httpx.WriteError(ctx, w, httpx.NewError("board_unavailable", "board API is unavailable", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to list board items", http.StatusInternalServerError))
	}
}
