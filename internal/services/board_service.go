package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/triade-beauty/intake/internal/domain"
)

var errBoardGatewayRequired = errors.New("board: gateway is required")

// ErrBoardInvalidRequest indicates a missing or unusable board reference.
var ErrBoardInvalidRequest = errors.New("board: invalid request")

// BoardServiceDeps bundles collaborators required to construct a board service.
type BoardServiceDeps struct {
	Board BoardGateway
}

type boardService struct {
	board BoardGateway
}

var _ BoardService = (*boardService)(nil)

// NewBoardService wires dependencies into a BoardService implementation.
func NewBoardService(deps BoardServiceDeps) (BoardService, error) {
	if deps.Board == nil {
		return nil, errBoardGatewayRequired
	}
	return &boardService{board: deps.Board}, nil
}

// ListItems returns the item listing of boardID. When columnID names a
// board-relation column, the listing comes from the connected board instead,
// so pickers show the rows the relation can actually link to.
func (s *boardService) ListItems(ctx context.Context, boardID int64, columnID string) (Board, error) {
	if ctx == nil {
		return Board{}, errors.New("board: context is required")
	}
	if boardID <= 0 {
		return Board{}, fmt.Errorf("%w: board id is required", ErrBoardInvalidRequest)
	}

	targetID := boardID
	if columnID = strings.TrimSpace(columnID); columnID != "" {
		resolved, err := s.resolveRelationTarget(ctx, boardID, columnID)
		if err != nil {
			return Board{}, err
		}
		targetID = resolved
	}

	board, err := s.board.Board(ctx, targetID)
	if err != nil {
		return Board{}, fmt.Errorf("board: list items: %w", err)
	}
	return board, nil
}

func (s *boardService) resolveRelationTarget(ctx context.Context, boardID int64, columnID string) (int64, error) {
	columns, err := s.board.Columns(ctx, boardID)
	if err != nil {
		return 0, fmt.Errorf("board: load columns: %w", err)
	}

	for _, col := range columns {
		if col.ID != columnID {
			continue
		}
		if col.Type != domain.ColumnTypeBoardRelation {
			return boardID, nil
		}
		target, ok := relationBoardID(col.SettingsStr)
		if !ok {
			return 0, fmt.Errorf("%w: column %s has no connected board", ErrBoardInvalidRequest, columnID)
		}
		return target, nil
	}
	return 0, fmt.Errorf("%w: column %s not found on board", ErrBoardInvalidRequest, columnID)
}

func relationBoardID(settings string) (int64, bool) {
	var parsed struct {
		BoardIDs []int64 `json:"boardIds"`
	}
	if err := json.Unmarshal([]byte(settings), &parsed); err != nil {
		return 0, false
	}
	if len(parsed.BoardIDs) == 0 {
		return 0, false
	}
	return parsed.BoardIDs[0], true
}
