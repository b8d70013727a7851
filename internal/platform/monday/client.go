package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/triade-beauty/intake/internal/domain"
)

const (
	// DefaultEndpoint is the production GraphQL endpoint.
	DefaultEndpoint = "https://api.monday.com/v2"

	defaultTimeout = 30 * time.Second
)

var (
	errTokenRequired   = errors.New("monday: api token is required")
	errBoardIDRequired = errors.New("monday: board id is required")
	errItemIDRequired  = errors.New("monday: item id is required")
	errNameRequired    = errors.New("monday: item name is required")

	// ErrItemNotFound is returned when a lookup by id matches no item.
	ErrItemNotFound = errors.New("monday: item not found")
	// ErrBoardNotFound is returned when a board query matches no board.
	ErrBoardNotFound = errors.New("monday: board not found")
)

var tracer = otel.Tracer("github.com/triade-beauty/intake/internal/platform/monday")

// Client is a thin GraphQL client for the Monday.com v2 API. All board and
// item traffic in the service funnels through it.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// Option customises client behaviour.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint (useful for tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout overrides the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a Monday.com API client.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errTokenRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   DefaultEndpoint,
		token:      token,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Columns fetches the column schema of a board.
func (c *Client) Columns(ctx context.Context, boardID int64) ([]domain.BoardColumn, error) {
	if boardID <= 0 {
		return nil, errBoardIDRequired
	}

	const query = `query ($boardId: ID!) {
  boards(ids: [$boardId]) {
    columns {
      id
      title
      type
      settings_str
    }
  }
}`

	var payload struct {
		Boards []struct {
			Columns []struct {
				ID          string `json:"id"`
				Title       string `json:"title"`
				Type        string `json:"type"`
				SettingsStr string `json:"settings_str"`
			} `json:"columns"`
		} `json:"boards"`
	}
	err := c.execute(ctx, "monday.columns", query, map[string]any{"boardId": formatBoardID(boardID)}, &payload)
	if err != nil {
		return nil, err
	}
	if len(payload.Boards) == 0 || len(payload.Boards[0].Columns) == 0 {
		return nil, ErrBoardNotFound
	}

	columns := make([]domain.BoardColumn, 0, len(payload.Boards[0].Columns))
	for _, col := range payload.Boards[0].Columns {
		columns = append(columns, domain.BoardColumn{
			ID:          col.ID,
			Title:       col.Title,
			Type:        col.Type,
			SettingsStr: col.SettingsStr,
		})
	}
	return columns, nil
}

// Board fetches a board's name and its items. Item listings use the
// items_page connection and return the first page only; the relation boards
// this serves stay well under one page.
func (c *Client) Board(ctx context.Context, boardID int64) (domain.Board, error) {
	if boardID <= 0 {
		return domain.Board{}, errBoardIDRequired
	}

	const query = `query ($boardId: ID!) {
  boards(ids: [$boardId]) {
    id
    name
    items_page {
      items {
        id
        name
      }
    }
  }
}`

	var payload struct {
		Boards []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			ItemsPage struct {
				Items []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"items"`
			} `json:"items_page"`
		} `json:"boards"`
	}
	err := c.execute(ctx, "monday.board", query, map[string]any{"boardId": formatBoardID(boardID)}, &payload)
	if err != nil {
		return domain.Board{}, err
	}
	if len(payload.Boards) == 0 {
		return domain.Board{}, ErrBoardNotFound
	}

	board := domain.Board{
		ID:   payload.Boards[0].ID,
		Name: payload.Boards[0].Name,
	}
	for _, item := range payload.Boards[0].ItemsPage.Items {
		board.Items = append(board.Items, domain.BoardItem{ID: item.ID, Name: item.Name})
	}
	return board, nil
}

// Item fetches one item with its column values, text and raw value included.
func (c *Client) Item(ctx context.Context, itemID string) (domain.Item, error) {
	if strings.TrimSpace(itemID) == "" {
		return domain.Item{}, errItemIDRequired
	}

	const query = `query ($itemId: ID!) {
  items(ids: [$itemId]) {
    id
    name
    column_values {
      id
      title
      type
      text
      value
    }
  }
}`

	var payload struct {
		Items []struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			ColumnValues []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				Type  string `json:"type"`
				Text  string `json:"text"`
				Value string `json:"value"`
			} `json:"column_values"`
		} `json:"items"`
	}
	err := c.execute(ctx, "monday.item", query, map[string]any{"itemId": itemID}, &payload)
	if err != nil {
		return domain.Item{}, err
	}
	if len(payload.Items) == 0 {
		return domain.Item{}, ErrItemNotFound
	}

	item := domain.Item{
		ID:   payload.Items[0].ID,
		Name: payload.Items[0].Name,
	}
	for _, cv := range payload.Items[0].ColumnValues {
		item.Columns = append(item.Columns, domain.ItemColumnValue{
			ID:    cv.ID,
			Title: cv.Title,
			Type:  cv.Type,
			Text:  cv.Text,
			Value: cv.Value,
		})
	}
	return item, nil
}

// CreateItem creates a board item. columnValues is marshalled and passed as a
// JSON string: the API's JSON! scalar expects the column map double encoded.
func (c *Client) CreateItem(ctx context.Context, boardID int64, itemName string, columnValues any) (string, error) {
	if boardID <= 0 {
		return "", errBoardIDRequired
	}
	if strings.TrimSpace(itemName) == "" {
		return "", errNameRequired
	}

	encoded, err := encodeColumnValues(columnValues)
	if err != nil {
		return "", err
	}

	const mutation = `mutation ($boardId: ID!, $itemName: String!, $columnValues: JSON!) {
  create_item (
    board_id: $boardId
    item_name: $itemName
    column_values: $columnValues
  ) {
    id
  }
}`

	var payload struct {
		CreateItem struct {
			ID string `json:"id"`
		} `json:"create_item"`
	}
	err = c.execute(ctx, "monday.create_item", mutation, map[string]any{
		"boardId":      formatBoardID(boardID),
		"itemName":     itemName,
		"columnValues": encoded,
	}, &payload)
	if err != nil {
		return "", err
	}
	return payload.CreateItem.ID, nil
}

// ChangeColumnValues overwrites column values on an existing item. Columns
// absent from columnValues are left untouched.
func (c *Client) ChangeColumnValues(ctx context.Context, boardID int64, itemID string, columnValues any) error {
	if boardID <= 0 {
		return errBoardIDRequired
	}
	if strings.TrimSpace(itemID) == "" {
		return errItemIDRequired
	}

	encoded, err := encodeColumnValues(columnValues)
	if err != nil {
		return err
	}

	const mutation = `mutation ($boardId: ID!, $itemId: ID!, $columnValues: JSON!) {
  change_column_values (
    board_id: $boardId
    item_id: $itemId
    column_values: $columnValues
  ) {
    id
  }
}`

	var payload struct {
		ChangeColumnValues struct {
			ID string `json:"id"`
		} `json:"change_column_values"`
	}
	return c.execute(ctx, "monday.change_column_values", mutation, map[string]any{
		"boardId":      formatBoardID(boardID),
		"itemId":       itemID,
		"columnValues": encoded,
	}, &payload)
}

// formatBoardID renders a board id for the GraphQL ID! scalar.
func formatBoardID(boardID int64) string {
	return strconv.FormatInt(boardID, 10)
}

// encodeColumnValues produces the JSON string the JSON! scalar expects.
// []byte and string inputs are assumed to be encoded already.
func encodeColumnValues(columnValues any) (string, error) {
	switch v := columnValues.(type) {
	case nil:
		return "{}", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("monday: encode column values: %w", err)
		}
		return string(raw), nil
	}
}

func (c *Client) execute(ctx context.Context, spanName, query string, variables map[string]any, out any) error {
	ctx, span := tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("monday.endpoint", c.endpoint))

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("monday: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("monday: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &APIError{Op: spanName, Err: err, transport: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &APIError{Op: spanName, Err: err, transport: true}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Op: spanName, StatusCode: resp.StatusCode}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("monday: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		apiErr := &APIError{Op: spanName, StatusCode: resp.StatusCode, Messages: messages}
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("monday: decode data: %w", err)
	}
	return nil
}
