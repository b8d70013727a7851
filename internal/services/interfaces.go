package services

import (
	"context"
	"time"

	domain "github.com/triade-beauty/intake/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Submission         = domain.Submission
	FormConfig         = domain.FormConfig
	SavedFormConfig    = domain.SavedFormConfig
	Board              = domain.Board
	BoardColumn        = domain.BoardColumn
	BoardItem          = domain.BoardItem
	Item               = domain.Item
	SystemHealthReport = domain.SystemHealthReport
)

// BoardGateway abstracts the Monday.com GraphQL API consumed by the services layer.
type BoardGateway interface {
	Columns(ctx context.Context, boardID int64) ([]domain.BoardColumn, error)
	Board(ctx context.Context, boardID int64) (domain.Board, error)
	Item(ctx context.Context, itemID string) (domain.Item, error)
	CreateItem(ctx context.Context, boardID int64, name string, columnValues any) (string, error)
	ChangeColumnValues(ctx context.Context, boardID int64, itemID string, columnValues any) error
}

// SubmissionEventMessage is published after a submission lands on the board.
type SubmissionEventMessage struct {
	ItemID     string    `json:"itemId"`
	BoardID    string    `json:"boardId"`
	FormType   string    `json:"formType"`
	ItemName   string    `json:"itemName"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// SubmissionNotifier fans out submission events to downstream consumers. The
// returned string is the broker's message id.
type SubmissionNotifier interface {
	PublishSubmissionEvent(ctx context.Context, msg SubmissionEventMessage) (string, error)
}

// SubmissionReceipt reports where a processed submission ended up.
type SubmissionReceipt struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	BoardID  int64  `json:"boardId"`
}

// IntakeService maps form submissions onto the configured Monday board.
type IntakeService interface {
	Submit(ctx context.Context, submission Submission) (SubmissionReceipt, error)
}

// TriadeView is the client-facing slice of a contacts board item.
type TriadeView struct {
	ItemID       string  `json:"itemId"`
	ItemName     string  `json:"itemName"`
	BeautyVenue  string  `json:"beautyVenue"`
	TravelFee    float64 `json:"travelFee"`
	Availability string  `json:"availability"`
}

// TriadeUpdate carries the fields a client may change through the triade
// page. The field names are the triade page's wire contract; the m-prefixed
// tags are what the hosted page posts.
type TriadeUpdate struct {
	BeautyVenue  string  `json:"beautyVenue"`
	TravelFee    float64 `json:"mTravelFee"`
	Availability string  `json:"mAvailability"`
}

// TriadeLink is a minted client access link together with its token.
type TriadeLink struct {
	ClientID string `json:"clientId"`
	Token    string `json:"token"`
	URL      string `json:"url"`
}

// TriadeService serves the token-gated client update flow.
type TriadeService interface {
	View(ctx context.Context, clientID, token string) (TriadeView, error)
	Update(ctx context.Context, clientID, token string, update TriadeUpdate) (TriadeView, error)
	MintLink(ctx context.Context, clientID string) (TriadeLink, error)
}

// FormConfigService manages saved form configurations.
type FormConfigService interface {
	List(ctx context.Context) ([]SavedFormConfig, error)
	Get(ctx context.Context, name string) (SavedFormConfig, error)
	Save(ctx context.Context, config SavedFormConfig, overwrite bool) (SavedFormConfig, error)
	Delete(ctx context.Context, name string) error
}

// BoardService lists items for pickers, following board-relation columns when asked.
type BoardService interface {
	ListItems(ctx context.Context, boardID int64, columnID string) (Board, error)
}

// SystemService exposes operational utilities such as health reporting.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}
