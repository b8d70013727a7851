package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"

	domain "github.com/triade-beauty/intake/internal/domain"
	"github.com/triade-beauty/intake/internal/mapping"
	"github.com/triade-beauty/intake/internal/platform/monday"
)

var (
	errTriadeBoardRequired   = errors.New("triade: board gateway is required")
	errTriadeBoardIDRequired = errors.New("triade: contacts board id is required")
	errTriadeSecretRequired  = errors.New("triade: signing secret is required when signed tokens are enforced")
)

// ErrTriadeInvalidRequest indicates a missing client id or a malformed update.
var ErrTriadeInvalidRequest = errors.New("triade: invalid request")

// ErrTriadeTokenInvalid indicates the access token was rejected before any
// board call was made.
var ErrTriadeTokenInvalid = errors.New("triade: invalid access token")

// ErrTriadeClientNotFound indicates no board item exists for the client id.
var ErrTriadeClientNotFound = errors.New("triade: client not found")

const (
	minAccessTokenLength = 30
	triadeLinkTTL        = 30 * 24 * time.Hour
	defaultAvailability  = "Available"
)

// Column title keywords used to locate the client-editable fields on the
// contacts board. Order matters: the first matching column wins.
var (
	venueKeywords        = []string{"venue", "beauty venue"}
	feeKeywords          = []string{"travel", "fee", "travelling fee"}
	availabilityKeywords = []string{"availability", "available"}
)

// AvailabilityOptions enumerates the values a client may pick.
var AvailabilityOptions = []string{"Available", "Maybe", "Not available"}

// TriadeServiceDeps bundles collaborators required to construct a triade service.
type TriadeServiceDeps struct {
	Board               BoardGateway
	ContactsBoardID     int64
	SigningSecret       string
	RequireSignedTokens bool
	LinkBaseURL         string
	Clock               func() time.Time
	TokenGenerator      func() (string, error)
}

type triadeService struct {
	board           BoardGateway
	contactsBoardID int64
	secret          []byte
	requireSigned   bool
	linkBase        string
	clock           func() time.Time
	newToken        func() (string, error)
}

var _ TriadeService = (*triadeService)(nil)

// NewTriadeService wires dependencies into a TriadeService implementation.
func NewTriadeService(deps TriadeServiceDeps) (TriadeService, error) {
	if deps.Board == nil {
		return nil, errTriadeBoardRequired
	}
	if deps.ContactsBoardID <= 0 {
		return nil, errTriadeBoardIDRequired
	}
	if deps.RequireSignedTokens && strings.TrimSpace(deps.SigningSecret) == "" {
		return nil, errTriadeSecretRequired
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newToken := deps.TokenGenerator
	if newToken == nil {
		newToken = randomAccessToken
	}

	var secret []byte
	if s := strings.TrimSpace(deps.SigningSecret); s != "" {
		secret = []byte(s)
	}

	return &triadeService{
		board:           deps.Board,
		contactsBoardID: deps.ContactsBoardID,
		secret:          secret,
		requireSigned:   deps.RequireSignedTokens,
		linkBase:        strings.TrimRight(strings.TrimSpace(deps.LinkBaseURL), "/"),
		clock: func() time.Time {
			return clock().UTC()
		},
		newToken: newToken,
	}, nil
}

func (s *triadeService) View(ctx context.Context, clientID, token string) (TriadeView, error) {
	if ctx == nil {
		return TriadeView{}, errors.New("triade: context is required")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return TriadeView{}, fmt.Errorf("%w: client id is required", ErrTriadeInvalidRequest)
	}
	if err := s.verifyToken(clientID, token); err != nil {
		return TriadeView{}, err
	}

	item, err := s.fetchClient(ctx, clientID)
	if err != nil {
		return TriadeView{}, err
	}
	return viewFromItem(item), nil
}

func (s *triadeService) Update(ctx context.Context, clientID, token string, update TriadeUpdate) (TriadeView, error) {
	if ctx == nil {
		return TriadeView{}, errors.New("triade: context is required")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return TriadeView{}, fmt.Errorf("%w: client id is required", ErrTriadeInvalidRequest)
	}
	if err := s.verifyToken(clientID, token); err != nil {
		return TriadeView{}, err
	}
	update.BeautyVenue = strings.TrimSpace(update.BeautyVenue)
	update.Availability = strings.TrimSpace(update.Availability)
	if err := validateTriadeUpdate(update); err != nil {
		return TriadeView{}, err
	}

	item, err := s.fetchClient(ctx, clientID)
	if err != nil {
		return TriadeView{}, err
	}

	values := mapping.ColumnValues{}
	if col, ok := item.ColumnByTitle(venueKeywords...); ok {
		values[col.ID] = mapping.PlainText(update.BeautyVenue)
	}
	if col, ok := item.ColumnByTitle(feeKeywords...); ok {
		values[col.ID] = mapping.Number(update.TravelFee)
	}
	if col, ok := item.ColumnByTitle(availabilityKeywords...); ok {
		if col.Type == domain.ColumnTypeStatus {
			values[col.ID] = mapping.StatusLabel{Label: update.Availability}
		} else {
			values[col.ID] = mapping.PlainText(update.Availability)
		}
	}
	if len(values) == 0 {
		return TriadeView{}, fmt.Errorf("%w: no editable columns on client record", ErrTriadeInvalidRequest)
	}

	encoded, err := values.Encode()
	if err != nil {
		return TriadeView{}, fmt.Errorf("triade: encode column values: %w", err)
	}
	if err := s.board.ChangeColumnValues(ctx, s.contactsBoardID, item.ID, encoded); err != nil {
		return TriadeView{}, fmt.Errorf("triade: update client record: %w", err)
	}

	return TriadeView{
		ItemID:       item.ID,
		ItemName:     item.Name,
		BeautyVenue:  update.BeautyVenue,
		TravelFee:    update.TravelFee,
		Availability: update.Availability,
	}, nil
}

func (s *triadeService) MintLink(ctx context.Context, clientID string) (TriadeLink, error) {
	if ctx == nil {
		return TriadeLink{}, errors.New("triade: context is required")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return TriadeLink{}, fmt.Errorf("%w: client id is required", ErrTriadeInvalidRequest)
	}

	var token string
	var err error
	if len(s.secret) > 0 {
		token, err = s.signedToken(clientID)
	} else {
		token, err = s.newToken()
	}
	if err != nil {
		return TriadeLink{}, fmt.Errorf("triade: mint token: %w", err)
	}

	return TriadeLink{
		ClientID: clientID,
		Token:    token,
		URL:      s.linkBase + "/clients/" + url.PathEscape(clientID) + "/triade?t=" + url.QueryEscape(token),
	}, nil
}

// verifyToken runs entirely locally so rejected tokens never cost a board call.
func (s *triadeService) verifyToken(clientID, token string) error {
	token = strings.TrimSpace(token)
	if len(token) < minAccessTokenLength {
		return fmt.Errorf("%w: token too short", ErrTriadeTokenInvalid)
	}
	if !s.requireSigned {
		return nil
	}

	// Time-based claims are checked by hand against the injected clock, so
	// the parser must not consult the wall clock itself.
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTriadeTokenInvalid, err)
	}
	now := s.clock()
	if !claims.VerifyExpiresAt(now, true) {
		return fmt.Errorf("%w: token expired", ErrTriadeTokenInvalid)
	}
	if !claims.VerifyNotBefore(now, false) {
		return fmt.Errorf("%w: token not yet valid", ErrTriadeTokenInvalid)
	}
	if !parsed.Valid || claims.Subject != clientID {
		return fmt.Errorf("%w: token does not match client", ErrTriadeTokenInvalid)
	}
	return nil
}

func (s *triadeService) signedToken(clientID string) (string, error) {
	now := s.clock()
	claims := jwt.RegisteredClaims{
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(triadeLinkTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *triadeService) fetchClient(ctx context.Context, clientID string) (domain.Item, error) {
	item, err := s.board.Item(ctx, clientID)
	if err != nil {
		if errors.Is(err, monday.ErrItemNotFound) {
			return domain.Item{}, fmt.Errorf("%w: %s", ErrTriadeClientNotFound, clientID)
		}
		return domain.Item{}, fmt.Errorf("triade: fetch client record: %w", err)
	}
	return item, nil
}

func viewFromItem(item domain.Item) TriadeView {
	view := TriadeView{
		ItemID:       item.ID,
		ItemName:     item.Name,
		Availability: defaultAvailability,
	}
	if col, ok := item.ColumnByTitle(venueKeywords...); ok {
		view.BeautyVenue = col.Text
	}
	if col, ok := item.ColumnByTitle(feeKeywords...); ok {
		if fee, err := strconv.ParseFloat(strings.TrimSpace(col.Text), 64); err == nil {
			view.TravelFee = fee
		}
	}
	if col, ok := item.ColumnByTitle(availabilityKeywords...); ok && strings.TrimSpace(col.Text) != "" {
		view.Availability = col.Text
	}
	return view
}

func validateTriadeUpdate(update TriadeUpdate) error {
	if update.BeautyVenue == "" {
		return fmt.Errorf("%w: beauty venue is required", ErrTriadeInvalidRequest)
	}
	if math.IsNaN(update.TravelFee) || math.IsInf(update.TravelFee, 0) || update.TravelFee < 0 {
		return fmt.Errorf("%w: travel fee must be a non-negative number", ErrTriadeInvalidRequest)
	}
	if !isAllowedAvailability(update.Availability) {
		return fmt.Errorf("%w: availability must be one of %s", ErrTriadeInvalidRequest, strings.Join(AvailabilityOptions, ", "))
	}
	return nil
}

func isAllowedAvailability(value string) bool {
	for _, opt := range AvailabilityOptions {
		if value == opt {
			return true
		}
	}
	return false
}

func randomAccessToken() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return ulid.Make().String() + hex.EncodeToString(buf), nil
}
