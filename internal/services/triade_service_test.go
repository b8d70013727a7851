package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	domain "github.com/triade-beauty/intake/internal/domain"
	"github.com/triade-beauty/intake/internal/platform/monday"
)

const testAccessToken = "01JC0VN8Y8F7T2Q9RM4E5XK6HDab12cd34ef"

func clientItem() domain.Item {
	return domain.Item{
		ID:   "4567890123",
		Name: "Teresa Martins",
		Columns: []domain.ItemColumnValue{
			{ID: "text7", Title: "Beauty Venue", Type: "text", Text: "Quinta do Torneiro"},
			{ID: "numbers", Title: "Travelling Fee", Type: "numbers", Text: "80"},
			{ID: "status_av", Title: "Availability", Type: "status", Text: "Maybe"},
		},
	}
}

func newTestTriadeService(t *testing.T, deps TriadeServiceDeps) TriadeService {
	t.Helper()
	svc, err := NewTriadeService(deps)
	if err != nil {
		t.Fatalf("NewTriadeService: %v", err)
	}
	return svc
}

func TestTriadeViewReadsClientRecord(t *testing.T) {
	gateway := &stubBoardGateway{item: clientItem()}
	svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 987654321})

	view, err := svc.View(context.Background(), "4567890123", testAccessToken)
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	if view.ItemName != "Teresa Martins" || view.BeautyVenue != "Quinta do Torneiro" {
		t.Fatalf("view = %+v", view)
	}
	if view.TravelFee != 80 {
		t.Fatalf("travel fee = %v", view.TravelFee)
	}
	if view.Availability != "Maybe" {
		t.Fatalf("availability = %q", view.Availability)
	}
}

func TestTriadeViewDefaults(t *testing.T) {
	gateway := &stubBoardGateway{item: domain.Item{ID: "1", Name: "Lola"}}
	svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 1})

	view, err := svc.View(context.Background(), "1", testAccessToken)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Availability != "Available" || view.TravelFee != 0 {
		t.Fatalf("view = %+v", view)
	}
}

func TestTriadeShortTokenRejectedBeforeBoardCall(t *testing.T) {
	gateway := &stubBoardGateway{itemErr: errors.New("should not be called")}
	svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 1})

	if _, err := svc.View(context.Background(), "1", "tooshort"); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid", err)
	}
	if _, err := svc.Update(context.Background(), "1", strings.Repeat("x", 29), TriadeUpdate{}); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid", err)
	}
}

func TestTriadeClientNotFound(t *testing.T) {
	gateway := &stubBoardGateway{itemErr: monday.ErrItemNotFound}
	svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 1})

	if _, err := svc.View(context.Background(), "missing", testAccessToken); !errors.Is(err, ErrTriadeClientNotFound) {
		t.Fatalf("err = %v, want ErrTriadeClientNotFound", err)
	}
}

func TestTriadeUpdateWritesColumns(t *testing.T) {
	gateway := &stubBoardGateway{item: clientItem()}
	svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 987654321})

	view, err := svc.Update(context.Background(), "4567890123", testAccessToken, TriadeUpdate{
		BeautyVenue:  "Palacio Estoril",
		TravelFee:    120,
		Availability: "Not available",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if gateway.changedBoardID != 987654321 || gateway.changedItemID != "4567890123" {
		t.Fatalf("change call = board %d item %q", gateway.changedBoardID, gateway.changedItemID)
	}

	encoded, ok := gateway.changedValues.([]byte)
	if !ok {
		t.Fatalf("changed values type = %T", gateway.changedValues)
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &values); err != nil {
		t.Fatalf("decode changed values: %v", err)
	}
	if string(values["text7"]) != `"Palacio Estoril"` {
		t.Fatalf("venue value = %s", values["text7"])
	}
	if string(values["numbers"]) != "120" {
		t.Fatalf("fee value = %s", values["numbers"])
	}
	var availability struct {
		Label string `json:"label"`
	}
	if err := json.Unmarshal(values["status_av"], &availability); err != nil || availability.Label != "Not available" {
		t.Fatalf("availability value = %s", values["status_av"])
	}

	if view.BeautyVenue != "Palacio Estoril" || view.TravelFee != 120 || view.Availability != "Not available" {
		t.Fatalf("view = %+v", view)
	}
}

func TestTriadeUpdateAvailabilityAsTextWhenColumnIsNotStatus(t *testing.T) {
	item := clientItem()
	item.Columns[2].Type = "text"
	gateway := &stubBoardGateway{item: item}
	svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 1})

	if _, err := svc.Update(context.Background(), "4567890123", testAccessToken, TriadeUpdate{
		BeautyVenue:  "Palacio Estoril",
		Availability: "Maybe",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(gateway.changedValues.([]byte), &values); err != nil {
		t.Fatalf("decode changed values: %v", err)
	}
	if string(values["status_av"]) != `"Maybe"` {
		t.Fatalf("availability value = %s", values["status_av"])
	}
}

func TestTriadeUpdateValidation(t *testing.T) {
	cases := []struct {
		name   string
		update TriadeUpdate
	}{
		{"missing venue", TriadeUpdate{TravelFee: 10, Availability: "Available"}},
		{"negative fee", TriadeUpdate{BeautyVenue: "V", TravelFee: -1, Availability: "Available"}},
		{"unknown availability", TriadeUpdate{BeautyVenue: "V", Availability: "Sometimes"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &stubBoardGateway{item: clientItem()}
			svc := newTestTriadeService(t, TriadeServiceDeps{Board: gateway, ContactsBoardID: 1})

			if _, err := svc.Update(context.Background(), "1", testAccessToken, tc.update); !errors.Is(err, ErrTriadeInvalidRequest) {
				t.Fatalf("err = %v, want ErrTriadeInvalidRequest", err)
			}
			if gateway.changedItemID != "" {
				t.Fatal("board written on invalid update")
			}
		})
	}
}

func TestTriadeMintLinkRandomToken(t *testing.T) {
	svc := newTestTriadeService(t, TriadeServiceDeps{
		Board:           &stubBoardGateway{},
		ContactsBoardID: 1,
		LinkBaseURL:     "https://forms.example.com/",
	})

	link, err := svc.MintLink(context.Background(), "4567890123")
	if err != nil {
		t.Fatalf("MintLink: %v", err)
	}
	if len(link.Token) < 30 {
		t.Fatalf("token length = %d, want at least 30", len(link.Token))
	}
	if link.URL != "https://forms.example.com/clients/4567890123/triade?t="+link.Token {
		t.Fatalf("url = %q", link.URL)
	}

	second, err := svc.MintLink(context.Background(), "4567890123")
	if err != nil {
		t.Fatalf("MintLink: %v", err)
	}
	if second.Token == link.Token {
		t.Fatal("tokens are not unique")
	}
}

func TestTriadeSignedTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	gateway := &stubBoardGateway{item: clientItem()}
	svc := newTestTriadeService(t, TriadeServiceDeps{
		Board:               gateway,
		ContactsBoardID:     1,
		SigningSecret:       "a-long-signing-secret-for-tests",
		RequireSignedTokens: true,
		Clock:               func() time.Time { return now },
	})

	link, err := svc.MintLink(context.Background(), "4567890123")
	if err != nil {
		t.Fatalf("MintLink: %v", err)
	}

	if _, err := svc.View(context.Background(), "4567890123", link.Token); err != nil {
		t.Fatalf("View with minted token: %v", err)
	}

	if _, err := svc.View(context.Background(), "9999999999", link.Token); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid for wrong client", err)
	}

	if _, err := svc.View(context.Background(), "4567890123", testAccessToken); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid for unsigned token", err)
	}
}

func TestTriadeSignedTokenExpiry(t *testing.T) {
	minted := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := minted

	svc := newTestTriadeService(t, TriadeServiceDeps{
		Board:               &stubBoardGateway{item: clientItem()},
		ContactsBoardID:     1,
		SigningSecret:       "a-long-signing-secret-for-tests",
		RequireSignedTokens: true,
		Clock:               func() time.Time { return now },
	})

	link, err := svc.MintLink(context.Background(), "4567890123")
	if err != nil {
		t.Fatalf("MintLink: %v", err)
	}

	now = minted.Add(31 * 24 * time.Hour)
	if _, err := svc.View(context.Background(), "4567890123", link.Token); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid after expiry", err)
	}
}

func TestTriadeTokenRequiresExpiry(t *testing.T) {
	svc := newTestTriadeService(t, TriadeServiceDeps{
		Board:               &stubBoardGateway{item: clientItem()},
		ContactsBoardID:     1,
		SigningSecret:       "a-long-signing-secret-for-tests",
		RequireSignedTokens: true,
	})

	eternal, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "4567890123"}).
		SignedString([]byte("a-long-signing-secret-for-tests"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.View(context.Background(), "4567890123", eternal); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid for token without expiry", err)
	}
}

func TestTriadeTokenRejectsWrongSigningMethod(t *testing.T) {
	svc := newTestTriadeService(t, TriadeServiceDeps{
		Board:               &stubBoardGateway{item: clientItem()},
		ContactsBoardID:     1,
		SigningSecret:       "a-long-signing-secret-for-tests",
		RequireSignedTokens: true,
	})

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "4567890123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.View(context.Background(), "4567890123", unsigned); !errors.Is(err, ErrTriadeTokenInvalid) {
		t.Fatalf("err = %v, want ErrTriadeTokenInvalid", err)
	}
}

func TestNewTriadeServiceValidatesDeps(t *testing.T) {
	if _, err := NewTriadeService(TriadeServiceDeps{ContactsBoardID: 1}); err == nil {
		t.Fatal("expected error without board gateway")
	}
	if _, err := NewTriadeService(TriadeServiceDeps{Board: &stubBoardGateway{}}); err == nil {
		t.Fatal("expected error without contacts board id")
	}
	if _, err := NewTriadeService(TriadeServiceDeps{Board: &stubBoardGateway{}, ContactsBoardID: 1, RequireSignedTokens: true}); err == nil {
		t.Fatal("expected error when signed tokens lack a secret")
	}
}
