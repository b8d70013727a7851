package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/triade-beauty/intake/internal/services"
)

type stubTriadeService struct {
	viewFunc   func(ctx context.Context, clientID, token string) (services.TriadeView, error)
	updateFunc func(ctx context.Context, clientID, token string, update services.TriadeUpdate) (services.TriadeView, error)
	mintFunc   func(ctx context.Context, clientID string) (services.TriadeLink, error)
}

func (s *stubTriadeService) View(ctx context.Context, clientID, token string) (services.TriadeView, error) {
	if s.viewFunc != nil {
		return s.viewFunc(ctx, clientID, token)
	}
	return services.TriadeView{}, nil
}

func (s *stubTriadeService) Update(ctx context.Context, clientID, token string, update services.TriadeUpdate) (services.TriadeView, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, clientID, token, update)
	}
	return services.TriadeView{}, nil
}

func (s *stubTriadeService) MintLink(ctx context.Context, clientID string) (services.TriadeLink, error) {
	if s.mintFunc != nil {
		return s.mintFunc(ctx, clientID)
	}
	return services.TriadeLink{}, nil
}

func newTriadeRouter(svc services.TriadeService) chi.Router {
	r := chi.NewRouter()
	NewTriadeHandlers(svc).Routes(r)
	return r
}

func TestTriadeViewEndpoint(t *testing.T) {
	svc := &stubTriadeService{
		viewFunc: func(ctx context.Context, clientID, token string) (services.TriadeView, error) {
			if clientID != "4567890123" || token != "a-token-that-is-long-enough-to-pass" {
				t.Fatalf("params = %q %q", clientID, token)
			}
			return services.TriadeView{ItemID: clientID, ItemName: "Teresa", BeautyVenue: "Quinta", TravelFee: 80, Availability: "Maybe"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/4567890123/triade?t=a-token-that-is-long-enough-to-pass", nil)
	rr := httptest.NewRecorder()
	newTriadeRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Data services.TriadeView `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Data.ItemName != "Teresa" || payload.Data.TravelFee != 80 {
		t.Fatalf("payload = %+v", payload.Data)
	}
}

func TestTriadeMissingTokenRejected(t *testing.T) {
	svc := &stubTriadeService{
		viewFunc: func(ctx context.Context, clientID, token string) (services.TriadeView, error) {
			t.Fatal("service must not be called without a token")
			return services.TriadeView{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/4567890123/triade", nil)
	rr := httptest.NewRecorder()
	newTriadeRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestTriadeUpdateEndpoint(t *testing.T) {
	var received services.TriadeUpdate
	svc := &stubTriadeService{
		updateFunc: func(ctx context.Context, clientID, token string, update services.TriadeUpdate) (services.TriadeView, error) {
			received = update
			return services.TriadeView{ItemID: clientID, BeautyVenue: update.BeautyVenue, TravelFee: update.TravelFee, Availability: update.Availability}, nil
		},
	}

	body := strings.NewReader(`{"beautyVenue":"Palacio","mTravelFee":120,"mAvailability":"Not available"}`)
	req := httptest.NewRequest(http.MethodPost, "/4567890123/triade?t=a-token-that-is-long-enough-to-pass", body)
	rr := httptest.NewRecorder()
	newTriadeRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if received.BeautyVenue != "Palacio" || received.TravelFee != 120 || received.Availability != "Not available" {
		t.Fatalf("update = %+v", received)
	}
}

func TestTriadeUpdateDecodesHostedPageBody(t *testing.T) {
	var received services.TriadeUpdate
	svc := &stubTriadeService{
		updateFunc: func(ctx context.Context, clientID, token string, update services.TriadeUpdate) (services.TriadeView, error) {
			received = update
			return services.TriadeView{ItemID: clientID}, nil
		},
	}

	// Exactly the body the hosted triade page posts.
	body := strings.NewReader(`{"beautyVenue":"Quinta da Pacheca","mTravelFee":50,"mAvailability":"Maybe"}`)
	req := httptest.NewRequest(http.MethodPost, "/4567890123/triade?t=a-token-that-is-long-enough-to-pass", body)
	rr := httptest.NewRecorder()
	newTriadeRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if received.BeautyVenue != "Quinta da Pacheca" || received.TravelFee != 50 || received.Availability != "Maybe" {
		t.Fatalf("update = %+v", received)
	}
}

func TestTriadeErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"token rejected", fmt.Errorf("%w: token too short", services.ErrTriadeTokenInvalid), http.StatusForbidden},
		{"client missing", fmt.Errorf("%w: 4567890123", services.ErrTriadeClientNotFound), http.StatusNotFound},
		{"invalid update", fmt.Errorf("%w: beauty venue is required", services.ErrTriadeInvalidRequest), http.StatusBadRequest},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubTriadeService{
				viewFunc: func(ctx context.Context, clientID, token string) (services.TriadeView, error) {
					return services.TriadeView{}, tc.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/4567890123/triade?t=whatever-token-value-goes-here", nil)
			rr := httptest.NewRecorder()
			newTriadeRouter(svc).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestTriadeMintLinkEndpoint(t *testing.T) {
	svc := &stubTriadeService{
		mintFunc: func(ctx context.Context, clientID string) (services.TriadeLink, error) {
			return services.TriadeLink{ClientID: clientID, Token: strings.Repeat("a", 32), URL: "https://forms.example.com/clients/" + clientID + "/triade?t=" + strings.Repeat("a", 32)}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/4567890123/triade-links", nil)
	rr := httptest.NewRecorder()
	newTriadeRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Data services.TriadeLink `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Data.ClientID != "4567890123" || len(payload.Data.Token) < 30 {
		t.Fatalf("payload = %+v", payload.Data)
	}
}
