package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/triade-beauty/intake/internal/platform/monday"
	"github.com/triade-beauty/intake/internal/services"
)

type stubIntakeService struct {
	submitFunc func(ctx context.Context, submission services.Submission) (services.SubmissionReceipt, error)
}

func (s *stubIntakeService) Submit(ctx context.Context, submission services.Submission) (services.SubmissionReceipt, error) {
	if s.submitFunc != nil {
		return s.submitFunc(ctx, submission)
	}
	return services.SubmissionReceipt{}, nil
}

func TestFormSubmitSuccess(t *testing.T) {
	var received services.Submission
	svc := &stubIntakeService{
		submitFunc: func(ctx context.Context, submission services.Submission) (services.SubmissionReceipt, error) {
			received = submission
			return services.SubmissionReceipt{ItemID: "1260831000", ItemName: "MS Form - Maria", BoardID: 1234567890}, nil
		},
	}

	handler := NewFormHandlers(svc)
	body := bytes.NewBufferString(`{"brideName":"Maria","email":"maria@example.com","formType":"mua","2nd e-mail":"groom@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/forms", body)
	rr := httptest.NewRecorder()

	handler.submit(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if received.BrideName != "Maria" || received.FormType != "mua" {
		t.Fatalf("submission = %+v", received)
	}
	if received.SecondEmail != "groom@example.com" {
		t.Fatalf("second email = %q", received.SecondEmail)
	}

	var payload struct {
		Message string                     `json:"message"`
		Data    services.SubmissionReceipt `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Data.ItemID != "1260831000" || payload.Message == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestFormSubmitStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: email is required", services.ErrIntakeInvalidSubmission), http.StatusBadRequest},
		{"board missing", fmt.Errorf("intake: fetch columns: %w", monday.ErrBoardNotFound), http.StatusBadGateway},
		{"upstream down", &monday.APIError{Op: "monday.create_item", StatusCode: http.StatusBadGateway}, http.StatusBadGateway},
		{"api rejection", &monday.APIError{Op: "monday.create_item", StatusCode: http.StatusOK, Messages: []string{"invalid column"}}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubIntakeService{
				submitFunc: func(ctx context.Context, submission services.Submission) (services.SubmissionReceipt, error) {
					return services.SubmissionReceipt{}, tc.err
				},
			}
			handler := NewFormHandlers(svc)
			req := httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader(`{"email":"a@b.co"}`))
			rr := httptest.NewRecorder()

			handler.submit(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tc.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestFormSubmitRejectsBadBodies(t *testing.T) {
	handler := NewFormHandlers(&stubIntakeService{})

	req := httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader(""))
	rr := httptest.NewRecorder()
	handler.submit(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	handler.submit(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid json status = %d", rr.Code)
	}

	huge := strings.NewReader(`{"description":"` + strings.Repeat("x", maxFormRequestBody+1) + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/forms", huge)
	rr = httptest.NewRecorder()
	handler.submit(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body status = %d", rr.Code)
	}
}

func TestFormSubmitRateLimited(t *testing.T) {
	svc := &stubIntakeService{
		submitFunc: func(ctx context.Context, submission services.Submission) (services.SubmissionReceipt, error) {
			return services.SubmissionReceipt{ItemID: "1"}, nil
		},
	}
	handler := NewFormHandlers(svc, WithSubmitRateLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader(`{"email":"a@b.co"}`))
		req.RemoteAddr = "203.0.113.7:1234"
		rr := httptest.NewRecorder()
		handler.submit(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader(`{"email":"a@b.co"}`))
	req.RemoteAddr = "203.0.113.7:1234"
	rr := httptest.NewRecorder()
	handler.submit(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader(`{"email":"a@b.co"}`))
	req.RemoteAddr = "198.51.100.9:4321"
	rr = httptest.NewRecorder()
	handler.submit(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("other client status = %d", rr.Code)
	}
}
