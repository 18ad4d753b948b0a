package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/app"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), identityKey{}, app.Buyer{
		UserID: "user-1",
		Email:  "buyer@example.com",
		Name:   "Buyer",
	})
	return req.WithContext(ctx)
}

func TestHandleCreateCheckout(t *testing.T) {
	t.Parallel()

	successResult := app.CreateCheckoutResult{
		SaleID:    "sale-1",
		SessionID: "cs_1",
		URL:       "https://checkout.test/cs_1",
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"ticketTypeId":"tt-1","quantity":2,"eventId":"event-1"}`,
			expectedStatus: http.StatusOK,
			expectedSubstr: `"sessionId":"cs_1"`,
		},
		{
			name:           "invalid json",
			body:           `{"ticketTypeId":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing ticket type",
			body:           `{"quantity":2,"eventId":"event-1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid quantity",
			body:           `{"ticketTypeId":"tt-1","quantity":3,"eventId":"event-1"}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "ticket type not found",
			body:           `{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`,
			serviceErr:     domain.ErrTicketTypeNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "own event purchase",
			body:           `{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`,
			serviceErr:     domain.ErrOwnEventPurchase,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "payouts not configured",
			body:           `{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`,
			serviceErr:     domain.ErrPayoutsNotConfigured,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "insufficient capacity",
			body:           `{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`,
			serviceErr:     domain.ErrInsufficientCapacity,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "provider down",
			body:           `{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`,
			serviceErr:     &app.UpstreamError{Err: errors.New("stripe down")},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "internal error",
			body:           `{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCheckoutService{result: successResult, err: tt.serviceErr}
			req := authedRequest(http.MethodPost, "/checkout", tt.body)
			rec := httptest.NewRecorder()

			HandleCreateCheckout(svc).ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}

	t.Run("requires identity", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/checkout",
			bytes.NewBufferString(`{"ticketTypeId":"tt-1","quantity":1,"eventId":"event-1"}`))
		rec := httptest.NewRecorder()

		HandleCreateCheckout(&stubCheckoutService{}).ServeHTTP(rec, req)

		if rec.Result().StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Result().StatusCode)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		t.Parallel()
		req := authedRequest(http.MethodGet, "/checkout", "")
		rec := httptest.NewRecorder()

		HandleCreateCheckout(&stubCheckoutService{}).ServeHTTP(rec, req)

		if rec.Result().StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Result().StatusCode)
		}
	})
}

type stubCheckoutService struct {
	result app.CreateCheckoutResult
	err    error
}

func (s *stubCheckoutService) CreateCheckout(_ context.Context, _ app.CreateCheckoutInput) (app.CreateCheckoutResult, error) {
	return s.result, s.err
}
