package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/app"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

// PaymentVerifier is the minimal interface needed for the catch-up
// completion check after redirect-back.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, sessionID, userID string) (app.VerifyPaymentResult, error)
}

// HandleVerifyPayment returns an HTTP handler that checks a checkout
// session directly with the processor and completes the sale when the
// webhook has not landed yet.
func HandleVerifyPayment(svc PaymentVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		buyer, ok := buyerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "user not authenticated")
			return
		}

		var req verifyPaymentRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.SessionID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "missing required parameter: sessionId")
			return
		}

		res, err := svc.VerifyPayment(r.Context(), req.SessionID, buyer.UserID)
		if err != nil {
			var upstream *app.UpstreamError
			switch {
			case errors.Is(err, domain.ErrSaleNotFound):
				writeError(w, http.StatusNotFound, codeSaleNotFound, err.Error())
			case errors.Is(err, domain.ErrSaleNotOwned):
				writeError(w, http.StatusForbidden, codeForbidden, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.As(err, &upstream):
				writeError(w, http.StatusBadGateway, codePaymentProviderError, "payment provider error")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, verifyPaymentResponse{
			OK:            res.Paid,
			PaymentStatus: string(res.PaymentStatus),
		})
	}
}

type verifyPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

type verifyPaymentResponse struct {
	OK            bool   `json:"ok"`
	PaymentStatus string `json:"payment_status"`
}
