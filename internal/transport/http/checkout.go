package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/app"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

// CheckoutCreator is the minimal interface needed to create a checkout.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, in app.CreateCheckoutInput) (app.CreateCheckoutResult, error)
}

// HandleCreateCheckout returns an HTTP handler for starting a ticket
// purchase. The caller identity must already be in the request context.
func HandleCreateCheckout(svc CheckoutCreator) http.HandlerFunc {
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

		var req createCheckoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.TicketTypeID == "" || req.EventID == "" || req.Quantity == 0 {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField,
				"missing required parameters: ticketTypeId, quantity, eventId")
			return
		}

		res, err := svc.CreateCheckout(r.Context(), app.CreateCheckoutInput{
			TicketTypeID: req.TicketTypeID,
			EventID:      req.EventID,
			Quantity:     req.Quantity,
			Buyer:        buyer,
		})
		if err != nil {
			var upstream *app.UpstreamError
			switch {
			case errors.Is(err, domain.ErrInvalidQuantity):
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrTicketTypeNotFound):
				writeError(w, http.StatusNotFound, codeTicketTypeNotFound, err.Error())
			case errors.Is(err, domain.ErrOrganizerNotFound):
				writeError(w, http.StatusNotFound, codeOrganizerNotFound, err.Error())
			case errors.Is(err, domain.ErrFeeSettingsNotFound):
				writeError(w, http.StatusNotFound, codeFeeSettingsNotFound, err.Error())
			case errors.Is(err, domain.ErrOwnEventPurchase):
				writeError(w, http.StatusConflict, codeOwnEventPurchase, err.Error())
			case errors.Is(err, domain.ErrPayoutsNotConfigured):
				writeError(w, http.StatusConflict, codePayoutsNotConfigured, err.Error())
			case errors.Is(err, domain.ErrInsufficientCapacity):
				writeError(w, http.StatusConflict, codeInsufficientCapacity, err.Error())
			case errors.As(err, &upstream):
				writeError(w, http.StatusBadGateway, codePaymentProviderError, "payment provider error")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, createCheckoutResponse{
			URL:       res.URL,
			SessionID: res.SessionID,
			SaleID:    res.SaleID,
		})
	}
}

type createCheckoutRequest struct {
	TicketTypeID string `json:"ticketTypeId"`
	Quantity     int    `json:"quantity"`
	EventID      string `json:"eventId"`
}

type createCheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	SaleID    string `json:"saleId"`
}
