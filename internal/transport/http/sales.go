package http

import (
	"context"
	"net/http"
	"time"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

// SaleAwaiter is the minimal interface needed to load a sale for the
// confirmation view, tolerating webhook lag.
type SaleAwaiter interface {
	AwaitSale(ctx context.Context, sessionID, userID string) (domain.Sale, error)
}

// HandleGetSale returns an HTTP handler serving the confirmation view's
// sale lookup by checkout session id.
func HandleGetSale(svc SaleAwaiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		buyer, ok := buyerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "user not authenticated")
			return
		}

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "missing required parameter: session_id")
			return
		}

		sale, err := svc.AwaitSale(r.Context(), sessionID, buyer.UserID)
		if err != nil {
			switch err {
			case domain.ErrSaleNotFound:
				writeError(w, http.StatusNotFound, codeSaleNotFound, err.Error())
			case domain.ErrSaleNotOwned:
				writeError(w, http.StatusForbidden, codeForbidden, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, saleResponse{
			ID:            sale.ID,
			EventID:       sale.EventID,
			TicketTypeID:  sale.TicketTypeID,
			Quantity:      sale.Quantity,
			UnitPrice:     sale.UnitPrice.StringFixed(2),
			Subtotal:      sale.Subtotal.StringFixed(2),
			PlatformFee:   sale.PlatformFee.StringFixed(2),
			ProcessingFee: sale.ProcessingFee.StringFixed(2),
			TotalAmount:   sale.TotalAmount.StringFixed(2),
			BuyerName:     sale.BuyerName,
			BuyerEmail:    sale.BuyerEmail,
			PaymentStatus: string(sale.PaymentStatus),
			CreatedAt:     sale.CreatedAt,
			PaidAt:        sale.PaidAt,
		})
	}
}

type saleResponse struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	TicketTypeID  string     `json:"ticket_type_id"`
	Quantity      int        `json:"quantity"`
	UnitPrice     string     `json:"unit_price"`
	Subtotal      string     `json:"subtotal"`
	PlatformFee   string     `json:"platform_fee"`
	ProcessingFee string     `json:"payment_processing_fee"`
	TotalAmount   string     `json:"total_amount"`
	BuyerName     string     `json:"buyer_name"`
	BuyerEmail    string     `json:"buyer_email"`
	PaymentStatus string     `json:"payment_status"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}
