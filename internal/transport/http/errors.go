package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeMissingRequiredField  = "missing_required_field"
	codeInvalidStartsAt       = "invalid_starts_at"
	codeInvalidID             = "invalid_id"
	codeUnauthorized          = "unauthorized"
	codeForbidden             = "forbidden"
	codeInvalidQuantity       = "invalid_quantity"
	codeInvalidPrice          = "invalid_price"
	codeInvalidCapacity       = "invalid_capacity"
	codeInvalidFeePayer       = "invalid_fee_payer"
	codeInsufficientCapacity  = "insufficient_capacity"
	codeEventNotFound         = "event_not_found"
	codeOrganizerNotFound     = "organizer_not_found"
	codeTicketTypeNotFound    = "ticket_type_not_found"
	codeFeeSettingsNotFound   = "fee_settings_not_found"
	codeSaleNotFound          = "sale_not_found"
	codeOwnEventPurchase      = "own_event_purchase"
	codePayoutsNotConfigured  = "payouts_not_configured"
	codeEventTitleRequired    = "event_title_required"
	codeTicketTypeNameMissing = "ticket_type_name_required"
	codeOrganizerNameMissing  = "organizer_name_required"
	codeInvalidSignature      = "invalid_signature"
	codePaymentProviderError  = "payment_provider_error"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
