package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/app"
)

const signatureHeader = "Stripe-Signature"

// Payload size cap for webhook bodies; Stripe events are small.
const maxWebhookBody = 1 << 20

// WebhookProcessor is the minimal interface needed to reconcile a
// processor event delivery.
type WebhookProcessor interface {
	Process(ctx context.Context, payload []byte, sigHeader string) error
}

// HandleStripeWebhook returns an HTTP handler for the payment processor
// callback. The endpoint must always acknowledge deliveries it handled
// (including intentional no-ops) so the processor stops retrying; only
// signature failures and unexpected errors are reported back.
func HandleStripeWebhook(svc WebhookProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "failed to read request body")
			return
		}

		if err := svc.Process(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
			if errors.Is(err, app.ErrInvalidSignature) {
				writeError(w, http.StatusBadRequest, codeInvalidSignature, "invalid signature")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}
