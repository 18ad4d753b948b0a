package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/app"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

// AdminService is the interface needed for the admin catalog endpoints.
type AdminService interface {
	CreateOrganizer(ctx context.Context, in app.CreateOrganizerInput) (domain.Organizer, error)
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error)
	UpsertFeeSettings(ctx context.Context, in app.UpsertFeeSettingsInput) (domain.FeeSettings, error)
	GetFeeSettings(ctx context.Context, eventID string) (domain.FeeSettings, error)
}

// HandleAdminOrganizers returns an HTTP handler for organizer creation.
func HandleAdminOrganizers(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrganizerRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		organizer, err := svc.CreateOrganizer(r.Context(), app.CreateOrganizerInput{
			UserID:               req.UserID,
			Name:                 req.Name,
			StripeAccountID:      req.StripeAccountID,
			StripeChargesEnabled: req.StripeChargesEnabled,
		})
		if err != nil {
			switch err {
			case domain.ErrOrganizerNameRequired:
				writeError(w, http.StatusBadRequest, codeOrganizerNameMissing, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, organizerResponse{
			ID:                   organizer.ID,
			UserID:               organizer.UserID,
			Name:                 organizer.Name,
			StripeAccountID:      organizer.StripeAccountID,
			StripeChargesEnabled: organizer.StripeChargesEnabled,
		})
	}
}

// HandleAdminEvents returns an HTTP handler for event creation/listing.
func HandleAdminEvents(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := svc.ListEvents(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]eventResponse, 0, len(events))
			for _, event := range events {
				resp = append(resp, eventResponse{
					ID:          event.ID,
					OrganizerID: event.OrganizerID,
					Title:       event.Title,
					StartsAt:    event.StartsAt,
				})
			}
			writeJSON(w, http.StatusOK, resp)
			return
		case http.MethodPost:
			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.Title == "" {
				writeError(w, http.StatusBadRequest, codeEventTitleRequired, domain.ErrEventTitleRequired.Error())
				return
			}

			var startsAt *time.Time
			if req.StartsAt != "" {
				parsed, err := time.Parse(time.RFC3339, req.StartsAt)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "invalid starts_at format")
					return
				}
				startsAt = &parsed
			}

			event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
				OrganizerID: req.OrganizerID,
				Title:       req.Title,
				StartsAt:    startsAt,
			})
			if err != nil {
				switch err {
				case domain.ErrEventTitleRequired:
					writeError(w, http.StatusBadRequest, codeEventTitleRequired, err.Error())
				case domain.ErrInvalidID:
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				case domain.ErrOrganizerNotFound:
					writeError(w, http.StatusNotFound, codeOrganizerNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			writeJSON(w, http.StatusCreated, eventResponse{
				ID:          event.ID,
				OrganizerID: event.OrganizerID,
				Title:       event.Title,
				StartsAt:    event.StartsAt,
			})
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleAdminEventResources routes /admin/events/{id}/ticket-types and
// /admin/events/{id}/fee-settings.
func HandleAdminEventResources(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, resource, ok := parseAdminEventPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch resource {
		case "ticket-types":
			handleAdminTicketTypes(svc, eventID, w, r)
		case "fee-settings":
			handleAdminFeeSettings(svc, eventID, w, r)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleAdminTicketTypes(svc AdminService, eventID string, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ticketTypes, err := svc.ListTicketTypes(r.Context(), eventID)
		if err != nil {
			switch err {
			case domain.ErrInvalidID:
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case domain.ErrEventNotFound:
				writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		resp := make([]ticketTypeResponse, 0, len(ticketTypes))
		for _, t := range ticketTypes {
			resp = append(resp, newTicketTypeResponse(t))
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req createTicketTypeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		ticketType, err := svc.CreateTicketType(r.Context(), app.CreateTicketTypeInput{
			EventID:        eventID,
			Name:           req.Name,
			Description:    req.Description,
			Price:          req.Price,
			Quantity:       req.Quantity,
			MinPerPurchase: req.MinPerPurchase,
			MaxPerPurchase: req.MaxPerPurchase,
		})
		if err != nil {
			switch err {
			case domain.ErrTicketTypeNameRequired:
				writeError(w, http.StatusBadRequest, codeTicketTypeNameMissing, err.Error())
			case domain.ErrInvalidPrice:
				writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
			case domain.ErrInvalidCapacity:
				writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case domain.ErrEventNotFound:
				writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, newTicketTypeResponse(ticketType))
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func handleAdminFeeSettings(svc AdminService, eventID string, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := svc.GetFeeSettings(r.Context(), eventID)
		if err != nil {
			switch err {
			case domain.ErrInvalidID:
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case domain.ErrFeeSettingsNotFound:
				writeError(w, http.StatusNotFound, codeFeeSettingsNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, newFeeSettingsResponse(settings))
	case http.MethodPut:
		var req upsertFeeSettingsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		settings, err := svc.UpsertFeeSettings(r.Context(), app.UpsertFeeSettingsInput{
			EventID:                 eventID,
			PlatformFeePercentage:   req.PlatformFeePercentage,
			ProcessingFeePercentage: req.ProcessingFeePercentage,
			ProcessingFeeFixed:      req.ProcessingFeeFixed,
			FeePayer:                domain.FeePayer(req.FeePayer),
		})
		if err != nil {
			switch err {
			case domain.ErrInvalidFeePayer:
				writeError(w, http.StatusBadRequest, codeInvalidFeePayer, err.Error())
			case domain.ErrInvalidPrice:
				writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
			case domain.ErrEventNotFound:
				writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, newFeeSettingsResponse(settings))
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

type createOrganizerRequest struct {
	UserID               string `json:"user_id"`
	Name                 string `json:"name"`
	StripeAccountID      string `json:"stripe_account_id,omitempty"`
	StripeChargesEnabled bool   `json:"stripe_charges_enabled,omitempty"`
}

type organizerResponse struct {
	ID                   string `json:"id"`
	UserID               string `json:"user_id"`
	Name                 string `json:"name"`
	StripeAccountID      string `json:"stripe_account_id,omitempty"`
	StripeChargesEnabled bool   `json:"stripe_charges_enabled"`
}

type createEventRequest struct {
	OrganizerID string `json:"organizer_id"`
	Title       string `json:"title"`
	StartsAt    string `json:"starts_at,omitempty"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	OrganizerID string    `json:"organizer_id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
}

type createTicketTypeRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	MinPerPurchase int             `json:"min_per_purchase,omitempty"`
	MaxPerPurchase int             `json:"max_per_purchase,omitempty"`
}

type ticketTypeResponse struct {
	ID             string `json:"id"`
	EventID        string `json:"event_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Price          string `json:"price"`
	Quantity       int    `json:"quantity"`
	QuantitySold   int    `json:"quantity_sold"`
	MinPerPurchase int    `json:"min_per_purchase"`
	MaxPerPurchase int    `json:"max_per_purchase"`
}

func newTicketTypeResponse(t domain.TicketType) ticketTypeResponse {
	return ticketTypeResponse{
		ID:             t.ID,
		EventID:        t.EventID,
		Name:           t.Name,
		Description:    t.Description,
		Price:          t.Price.StringFixed(2),
		Quantity:       t.Quantity,
		QuantitySold:   t.QuantitySold,
		MinPerPurchase: t.MinPerPurchase,
		MaxPerPurchase: t.MaxPerPurchase,
	}
}

type upsertFeeSettingsRequest struct {
	PlatformFeePercentage   decimal.Decimal `json:"platform_fee_percentage"`
	ProcessingFeePercentage decimal.Decimal `json:"payment_processing_fee_percentage"`
	ProcessingFeeFixed      decimal.Decimal `json:"payment_processing_fee_fixed"`
	FeePayer                string          `json:"fee_payer"`
}

type feeSettingsResponse struct {
	EventID                 string `json:"event_id"`
	PlatformFeePercentage   string `json:"platform_fee_percentage"`
	ProcessingFeePercentage string `json:"payment_processing_fee_percentage"`
	ProcessingFeeFixed      string `json:"payment_processing_fee_fixed"`
	FeePayer                string `json:"fee_payer"`
}

func newFeeSettingsResponse(s domain.FeeSettings) feeSettingsResponse {
	return feeSettingsResponse{
		EventID:                 s.EventID,
		PlatformFeePercentage:   s.PlatformFeePercentage.String(),
		ProcessingFeePercentage: s.ProcessingFeePercentage.String(),
		ProcessingFeeFixed:      s.ProcessingFeeFixed.String(),
		FeePayer:                string(s.FeePayer),
	}
}

func parseAdminEventPath(path string) (eventID, resource string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", "", false
	}
	if parts[0] != "admin" || parts[1] != "events" {
		return "", "", false
	}
	if parts[2] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}
