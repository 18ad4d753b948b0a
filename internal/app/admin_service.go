package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/clock"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

type AdminRepository interface {
	CreateOrganizer(ctx context.Context, organizer domain.Organizer) error
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, ticketType domain.TicketType) error
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
	UpsertFeeSettings(ctx context.Context, settings domain.FeeSettings) error
	GetFeeSettings(ctx context.Context, eventID string) (domain.FeeSettings, error)
}

// AdminService manages the catalog the checkout flow reads: organizers,
// events, ticket types and per-event fee settings.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateOrganizerInput struct {
	UserID               string
	Name                 string
	StripeAccountID      string
	StripeChargesEnabled bool
}

func (s *AdminService) CreateOrganizer(ctx context.Context, in CreateOrganizerInput) (domain.Organizer, error) {
	if in.Name == "" {
		return domain.Organizer{}, domain.ErrOrganizerNameRequired
	}
	if in.UserID == "" {
		return domain.Organizer{}, domain.ErrInvalidID
	}

	organizer := domain.Organizer{
		ID:                   newID(),
		UserID:               in.UserID,
		Name:                 in.Name,
		StripeAccountID:      in.StripeAccountID,
		StripeChargesEnabled: in.StripeChargesEnabled,
	}
	if err := s.repo.CreateOrganizer(ctx, organizer); err != nil {
		return domain.Organizer{}, err
	}
	return organizer, nil
}

type CreateEventInput struct {
	OrganizerID string
	Title       string
	StartsAt    *time.Time
}

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Title == "" {
		return domain.Event{}, domain.ErrEventTitleRequired
	}
	if in.OrganizerID == "" {
		return domain.Event{}, domain.ErrInvalidID
	}
	startsAt := s.clock.Now()
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:          newID(),
		OrganizerID: in.OrganizerID,
		Title:       in.Title,
		StartsAt:    startsAt,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type CreateTicketTypeInput struct {
	EventID        string
	Name           string
	Description    string
	Price          decimal.Decimal
	Quantity       int
	MinPerPurchase int
	MaxPerPurchase int
}

func (s *AdminService) CreateTicketType(ctx context.Context, in CreateTicketTypeInput) (domain.TicketType, error) {
	if in.EventID == "" {
		return domain.TicketType{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.TicketType{}, domain.ErrTicketTypeNameRequired
	}
	if in.Price.IsNegative() {
		return domain.TicketType{}, domain.ErrInvalidPrice
	}
	if in.Quantity <= 0 {
		return domain.TicketType{}, domain.ErrInvalidCapacity
	}

	ticketType := domain.TicketType{
		ID:             newID(),
		EventID:        in.EventID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		Quantity:       in.Quantity,
		MinPerPurchase: in.MinPerPurchase,
		MaxPerPurchase: in.MaxPerPurchase,
	}
	if err := s.repo.CreateTicketType(ctx, ticketType); err != nil {
		return domain.TicketType{}, err
	}
	return ticketType, nil
}

func (s *AdminService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTicketTypesByEvent(ctx, eventID)
}

type UpsertFeeSettingsInput struct {
	EventID                 string
	PlatformFeePercentage   decimal.Decimal
	ProcessingFeePercentage decimal.Decimal
	ProcessingFeeFixed      decimal.Decimal
	FeePayer                domain.FeePayer
}

func (s *AdminService) UpsertFeeSettings(ctx context.Context, in UpsertFeeSettingsInput) (domain.FeeSettings, error) {
	if in.EventID == "" {
		return domain.FeeSettings{}, domain.ErrInvalidID
	}
	if in.FeePayer != domain.FeePayerBuyer && in.FeePayer != domain.FeePayerOrganizer {
		return domain.FeeSettings{}, domain.ErrInvalidFeePayer
	}
	if in.PlatformFeePercentage.IsNegative() ||
		in.ProcessingFeePercentage.IsNegative() ||
		in.ProcessingFeeFixed.IsNegative() {
		return domain.FeeSettings{}, domain.ErrInvalidPrice
	}

	settings := domain.FeeSettings{
		EventID:                 in.EventID,
		PlatformFeePercentage:   in.PlatformFeePercentage,
		ProcessingFeePercentage: in.ProcessingFeePercentage,
		ProcessingFeeFixed:      in.ProcessingFeeFixed,
		FeePayer:                in.FeePayer,
	}
	if err := s.repo.UpsertFeeSettings(ctx, settings); err != nil {
		return domain.FeeSettings{}, err
	}
	return settings, nil
}

func (s *AdminService) GetFeeSettings(ctx context.Context, eventID string) (domain.FeeSettings, error) {
	if eventID == "" {
		return domain.FeeSettings{}, domain.ErrInvalidID
	}
	return s.repo.GetFeeSettings(ctx, eventID)
}
