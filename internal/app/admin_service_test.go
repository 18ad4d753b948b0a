package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/clock"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
)

func TestAdminService_CreateOrganizer(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates organizer", func(t *testing.T) {
		repo := newFakeAdminRepo()
		svc := NewAdminService(repo, clock.NewFixed(now))

		organizer, err := svc.CreateOrganizer(context.Background(), CreateOrganizerInput{
			UserID:               "user-1",
			Name:                 "Organizer",
			StripeAccountID:      "acct_1",
			StripeChargesEnabled: true,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if organizer.ID == "" {
			t.Fatalf("expected organizer ID to be set")
		}
		if len(repo.organizers) != 1 {
			t.Fatalf("expected 1 organizer stored, got %d", len(repo.organizers))
		}
	})

	t.Run("requires name", func(t *testing.T) {
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		_, err := svc.CreateOrganizer(context.Background(), CreateOrganizerInput{UserID: "user-1"})
		if err != domain.ErrOrganizerNameRequired {
			t.Fatalf("expected ErrOrganizerNameRequired, got %v", err)
		}
	})

	t.Run("requires user id", func(t *testing.T) {
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		_, err := svc.CreateOrganizer(context.Background(), CreateOrganizerInput{Name: "Organizer"})
		if err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestAdminService_CreateEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates event with explicit start", func(t *testing.T) {
		repo := newFakeAdminRepo()
		svc := NewAdminService(repo, clock.NewFixed(now))

		startsAt := now.Add(48 * time.Hour)
		event, err := svc.CreateEvent(context.Background(), CreateEventInput{
			OrganizerID: "org-1",
			Title:       "Launch Party",
			StartsAt:    &startsAt,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.StartsAt != startsAt {
			t.Fatalf("expected starts_at %v, got %v", startsAt, event.StartsAt)
		}
	})

	t.Run("defaults start to now", func(t *testing.T) {
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		event, err := svc.CreateEvent(context.Background(), CreateEventInput{
			OrganizerID: "org-1",
			Title:       "Launch Party",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.StartsAt != now {
			t.Fatalf("expected starts_at %v, got %v", now, event.StartsAt)
		}
	})

	t.Run("requires title", func(t *testing.T) {
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		_, err := svc.CreateEvent(context.Background(), CreateEventInput{OrganizerID: "org-1"})
		if err != domain.ErrEventTitleRequired {
			t.Fatalf("expected ErrEventTitleRequired, got %v", err)
		}
	})
}

func TestAdminService_CreateTicketType(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	valid := CreateTicketTypeInput{
		EventID:  "event-1",
		Name:     "General",
		Price:    decimal.RequireFromString("49.90"),
		Quantity: 100,
	}

	t.Run("creates ticket type", func(t *testing.T) {
		repo := newFakeAdminRepo()
		svc := NewAdminService(repo, clock.NewFixed(now))

		ticketType, err := svc.CreateTicketType(context.Background(), valid)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ticketType.ID == "" {
			t.Fatalf("expected ticket type ID to be set")
		}
		if len(repo.ticketTypes) != 1 {
			t.Fatalf("expected 1 ticket type stored, got %d", len(repo.ticketTypes))
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*CreateTicketTypeInput)
			want   error
		}{
			{"missing event", func(in *CreateTicketTypeInput) { in.EventID = "" }, domain.ErrInvalidID},
			{"missing name", func(in *CreateTicketTypeInput) { in.Name = "" }, domain.ErrTicketTypeNameRequired},
			{"negative price", func(in *CreateTicketTypeInput) { in.Price = decimal.NewFromInt(-1) }, domain.ErrInvalidPrice},
			{"zero quantity", func(in *CreateTicketTypeInput) { in.Quantity = 0 }, domain.ErrInvalidCapacity},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := valid
				tt.mutate(&in)
				svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))
				if _, err := svc.CreateTicketType(context.Background(), in); err != tt.want {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestAdminService_UpsertFeeSettings(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	valid := UpsertFeeSettingsInput{
		EventID:                 "event-1",
		PlatformFeePercentage:   decimal.NewFromInt(5),
		ProcessingFeePercentage: decimal.RequireFromString("3.99"),
		ProcessingFeeFixed:      decimal.RequireFromString("0.39"),
		FeePayer:                domain.FeePayerBuyer,
	}

	t.Run("stores settings", func(t *testing.T) {
		repo := newFakeAdminRepo()
		svc := NewAdminService(repo, clock.NewFixed(now))

		settings, err := svc.UpsertFeeSettings(context.Background(), valid)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if settings.EventID != "event-1" {
			t.Fatalf("expected event-1, got %s", settings.EventID)
		}

		got, err := svc.GetFeeSettings(context.Background(), "event-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !got.PlatformFeePercentage.Equal(valid.PlatformFeePercentage) {
			t.Fatalf("expected platform fee %s, got %s", valid.PlatformFeePercentage, got.PlatformFeePercentage)
		}
	})

	t.Run("rejects unknown fee payer", func(t *testing.T) {
		in := valid
		in.FeePayer = "platform"
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		if _, err := svc.UpsertFeeSettings(context.Background(), in); err != domain.ErrInvalidFeePayer {
			t.Fatalf("expected ErrInvalidFeePayer, got %v", err)
		}
	})

	t.Run("rejects negative percentages", func(t *testing.T) {
		in := valid
		in.ProcessingFeeFixed = decimal.NewFromInt(-1)
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		if _, err := svc.UpsertFeeSettings(context.Background(), in); err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
	})

	t.Run("missing settings not found", func(t *testing.T) {
		svc := NewAdminService(newFakeAdminRepo(), clock.NewFixed(now))

		if _, err := svc.GetFeeSettings(context.Background(), "event-x"); err != domain.ErrFeeSettingsNotFound {
			t.Fatalf("expected ErrFeeSettingsNotFound, got %v", err)
		}
	})
}

type fakeAdminRepo struct {
	organizers  map[string]domain.Organizer
	events      map[string]domain.Event
	ticketTypes map[string]domain.TicketType
	settings    map[string]domain.FeeSettings
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{
		organizers:  make(map[string]domain.Organizer),
		events:      make(map[string]domain.Event),
		ticketTypes: make(map[string]domain.TicketType),
		settings:    make(map[string]domain.FeeSettings),
	}
}

func (f *fakeAdminRepo) CreateOrganizer(_ context.Context, organizer domain.Organizer) error {
	f.organizers[organizer.ID] = organizer
	return nil
}

func (f *fakeAdminRepo) CreateEvent(_ context.Context, event domain.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeAdminRepo) ListEvents(_ context.Context) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(f.events))
	for _, event := range f.events {
		events = append(events, event)
	}
	return events, nil
}

func (f *fakeAdminRepo) CreateTicketType(_ context.Context, ticketType domain.TicketType) error {
	f.ticketTypes[ticketType.ID] = ticketType
	return nil
}

func (f *fakeAdminRepo) ListTicketTypesByEvent(_ context.Context, eventID string) ([]domain.TicketType, error) {
	var out []domain.TicketType
	for _, t := range f.ticketTypes {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAdminRepo) UpsertFeeSettings(_ context.Context, settings domain.FeeSettings) error {
	f.settings[settings.EventID] = settings
	return nil
}

func (f *fakeAdminRepo) GetFeeSettings(_ context.Context, eventID string) (domain.FeeSettings, error) {
	settings, ok := f.settings[eventID]
	if !ok {
		return domain.FeeSettings{}, domain.ErrFeeSettingsNotFound
	}
	return settings, nil
}
