package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/domain"
	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/testutil"
)

func TestCatalogRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCatalogRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("GetTicketTypeWithEvent joins the event", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		organizerID, eventID, ticketTypeID := testutil.InsertCatalog(t, ctx, pool, "49.90", 100)

		ticketType, event, err := repo.GetTicketTypeWithEvent(ctx, ticketTypeID)
		if err != nil {
			t.Fatalf("get ticket type: %v", err)
		}
		if ticketType.ID != ticketTypeID || ticketType.EventID != eventID {
			t.Fatalf("unexpected ticket type: %+v", ticketType)
		}
		if ticketType.Price.StringFixed(2) != "49.90" {
			t.Fatalf("expected price 49.90, got %s", ticketType.Price.StringFixed(2))
		}
		if event.ID != eventID || event.OrganizerID != organizerID {
			t.Fatalf("unexpected event: %+v", event)
		}

		if _, _, err := repo.GetTicketTypeWithEvent(ctx, uuid.NewString()); err != domain.ErrTicketTypeNotFound {
			t.Fatalf("expected ErrTicketTypeNotFound, got %v", err)
		}
		if _, _, err := repo.GetTicketTypeWithEvent(ctx, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("GetOrganizer", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		organizerID, _, _ := testutil.InsertCatalog(t, ctx, pool, "49.90", 100)

		organizer, err := repo.GetOrganizer(ctx, organizerID)
		if err != nil {
			t.Fatalf("get organizer: %v", err)
		}
		if organizer.StripeAccountID != "acct_test" || !organizer.StripeChargesEnabled {
			t.Fatalf("unexpected organizer: %+v", organizer)
		}

		if _, err := repo.GetOrganizer(ctx, uuid.NewString()); err != domain.ErrOrganizerNotFound {
			t.Fatalf("expected ErrOrganizerNotFound, got %v", err)
		}
	})

	t.Run("GetFeeSettings", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, eventID, _ := testutil.InsertCatalog(t, ctx, pool, "49.90", 100)
		testutil.InsertFeeSettings(t, ctx, pool, eventID, "5", "3.99", "0.39", "buyer")

		settings, err := repo.GetFeeSettings(ctx, eventID)
		if err != nil {
			t.Fatalf("get fee settings: %v", err)
		}
		if settings.FeePayer != domain.FeePayerBuyer {
			t.Fatalf("expected buyer fee payer, got %s", settings.FeePayer)
		}
		if settings.PlatformFeePercentage.StringFixed(0) != "5" {
			t.Fatalf("expected platform fee 5, got %s", settings.PlatformFeePercentage)
		}

		if _, err := repo.GetFeeSettings(ctx, uuid.NewString()); err != domain.ErrFeeSettingsNotFound {
			t.Fatalf("expected ErrFeeSettingsNotFound, got %v", err)
		}
	})

	t.Run("IncrementSold respects capacity", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, _, ticketTypeID := testutil.InsertCatalog(t, ctx, pool, "49.90", 5)

		if err := repo.IncrementSold(ctx, ticketTypeID, 3); err != nil {
			t.Fatalf("increment: %v", err)
		}
		if err := repo.IncrementSold(ctx, ticketTypeID, 2); err != nil {
			t.Fatalf("increment to capacity: %v", err)
		}
		if err := repo.IncrementSold(ctx, ticketTypeID, 1); err != domain.ErrInsufficientCapacity {
			t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
		}

		var sold int
		if err := pool.QueryRow(ctx, `SELECT quantity_sold FROM ticket_types WHERE id = $1`, ticketTypeID).Scan(&sold); err != nil {
			t.Fatalf("query sold: %v", err)
		}
		if sold != 5 {
			t.Fatalf("expected 5 sold, got %d", sold)
		}

		if err := repo.IncrementSold(ctx, uuid.NewString(), 1); err != domain.ErrTicketTypeNotFound {
			t.Fatalf("expected ErrTicketTypeNotFound, got %v", err)
		}
	})

	t.Run("concurrent increments never oversell", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		_, _, ticketTypeID := testutil.InsertCatalog(t, ctx, pool, "49.90", 10)

		const buyers = 20
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0

		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.IncrementSold(ctx, ticketTypeID, 1)
				switch err {
				case nil:
					mu.Lock()
					succeeded++
					mu.Unlock()
				case domain.ErrInsufficientCapacity:
				default:
					t.Errorf("increment: %v", err)
				}
			}()
		}
		wg.Wait()

		if succeeded != 10 {
			t.Fatalf("expected exactly 10 successful increments, got %d", succeeded)
		}

		var sold int
		if err := pool.QueryRow(ctx, `SELECT quantity_sold FROM ticket_types WHERE id = $1`, ticketTypeID).Scan(&sold); err != nil {
			t.Fatalf("query sold: %v", err)
		}
		if sold != 10 {
			t.Fatalf("expected quantity_sold 10, got %d", sold)
		}
	})
}
