package app

import (
	"context"
	"log"
	"time"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/clock"
)

type SweeperLedger interface {
	CancelPendingBefore(ctx context.Context, cutoff, cancelledAt time.Time) (int64, error)
}

// Sweeper cancels stale pending sales: rows whose checkout session was
// never created or never paid. It reuses the same conditional status
// write as the webhook, so a late checkout.session.expired delivery for
// an already swept sale is a harmless no-op (and vice versa).
type Sweeper struct {
	ledger   SweeperLedger
	clock    clock.Clock
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(ledger SweeperLedger, clk clock.Clock, ttl, interval time.Duration) *Sweeper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		ledger:   ledger,
		clock:    clk,
		ttl:      ttl,
		interval: interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				log.Printf("sweeper: %v", err)
			}
		}
	}
}

// SweepOnce cancels pending sales older than the TTL and reports how
// many rows it touched.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	swept, err := s.ledger.CancelPendingBefore(ctx, now.Add(-s.ttl), now)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		log.Printf("sweeper: cancelled %d stale pending sales", swept)
	}
	return swept, nil
}
