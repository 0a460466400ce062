// Package watch polls the reservation list in the background and turns
// server-side status transitions (an admin approving or rejecting a pending
// slot) into notification events.
package watch

import (
	"context"
	"log"
	"time"

	"academy-booking-client/config"
	"academy-booking-client/internal/ledger"
	"academy-booking-client/internal/notification"
	"academy-booking-client/internal/session"
)

// Watcher periodically reloads reservations and diffs their statuses
// against the previous snapshot.
type Watcher struct {
	cfg      *config.WatcherConfig
	sessions *session.Manager
	ledger   *ledger.Ledger
	pool     *notification.WorkerPool

	previous map[int64]string
}

// New creates a watcher.
func New(cfg *config.WatcherConfig, sessions *session.Manager, l *ledger.Ledger, pool *notification.WorkerPool) *Watcher {
	return &Watcher{
		cfg:      cfg,
		sessions: sessions,
		ledger:   l,
		pool:     pool,
	}
}

// Run starts the polling loop.
func (w *Watcher) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		log.Println("Reservation watcher is disabled. Not starting.")
		return
	}
	log.Println("Starting reservation watcher...")

	w.pool.Start(ctx)

	w.CheckOnce(ctx)

	timer := time.NewTimer(w.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reservation watcher shutting down.")
			return
		case <-timer.C:
			w.CheckOnce(ctx)
			timer.Reset(w.cfg.Interval)
		}
	}
}

// CheckOnce performs a single reload-and-diff cycle. The first cycle after
// login only records the snapshot; notifications need a known previous
// status.
func (w *Watcher) CheckOnce(ctx context.Context) {
	if !w.sessions.Authenticated() {
		w.previous = nil
		return
	}

	if err := w.ledger.LoadReservations(ctx); err != nil {
		log.Printf("Warning: watcher failed to reload reservations: %v", err)
		return
	}

	current := w.ledger.Reservations()
	snapshot := make(map[int64]string, len(current))
	for _, r := range current {
		snapshot[r.ID] = r.Status

		if w.previous == nil {
			continue
		}
		prev, known := w.previous[r.ID]
		if known && prev == ledger.StatusPending && r.Status != ledger.StatusPending {
			w.pool.Dispatch(notification.Event{
				ReservationID: r.ID,
				Status:        r.Status,
				Start:         r.Start,
			})
		}
	}
	w.previous = snapshot
}
