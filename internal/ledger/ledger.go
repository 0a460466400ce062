// Package ledger tracks the consumable study-hour balance against the
// reservation set and drives reservation and order mutations against the
// remote service. Every read replaces local state wholesale; reloads after
// a mutation are the single source of truth.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"academy-booking-client/internal/remote"
)

// Reservation statuses as reported by the service.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User-facing validation errors, rejected before any network call.
var (
	ErrNoHoursRemaining = errors.New("no remaining study hours, please purchase more")
	ErrInvalidHours     = errors.New("number of hours must be positive")
)

const balanceCacheKey = "study_hours"

// Reservation is a booked slot with its display attributes.
type Reservation struct {
	ID     int64     `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
	Color  string    `json:"color"`
}

// Balance is the derived study-hour figure set. Remaining is always
// recomputed as max(available - pending reservations, 0).
type Balance struct {
	Available    int `json:"study_hours"`
	PendingCount int `json:"pending_count"`
	Remaining    int `json:"remaining_hours"`
}

// Ledger holds the balance and reservation set for the current session.
type Ledger struct {
	mu       sync.Mutex
	remote   *remote.Client
	balances *cache.Cache
	cacheTTL time.Duration

	available    int
	reservations []Reservation
	loaded       bool // at least one reservation load completed
}

// New creates a ledger backed by the given remote client. cacheTTL bounds
// how long a balance read may be served from cache; every mutation flushes
// it.
func New(client *remote.Client, cacheTTL time.Duration) *Ledger {
	return &Ledger{
		remote:   client,
		balances: cache.New(cacheTTL, 2*cacheTTL),
		cacheTTL: cacheTTL,
	}
}

// colorFor maps a reservation status to its display color.
func colorFor(status string) string {
	switch status {
	case StatusApproved:
		return "green"
	case StatusRejected:
		return "red"
	default:
		return "orange"
	}
}

// titleFor maps a reservation status to its display title.
func titleFor(status string) string {
	switch status {
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// LoadBalance fetches the available hours, serving a recent value from
// cache when present.
func (l *Ledger) LoadBalance(ctx context.Context) error {
	if v, ok := l.balances.Get(balanceCacheKey); ok {
		l.mu.Lock()
		l.available = v.(int)
		l.mu.Unlock()
		return nil
	}

	hours, err := l.remote.FetchStudyHours(ctx)
	if err != nil {
		return err
	}
	l.balances.Set(balanceCacheKey, hours, l.cacheTTL)

	l.mu.Lock()
	l.available = hours
	l.mu.Unlock()
	return nil
}

// LoadReservations fetches the full reservation list and replaces the local
// set wholesale. No incremental merge: the server list is the truth.
func (l *Ledger) LoadReservations(ctx context.Context) error {
	records, err := l.remote.ListReservations(ctx)
	if err != nil {
		return err
	}

	reservations := make([]Reservation, 0, len(records))
	for _, r := range records {
		reservations = append(reservations, Reservation{
			ID:     r.ID,
			Title:  titleFor(r.Status),
			Start:  r.StartTime,
			End:    r.EndTime,
			Status: r.Status,
			Color:  colorFor(r.Status),
		})
	}

	l.mu.Lock()
	l.reservations = reservations
	l.loaded = true
	l.mu.Unlock()
	return nil
}

// CreateReservation books a 1-hour slot starting at slotStart. The local
// guard rejects the call without any network traffic when no hours remain;
// before the first reservation load the raw available figure is the guard.
// On success both balance and reservation set are reloaded; the reload is
// authoritative.
func (l *Ledger) CreateReservation(ctx context.Context, slotStart time.Time) error {
	l.mu.Lock()
	var remaining int
	if l.loaded {
		remaining = l.remainingLocked()
	} else {
		remaining = l.available
	}
	l.mu.Unlock()

	if remaining <= 0 {
		return ErrNoHoursRemaining
	}

	slotEnd := slotStart.Add(time.Hour)
	if err := l.remote.CreateReservation(ctx,
		slotStart.UTC().Format(time.RFC3339),
		slotEnd.UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	return l.reload(ctx)
}

// DeleteReservation removes a reservation. Only pending entries are
// deletable; a non-pending id is refused by the service and the message is
// surfaced as-is.
func (l *Ledger) DeleteReservation(ctx context.Context, id int64) error {
	if err := l.remote.DeleteReservation(ctx, id); err != nil {
		return err
	}
	return l.reload(ctx)
}

// ClearRejected hides all rejected reservations remotely, then drops them
// from the local set. Pending count and remaining hours are unaffected.
func (l *Ledger) ClearRejected(ctx context.Context) error {
	if err := l.remote.HideRejected(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	kept := l.reservations[:0]
	for _, r := range l.reservations {
		if r.Status != StatusRejected {
			kept = append(kept, r)
		}
	}
	l.reservations = kept
	l.mu.Unlock()
	return nil
}

// SubmitHourOrder validates and submits a study-hour purchase. The
// resulting pending order is observed later through the order status
// resolver, not through this call.
func (l *Ledger) SubmitHourOrder(ctx context.Context, order remote.HourOrder) error {
	if order.Hours <= 0 {
		return ErrInvalidHours
	}
	return l.remote.CreateOrder(ctx, order)
}

// UpdateHourOrder submits an hour top-up for the pending order.
func (l *Ledger) UpdateHourOrder(ctx context.Context, hours int) error {
	if hours <= 0 {
		return ErrInvalidHours
	}
	return l.remote.UpdateOrder(ctx, hours)
}

// Balance returns the derived figures for the current state.
func (l *Ledger) Balance() Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Balance{
		Available:    l.available,
		PendingCount: l.pendingCountLocked(),
		Remaining:    l.remainingLocked(),
	}
}

// Reservations returns a copy of the current reservation set.
func (l *Ledger) Reservations() []Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Reservation, len(l.reservations))
	copy(out, l.reservations)
	return out
}

// HasRejected reports whether any rejected reservation is visible.
func (l *Ledger) HasRejected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.reservations {
		if r.Status == StatusRejected {
			return true
		}
	}
	return false
}

// reload refreshes balance and reservations after a mutation.
func (l *Ledger) reload(ctx context.Context) error {
	l.balances.Delete(balanceCacheKey)
	if err := l.LoadBalance(ctx); err != nil {
		return err
	}
	return l.LoadReservations(ctx)
}

func (l *Ledger) pendingCountLocked() int {
	count := 0
	for _, r := range l.reservations {
		if r.Status == StatusPending {
			count++
		}
	}
	return count
}

func (l *Ledger) remainingLocked() int {
	remaining := l.available - l.pendingCountLocked()
	if remaining < 0 {
		return 0
	}
	return remaining
}
