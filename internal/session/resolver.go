package session

import (
	"context"
	"log"
	"sync"

	"academy-booking-client/internal/remote"
)

// OrderStatus is the derived order state of the current user. An approved
// order supersedes a pending one, so Completed and Pending are never both
// true.
type OrderStatus struct {
	Completed bool
	Pending   bool
}

// OrderStatusResolver fetches and derives the order flags from the remote
// profile. It fails closed: any fetch failure resets both flags to false.
type OrderStatusResolver struct {
	mu     sync.RWMutex
	remote *remote.Client
	status OrderStatus
}

// NewOrderStatusResolver creates a resolver backed by the given client.
func NewOrderStatusResolver(client *remote.Client) *OrderStatusResolver {
	return &OrderStatusResolver{remote: client}
}

// Resolve fetches the profile and replaces the derived flags wholesale.
// Failures are logged and leave the flags in the fail-closed state; they
// never abort the caller's flow.
func (r *OrderStatusResolver) Resolve(ctx context.Context) {
	profile, err := r.remote.FetchProfile(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Printf("Warning: failed to fetch order status: %v", err)
		r.status = OrderStatus{}
		return
	}
	r.status = OrderStatus{
		Completed: profile.OrderCompleted,
		Pending:   profile.OrderPending && !profile.OrderCompleted,
	}
}

// Status returns the last derived order flags.
func (r *OrderStatusResolver) Status() OrderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Reset clears the derived flags, e.g. on logout.
func (r *OrderStatusResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = OrderStatus{}
}
