// Package gate decides whether a navigation to a protected page is allowed
// for the current session and order state. It is a pure function: the same
// inputs always yield the same single outcome, and nothing is mutated.
package gate

// Well-known page paths the gate redirects between.
const (
	PathLogin        = "/login"
	PathOrder        = "/order"
	PathOrderPending = "/order-pending"
	PathCalendar     = "/calendar"
)

// Decision is the outcome for one navigation. When Allow is false,
// RedirectTo names the page the client should go to instead.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Decide evaluates the access rules in order:
//  1. Unauthenticated users go to the login page.
//  2. A pending (not yet completed) order pins the user to the
//     order-pending page.
//  3. Without any order, the user is pinned to the order page.
//  4. With a completed order the order page itself is off-limits; the
//     calendar is the destination.
// Anything else is allowed.
func Decide(authenticated, completed, pending bool, path string) Decision {
	if !authenticated {
		return Decision{RedirectTo: PathLogin}
	}
	if pending && !completed && path != PathOrderPending {
		return Decision{RedirectTo: PathOrderPending}
	}
	if !completed && !pending && path != PathOrder {
		return Decision{RedirectTo: PathOrder}
	}
	if completed && path == PathOrder {
		return Decision{RedirectTo: PathCalendar}
	}
	return Decision{Allow: true}
}
