package remote

import "time"

// TokenPair is the response of the token issue endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Profile is the response of the profile endpoint. The order flags are the
// raw server values; normalization happens in the order status resolver.
type Profile struct {
	Username       string `json:"username"`
	OrderCompleted bool   `json:"order_completed"`
	OrderPending   bool   `json:"order_pending"`
}

// Reservation is a single reservation record as reported by the service.
type Reservation struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

// HourOrder is the study-hour purchase request. It is write-only: the
// resulting order is observed later through the profile's pending flag.
type HourOrder struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Hours         int    `json:"hours"`
	TermsAccepted bool   `json:"terms_accepted"`
	GdprAccepted  bool   `json:"gdpr_accepted"`
}
