package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"academy-booking-client/internal/remote"
	"academy-booking-client/internal/store"
)

// State is a snapshot of the session for gates and handlers.
type State struct {
	Authenticated bool
	Username      string
	Order         OrderStatus
}

// Manager owns the bearer-token session: login/logout transitions, token
// validity checks and the periodic renewal loop. All persisted fields are
// mirrored into the store on every transition.
type Manager struct {
	mu       sync.RWMutex
	store    store.Store
	remote   *remote.Client
	resolver *OrderStatusResolver
	interval time.Duration

	authenticated bool
	username      string
}

// NewManager creates a session manager. interval is the renewal check
// period of the background loop.
func NewManager(s store.Store, client *remote.Client, resolver *OrderStatusResolver, interval time.Duration) *Manager {
	return &Manager{
		store:    s,
		remote:   client,
		resolver: resolver,
		interval: interval,
	}
}

// Initialize restores the session from the store at startup. A valid access
// token restores the authenticated state directly; otherwise a present
// refresh token is used for a silent renewal. With neither, the session
// stays unauthenticated.
func (m *Manager) Initialize(ctx context.Context) error {
	sess, err := m.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted session: %w", err)
	}

	switch {
	case sess.AccessToken != "" && IsTokenValid(sess.AccessToken):
		m.setAuthenticated(sess.Username)
		m.resolver.Resolve(ctx)
	case sess.RefreshToken != "":
		if err := m.Renew(ctx); err != nil {
			log.Printf("Warning: silent renewal at startup failed: %v", err)
		}
	}
	return nil
}

// Login persists the full session record and marks it authenticated
// synchronously, then resolves the order status and reports the login in
// the background. The login report is best-effort: its failure never
// affects local session state.
func (m *Manager) Login(ctx context.Context, username, accessToken, refreshToken string) error {
	sess := store.Session{
		Username:     username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.setAuthenticated(username)

	go func() {
		bg := context.Background()
		m.resolver.Resolve(bg)
		if err := m.remote.TrackLogin(bg); err != nil {
			log.Printf("Warning: failed to track login: %v", err)
			return
		}
		m.resolver.Resolve(bg)
	}()
	return nil
}

// Logout clears the persisted session and all derived state. It is safe to
// call when already logged out.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.authenticated = false
	m.username = ""
	m.mu.Unlock()
	m.resolver.Reset()

	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// Renew obtains a fresh access token with the stored refresh token. Any
// failure is terminal for the session and forces a logout.
func (m *Manager) Renew(ctx context.Context) error {
	sess, err := m.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted session: %w", err)
	}
	if sess.RefreshToken == "" {
		return m.Logout(ctx)
	}

	access, err := m.remote.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		log.Printf("Token renewal failed, logging out: %v", err)
		if logoutErr := m.Logout(ctx); logoutErr != nil {
			log.Printf("Warning: failed to clear session after renewal failure: %v", logoutErr)
		}
		return err
	}

	sess.AccessToken = access
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to persist renewed session: %w", err)
	}
	m.setAuthenticated(sess.Username)
	m.resolver.Resolve(ctx)
	return nil
}

// Run is the background renewal loop: every interval, renew the access
// token if it is present but expired. Cancelling the context stops the
// loop; a single timer is reused so restarts cannot pile up.
func (m *Manager) Run(ctx context.Context) {
	log.Println("Starting session renewal loop...")

	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Session renewal loop shutting down.")
			return
		case <-timer.C:
			token, err := m.store.AccessToken(ctx)
			if err != nil {
				log.Printf("Warning: failed to read access token: %v", err)
			} else if token != "" && !IsTokenValid(token) {
				if err := m.Renew(ctx); err != nil {
					log.Printf("Warning: scheduled renewal failed: %v", err)
				}
			}
			timer.Reset(m.interval)
		}
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	authenticated, username := m.authenticated, m.username
	m.mu.RUnlock()
	return State{
		Authenticated: authenticated,
		Username:      username,
		Order:         m.resolver.Status(),
	}
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

func (m *Manager) setAuthenticated(username string) {
	m.mu.Lock()
	m.authenticated = true
	m.username = username
	m.mu.Unlock()
}
