package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"academy-booking-client/config"
	"academy-booking-client/internal/ledger"
	"academy-booking-client/internal/model"
	"academy-booking-client/internal/notification"
	"academy-booking-client/internal/remote"
	"academy-booking-client/internal/session"
	"academy-booking-client/internal/store"
)

// academyStub serves just enough of the booking API for watcher tests. The
// reservation list is mutable so tests can flip statuses between cycles.
type academyStub struct {
	mu           sync.Mutex
	reservations []remote.Reservation
}

func (s *academyStub) setStatus(id int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			s.reservations[i].Status = status
		}
	}
}

func (s *academyStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/profile/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"username":        "alice",
			"order_completed": true,
			"order_pending":   false,
		})
	})
	mux.HandleFunc("/api/user/login/track/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/user/study_hours/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"study_hours": 5})
	})
	mux.HandleFunc("/api/reservations/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(s.reservations)
	})
	return mux
}

type fixture struct {
	watcher  *Watcher
	pool     *notification.WorkerPool
	sessions *session.Manager
	stub     *academyStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stub := &academyStub{}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Credential{}, &model.PushSubscription{}))
	appStore := store.NewGormStore(db)

	remoteCfg := &config.RemoteConfig{
		BaseURL:         server.URL,
		Timeout:         5 * time.Second,
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
	}
	client := remote.NewClient(remoteCfg, appStore)
	resolver := session.NewOrderStatusResolver(client)
	sessions := session.NewManager(appStore, client, resolver, time.Minute)

	l := ledger.New(client, time.Minute)
	pool := notification.NewWorkerPool(4, db, &webpush.Options{})

	watcherCfg := &config.WatcherConfig{Enabled: true, Interval: time.Minute}
	return &fixture{
		watcher:  New(watcherCfg, sessions, l, pool),
		pool:     pool,
		sessions: sessions,
		stub:     stub,
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	access, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, f.sessions.Login(context.Background(), "alice", access, "refresh-1"))
}

func (f *fixture) drainEvents(t *testing.T) []notification.Event {
	t.Helper()
	var events []notification.Event
	for {
		select {
		case e := <-f.pool.Jobs():
			events = append(events, e)
		case <-time.After(50 * time.Millisecond):
			return events
		}
	}
}

func TestFirstCycleOnlyRecordsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	start := time.Now().Add(24 * time.Hour)
	f.stub.reservations = []remote.Reservation{
		{ID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: ledger.StatusApproved},
	}

	f.watcher.CheckOnce(context.Background())

	assert.Empty(t, f.drainEvents(t), "there is no previous status to diff against yet")
}

func TestPendingToApprovedDispatchesEvent(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	start := time.Date(2026, 9, 14, 15, 0, 0, 0, time.UTC)
	f.stub.reservations = []remote.Reservation{
		{ID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: ledger.StatusPending},
		{ID: 2, StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour), Status: ledger.StatusPending},
	}
	ctx := context.Background()

	f.watcher.CheckOnce(ctx)
	require.Empty(t, f.drainEvents(t))

	f.stub.setStatus(1, ledger.StatusApproved)
	f.watcher.CheckOnce(ctx)

	events := f.drainEvents(t)
	require.Len(t, events, 1, "only the reservation that changed produces an event")
	assert.Equal(t, int64(1), events[0].ReservationID)
	assert.Equal(t, ledger.StatusApproved, events[0].Status)
	assert.Equal(t, start, events[0].Start.UTC())

	// The same status on the next cycle is not news.
	f.watcher.CheckOnce(ctx)
	assert.Empty(t, f.drainEvents(t))
}

func TestPendingToRejectedDispatchesEvent(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	start := time.Now().Add(24 * time.Hour)
	f.stub.reservations = []remote.Reservation{
		{ID: 7, StartTime: start, EndTime: start.Add(time.Hour), Status: ledger.StatusPending},
	}
	ctx := context.Background()

	f.watcher.CheckOnce(ctx)
	f.stub.setStatus(7, ledger.StatusRejected)
	f.watcher.CheckOnce(ctx)

	events := f.drainEvents(t)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.StatusRejected, events[0].Status)
}

func TestLogoutResetsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	start := time.Now().Add(24 * time.Hour)
	f.stub.reservations = []remote.Reservation{
		{ID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: ledger.StatusPending},
	}
	ctx := context.Background()

	f.watcher.CheckOnce(ctx)

	require.NoError(t, f.sessions.Logout(ctx))
	f.stub.setStatus(1, ledger.StatusApproved)
	f.watcher.CheckOnce(ctx)
	assert.Empty(t, f.drainEvents(t), "no polling while logged out")

	// After logging back in the first cycle starts from scratch, so the
	// change that happened while logged out is not reported as a transition.
	f.login(t)
	f.watcher.CheckOnce(ctx)
	assert.Empty(t, f.drainEvents(t))
}
