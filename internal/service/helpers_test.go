package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/hub"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(store.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func createUser(t *testing.T, st *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Ivan", LastName: "Petrov", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func createBeekeeper(t *testing.T, st *store.Store, email, phone string) (*models.User, *models.Beekeeper) {
	t.Helper()
	u := createUser(t, st, email)
	b := &models.Beekeeper{UserID: u.ID, PhoneNumber: phone}
	require.NoError(t, st.CreateBeekeeper(context.Background(), b))
	return u, b
}

func createHoney(t *testing.T, st *store.Store, beekeeperID uuid.UUID, categoryID int, title, price string) *models.Honey {
	t.Helper()
	h := &models.Honey{
		Title:       title,
		Origin:      "Vratsa",
		Description: "Golden honey from the Balkan mountains.",
		Price:       decimal.RequireFromString(price),
		NetWeight:   450,
		YearMade:    2024,
		IsActive:    true,
		CategoryID:  categoryID,
		BeekeeperID: beekeeperID,
	}
	require.NoError(t, st.CreateHoney(context.Background(), h))
	return h
}

type recordedEvent struct {
	userID uuid.UUID
	event  hub.Event
}

// fakeBroadcaster records events instead of writing to sockets.
type fakeBroadcaster struct {
	mu        sync.Mutex
	broadcast []hub.Event
	direct    []recordedEvent
}

func (f *fakeBroadcaster) Broadcast(ev hub.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, ev)
}

func (f *fakeBroadcaster) SendToUser(userID uuid.UUID, ev hub.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, recordedEvent{userID: userID, event: ev})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
