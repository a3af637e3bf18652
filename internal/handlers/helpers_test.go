package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/savethebee/honeyweb/web"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testSessionKey = []byte("0123456789abcdef0123456789abcdef")

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(store.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newTestBase(t *testing.T) *Base {
	t.Helper()
	templates := NewTemplateCache()
	require.NoError(t, templates.Load(web.Templates()))
	return &Base{
		SessionStore: sessions.NewCookieStore(testSessionKey),
		Templates:    templates,
	}
}

// signedIn returns the session cookies of a signed-in user.
func signedIn(t *testing.T, b *Base, id uuid.UUID, admin bool) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, b.signIn(rec, req, id, "Ivan Petrov", admin))
	return rec.Result().Cookies()
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// flashesAfter reads the flash messages a response left in the session.
func flashesAfter(t *testing.T, b *Base, rec *httptest.ResponseRecorder) []FlashMessage {
	t.Helper()
	req := withCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec.Result().Cookies())
	return GetFlash(b.session(req))
}

func createUser(t *testing.T, st *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Ivan", LastName: "Petrov", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func createHoney(t *testing.T, st *store.Store, email, phone string) *models.Honey {
	t.Helper()
	ctx := context.Background()
	u := createUser(t, st, email)
	b := &models.Beekeeper{UserID: u.ID, PhoneNumber: phone}
	require.NoError(t, st.CreateBeekeeper(ctx, b))
	h := &models.Honey{
		Title:       "Acacia honey",
		Origin:      "Vratsa",
		Description: "Light honey from acacia blossoms.",
		Price:       decimal.RequireFromString("12.50"),
		NetWeight:   450,
		YearMade:    2024,
		IsActive:    true,
		CategoryID:  1,
		BeekeeperID: b.ID,
	}
	require.NoError(t, st.CreateHoney(ctx, h))
	return h
}
