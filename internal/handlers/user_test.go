package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeReturnURL(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/User/Cart":           "/User/Cart",
		"/Honey/All?page=2":    "/Honey/All?page=2",
		"https://evil.example": "/",
		"//evil.example/path":  "/",
		"/\\evil.example":      "/",
		"javascript:alert(1)":  "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeReturnURL(in), in)
	}
}

func newUserHandler(t *testing.T) *UserHandler {
	t.Helper()
	st := newTestStore(t)
	return &UserHandler{
		Base:  newTestBase(t),
		Users: &service.UserService{Store: st, Policy: service.PasswordPolicy{MinLength: 6}},
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newUserHandler(t)
	_, err := h.Users.CreateAdmin(context.Background(), "admin@example.com", "s3cret!")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.LoginPost(rec, postForm("/User/Login", url.Values{
		"email":    {"admin@example.com"},
		"password": {"wrong"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/User/Login", rec.Header().Get("Location"))
	flashes := flashesAfter(t, h.Base, rec)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Invalid email or password", flashes[0].Message)
}

func TestAdminLoginLandsOnDashboard(t *testing.T) {
	h := newUserHandler(t)
	admin, err := h.Users.CreateAdmin(context.Background(), "admin@example.com", "s3cret!")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.LoginPost(rec, postForm("/User/Login", url.Values{
		"email":    {"admin@example.com"},
		"password": {"s3cret!"},
	}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/Admin", rec.Header().Get("Location"))

	req := withCookies(httptest.NewRequest(http.MethodGet, "/Admin", nil), rec.Result().Cookies())
	current := h.CurrentUser(req)
	assert.True(t, current.Authenticated)
	assert.True(t, current.IsAdmin)
	assert.Equal(t, admin.ID, current.ID)
}

func TestLogoutClearsSession(t *testing.T) {
	h := newUserHandler(t)
	rec := httptest.NewRecorder()
	h.Logout(rec, withCookies(httptest.NewRequest(http.MethodGet, "/User/Logout", nil), signedIn(t, h.Base, uuid.New(), false)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	req := withCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec.Result().Cookies())
	assert.False(t, h.CurrentUser(req).Authenticated)
}

func TestRegisterShowsValidationErrors(t *testing.T) {
	h := newUserHandler(t)
	rec := httptest.NewRecorder()
	h.RegisterPost(rec, postForm("/User/Register", url.Values{
		"email":    {"not-an-email"},
		"password": {"123"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "flash-error")
}
