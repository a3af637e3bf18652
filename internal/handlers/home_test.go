package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/savethebee/honeyweb/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHomeHandler(t *testing.T) *HomeHandler {
	t.Helper()
	st := newTestStore(t)
	return &HomeHandler{
		Base:     newTestBase(t),
		Catalog:  &service.CatalogService{Store: st},
		Posts:    &service.PostService{Store: st},
		Orders:   &service.OrderService{Store: st},
		Fortunes: &service.FortuneService{Store: st, Fortunes: []string{"Bees never sleep in."}},
	}
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestFortuneOncePerDay(t *testing.T) {
	h := newHomeHandler(t)

	draw := func() service.Fortune {
		req := httptest.NewRequest(http.MethodGet, "/Home/Fortune", nil)
		req.RemoteAddr = "198.51.100.20:4000"
		rec := httptest.NewRecorder()
		h.Fortune(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var f service.Fortune
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
		return f
	}

	first := draw()
	assert.True(t, first.New)
	assert.Equal(t, "Bees never sleep in.", first.Text)

	second := draw()
	assert.False(t, second.New)
	assert.Equal(t, first.Text, second.Text)
}

func TestFortuneIgnoresSpoofedForwardedFor(t *testing.T) {
	h := newHomeHandler(t)

	draw := func(spoofed string) service.Fortune {
		req := httptest.NewRequest(http.MethodGet, "/Home/Fortune", nil)
		req.RemoteAddr = "198.51.100.21:4000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.Fortune(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var f service.Fortune
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
		return f
	}

	assert.True(t, draw("1.1.1.1").New)
	assert.False(t, draw("1.1.1.2").New)
}

func TestQuickOrderValidationFlashes(t *testing.T) {
	h := newHomeHandler(t)
	rec := httptest.NewRecorder()
	h.PlaceOrderFromHomepage(rec, postForm("/Home/PlaceOrderFromHomepage", url.Values{
		"full_name": {"I"},
		"quantity":  {"0"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	flashes := flashesAfter(t, h.Base, rec)
	assert.NotEmpty(t, flashes)
	for _, f := range flashes {
		assert.Equal(t, "error", f.Type)
	}
}

func TestQuickOrderUnknownHoneyType(t *testing.T) {
	h := newHomeHandler(t)
	rec := httptest.NewRecorder()
	h.PlaceOrderFromHomepage(rec, postForm("/Home/PlaceOrderFromHomepage", url.Values{
		"full_name":     {"Maria Ivanova"},
		"email":         {"maria@example.com"},
		"phone_number":  {"0888123456"},
		"address":       {"Sofia, 1 Vitosha Blvd"},
		"honey_type_id": {"999"},
		"quantity":      {"2"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	flashes := flashesAfter(t, h.Base, rec)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Please choose one of the listed honey types.", flashes[0].Message)
}

func TestErrorPageStatus(t *testing.T) {
	h := newHomeHandler(t)

	tests := []struct {
		query string
		code  int
		text  string
	}{
		{"404", http.StatusNotFound, "Page not found"},
		{"500", http.StatusInternalServerError, ""},
		{"", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run("code "+tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Error(rec, httptest.NewRequest(http.MethodGet, "/Home/Error?statusCode="+tt.query, nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			if tt.text != "" {
				assert.Contains(t, rec.Body.String(), tt.text)
			}
		})
	}
}

func TestContactValidation(t *testing.T) {
	h := newHomeHandler(t)
	rec := httptest.NewRecorder()
	h.SendEmail(rec, postForm("/Home/SendEmail", url.Values{"name": {"Ana"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contact us")
}
