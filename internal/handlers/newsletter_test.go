package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/savethebee/honeyweb/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNewsletterHandler(t *testing.T) *NewsletterHandler {
	t.Helper()
	return &NewsletterHandler{
		Base: newTestBase(t),
		Newsletter: &service.NewsletterService{
			Store:   newTestStore(t),
			Secret:  []byte("newsletter-test-secret"),
			BaseURL: "https://bees.test",
		},
	}
}

func TestSubscribeRedirectsBack(t *testing.T) {
	h := newNewsletterHandler(t)

	req := postForm("/User/SubscribeNewsletter", url.Values{"email": {"reader@example.com"}})
	req.Header.Set("Referer", "/Post/All")
	rec := httptest.NewRecorder()
	h.Subscribe(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/Post/All", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.Subscribe(rec, postForm("/User/SubscribeNewsletter", url.Values{"email": {"nope"}}))
	flashes := flashesAfter(t, h.Base, rec)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Invalid email format.", flashes[0].Message)
}

func TestUnsubscribeLink(t *testing.T) {
	h := newNewsletterHandler(t)
	require.NoError(t, h.Newsletter.Subscribe(context.Background(), "reader@example.com"))
	token, err := h.Newsletter.UnsubscribeToken("reader@example.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UnsubscribeLink(rec, httptest.NewRequest(http.MethodGet, "/User/Unsubscribe?token="+url.QueryEscape(token), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reader@example.com")

	rec = httptest.NewRecorder()
	h.UnsubscribeLink(rec, httptest.NewRequest(http.MethodGet, "/User/Unsubscribe?token=forged", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
