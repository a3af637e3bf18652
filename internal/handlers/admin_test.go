package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/savethebee/honeyweb/internal/reports"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminHandler(t *testing.T) (*AdminHandler, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return &AdminHandler{
		Base:    newTestBase(t),
		Store:   st,
		Orders:  &service.OrderService{Store: st},
		Catalog: &service.CatalogService{Store: st},
		Posts:   &service.PostService{Store: st},
		Users:   &service.UserService{Store: st},
	}, st
}

func TestToggleHoneyHidesFromCatalog(t *testing.T) {
	h, st := newAdminHandler(t)
	honey := createHoney(t, st, "bee@example.com", "0888111222")

	rec := httptest.NewRecorder()
	h.ToggleHoney(rec, postForm("/Admin/Honeys/Toggle", url.Values{
		"id":     {honey.ID.String()},
		"active": {"false"},
	}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/Admin/Honeys", rec.Header().Get("Location"))

	_, err := h.Catalog.HoneyDetails(context.Background(), honey.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestExportOrders(t *testing.T) {
	h, _ := newAdminHandler(t)

	rec := httptest.NewRecorder()
	h.ExportOrders(rec, httptest.NewRequest(http.MethodGet, "/Admin/Orders/Export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = httptest.NewRecorder()
	h.ExportOrders(rec, httptest.NewRequest(http.MethodGet, "/Admin/Orders/Export?status=Lost", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
