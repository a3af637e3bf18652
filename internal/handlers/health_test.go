package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	h := &HealthHandler{}
	rec := httptest.NewRecorder()
	h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestReadyWithDatabase(t *testing.T) {
	h := &HealthHandler{Health: &service.HealthService{Store: newTestStore(t)}}
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestReadyWithoutDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))

	h := &HealthHandler{Health: &service.HealthService{Store: store.NewFromDB(sqlx.NewDb(db, "sqlmock"))}}
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseStatusAlwaysOK(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))

	h := &HealthHandler{Health: &service.HealthService{Store: store.NewFromDB(sqlx.NewDb(db, "sqlmock"))}}
	rec := httptest.NewRecorder()
	h.DatabaseStatus(rec, httptest.NewRequest(http.MethodGet, "/Health/DatabaseStatus", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["isConnected"])
	assert.Equal(t, false, body["canCreateUser"])
}

func TestHealthStatusReportsDatabase(t *testing.T) {
	h := &HealthHandler{Health: &service.HealthService{Store: newTestStore(t)}}
	rec := httptest.NewRecorder()
	h.HealthStatus(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["isConnected"])
}

func TestHealthStatusUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))

	h := &HealthHandler{Health: &service.HealthService{Store: store.NewFromDB(sqlx.NewDb(db, "sqlmock"))}}
	rec := httptest.NewRecorder()
	h.HealthStatus(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
