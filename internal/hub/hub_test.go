package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identifyFromQuery(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get("user"))
	return id, err == nil
}

func dial(t *testing.T, srv *httptest.Server, user uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubSendToUser(t *testing.T) {
	h := New("cart")
	srv := httptest.NewServer(h.ServeWS(identifyFromQuery))
	defer srv.Close()

	alice, bob := uuid.New(), uuid.New()
	aliceConn := dial(t, srv, alice)
	bobConn := dial(t, srv, bob)
	require.Eventually(t, func() bool { return h.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	h.SendToUser(alice, Event{Type: EventCartItemQuantityUpdated, Payload: map[string]int{"quantity": 3}})
	h.Broadcast(Event{Type: EventCartUpdated})

	ev := readEvent(t, aliceConn)
	assert.Equal(t, EventCartItemQuantityUpdated, ev.Type)
	assert.Equal(t, EventCartUpdated, readEvent(t, aliceConn).Type)

	// bob only sees the broadcast
	assert.Equal(t, EventCartUpdated, readEvent(t, bobConn).Type)
}

func TestHubRejectsAnonymous(t *testing.T) {
	h := New("orders")
	srv := httptest.NewServer(h.ServeWS(identifyFromQuery))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	h := New("orders")
	srv := httptest.NewServer(h.ServeWS(identifyFromQuery))
	defer srv.Close()

	conn := dial(t, srv, uuid.New())
	require.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
