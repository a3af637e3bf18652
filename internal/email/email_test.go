package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func sampleOrder() *models.Order {
	id := uuid.New()
	return &models.Order{
		ID:           id,
		CustomerName: "Maria Petrova",
		Email:        "maria@example.com",
		PhoneNumber:  "0888234567",
		Address:      "Plovdiv, 1 Main St",
		TotalPrice:   decimal.RequireFromString("31.00"),
		Status:       models.OrderProcessing,
		CreatedOn:    time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		Items: []models.OrderItem{{
			OrderID:     id,
			ProductName: "Linden honey",
			Quantity:    2,
			Price:       decimal.RequireFromString("15.50"),
		}},
	}
}

func TestNotifierOrderConfirmation(t *testing.T) {
	rec := &recordingSender{}
	n, err := NewNotifier(rec, "admin@example.com", "https://bees.test")
	require.NoError(t, err)

	o := sampleOrder()
	require.NoError(t, n.OrderConfirmation(context.Background(), o))

	require.Len(t, rec.sent, 1)
	msg := rec.sent[0]
	assert.Equal(t, []string{"maria@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "Order confirmation")
	assert.Contains(t, msg.HTML, "Maria Petrova")
	assert.Contains(t, msg.HTML, o.ID.String())
	assert.Contains(t, msg.HTML, "31.00 лв")
	assert.Contains(t, msg.HTML, "01.03.2025 10:30")
	assert.Contains(t, msg.HTML, "Linden honey")
}

func TestNotifierAdminAlertGoesToAdmin(t *testing.T) {
	rec := &recordingSender{}
	n, err := NewNotifier(rec, "admin@example.com", "https://bees.test")
	require.NoError(t, err)

	require.NoError(t, n.AdminOrderAlert(context.Background(), sampleOrder()))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, []string{"admin@example.com"}, rec.sent[0].To)
	assert.Equal(t, "maria@example.com", rec.sent[0].ReplyTo)
	assert.Contains(t, rec.sent[0].HTML, "https://bees.test/Admin/Orders")
}

func TestNotifierStatusUpdateMessage(t *testing.T) {
	rec := &recordingSender{}
	n, err := NewNotifier(rec, "admin@example.com", "")
	require.NoError(t, err)

	o := sampleOrder()
	o.Status = models.OrderShipped
	require.NoError(t, n.OrderStatusUpdate(context.Background(), o))

	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0].HTML, StatusMessage(models.OrderShipped))
	assert.Equal(t, "The status of your order has been updated.", StatusMessage("Lost"))
}

func TestNotifierReturnsSenderError(t *testing.T) {
	n, err := NewNotifier(&recordingSender{err: errors.New("smtp down")}, "admin@example.com", "")
	require.NoError(t, err)

	err = n.OrderConfirmation(context.Background(), sampleOrder())
	assert.EqualError(t, err, "smtp down")
}

func TestNotifierGoRecoversAndWaits(t *testing.T) {
	n, err := NewNotifier(&recordingSender{}, "admin@example.com", "")
	require.NoError(t, err)

	var ran sync.WaitGroup
	ran.Add(2)
	n.Go("panics", func(ctx context.Context) error {
		defer ran.Done()
		panic("boom")
	})
	n.Go("fails", func(ctx context.Context) error {
		defer ran.Done()
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("nope")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, n.Wait(ctx))
	ran.Wait()
}

func TestLogSenderRequiresRecipient(t *testing.T) {
	assert.ErrorIs(t, LogSender{}.Send(context.Background(), Message{}), ErrNoRecipients)
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "hi"}))
}

func TestResendSender(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	s := NewResendSender("re_test", "Bees <noreply@bees.test>").WithBaseURL(base)

	err = s.Send(context.Background(), Message{To: []string{"x@y.z"}, Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Bees <noreply@bees.test>", got["from"])
	assert.Equal(t, "Hello", got["subject"])
	assert.Equal(t, "<p>hi</p>", got["html"])
}

func TestResendSenderSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad from"}`))
	}))
	defer srv.Close()

	base, _ := url.Parse(srv.URL + "/")
	s := NewResendSender("re_test", "bad").WithBaseURL(base)
	assert.Error(t, s.Send(context.Background(), Message{To: []string{"x@y.z"}}))
}
