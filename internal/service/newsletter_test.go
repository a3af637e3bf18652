package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/savethebee/honeyweb/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSender struct {
	mu   sync.Mutex
	sent []email.Message
}

func (s *collectingSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "reader@example.com")
	svc := &NewsletterService{Store: st, Secret: []byte("test-secret")}

	require.NoError(t, svc.Subscribe(ctx, " Reader@Example.com "))
	require.NoError(t, svc.Subscribe(ctx, "reader@example.com"))

	ok, err := svc.IsSubscribed(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	reloaded, err := st.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSubscribed)

	subs, err := svc.Subscribers(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	require.NoError(t, svc.Unsubscribe(ctx, "reader@example.com"))
	ok, err = svc.IsSubscribed(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Subscribe(ctx, "nope"), ErrInvalidInput)
}

func TestUnsubscribeTokenRoundTrip(t *testing.T) {
	svc := &NewsletterService{Secret: []byte("test-secret")}
	token, err := svc.UnsubscribeToken("Reader@Example.com")
	require.NoError(t, err)

	addr, err := svc.ParseUnsubscribeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", addr)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.ParseUnsubscribeToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := &NewsletterService{Secret: []byte("another-secret")}
	_, err = other.ParseUnsubscribeToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseUnsubscribeToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnsubscribeWithToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &NewsletterService{Store: st, Secret: []byte("test-secret")}
	require.NoError(t, svc.Subscribe(ctx, "reader@example.com"))

	token, err := svc.UnsubscribeToken("reader@example.com")
	require.NoError(t, err)
	addr, err := svc.UnsubscribeWithToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", addr)

	ok, err := svc.IsSubscribed(ctx, addr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBroadcastNewsletter(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	rec := &collectingSender{}
	n, err := email.NewNotifier(rec, "admin@example.com", "https://bees.test")
	require.NoError(t, err)
	svc := &NewsletterService{Store: st, Notifier: n, Secret: []byte("test-secret"), BaseURL: "https://bees.test"}

	require.NoError(t, svc.Subscribe(ctx, "a@example.com"))
	require.NoError(t, svc.Subscribe(ctx, "b@example.com"))

	queued, err := svc.Broadcast(ctx, "Spring harvest", "The first acacia honey is here.")
	require.NoError(t, err)
	assert.Equal(t, 2, queued)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, n.Wait(waitCtx))
	require.Len(t, rec.sent, 2)

	link := "https://bees.test/User/Unsubscribe?token="
	assert.Contains(t, rec.sent[0].HTML, link)

	start := strings.Index(rec.sent[0].HTML, link) + len(link)
	end := strings.IndexAny(rec.sent[0].HTML[start:], `"<`)
	token, err := url.QueryUnescape(rec.sent[0].HTML[start : start+end])
	require.NoError(t, err)
	addr, err := svc.ParseUnsubscribeToken(token)
	require.NoError(t, err)
	assert.Equal(t, rec.sent[0].To[0], addr)

	_, err = svc.Broadcast(ctx, "", "body")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
