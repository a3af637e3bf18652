package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", NormalizeIP("::ffff:10.0.0.1"))
	assert.Equal(t, "2001:db8::1", NormalizeIP(" 2001:db8::1 "))
	assert.Equal(t, "unknown", NormalizeIP(""))
	assert.Len(t, NormalizeIP(string(make([]byte, 80))), 45)
}

func TestFortuneFirstDrawPersistsToday(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 20, 14, 30, 0, 0, time.UTC)
	svc := &FortuneService{Store: st, Fortunes: []string{"only one"}, Now: fixedClock(now)}

	assert.True(t, svc.CanAccessToday(ctx, "::ffff:1.2.3.4"))
	f := svc.Draw(ctx, "::ffff:1.2.3.4")
	assert.True(t, f.New)
	assert.Equal(t, "only one", f.Text)

	fa, err := st.GetFortuneAccess(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.NotNil(t, fa)
	assert.True(t, sameDay(fa.LastAccessDate, now))
	assert.Equal(t, "only one", fa.FortuneText)
	assert.False(t, svc.CanAccessToday(ctx, "1.2.3.4"))
}

func TestFortuneSameDayReturnsStoredText(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	svc := &FortuneService{Store: st, Fortunes: []string{"a", "b", "c", "d", "e"}, Now: fixedClock(now)}

	first := svc.Draw(ctx, "5.6.7.8")
	for i := 0; i < 10; i++ {
		svc.Now = fixedClock(now.Add(time.Duration(i) * time.Hour))
		again := svc.Draw(ctx, "5.6.7.8")
		assert.False(t, again.New)
		assert.Equal(t, first.Text, again.Text)
	}
	text, ok := svc.TodayFortune(ctx, "5.6.7.8")
	assert.True(t, ok)
	assert.Equal(t, first.Text, text)
}

func TestFortuneOlderRowIsOverwritten(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	yesterday := time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertFortuneAccess(ctx, "9.9.9.9", yesterday, "old text"))

	today := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	svc := &FortuneService{Store: st, Fortunes: []string{"new text"}, Now: fixedClock(today)}

	assert.True(t, svc.CanAccessToday(ctx, "9.9.9.9"))
	_, ok := svc.TodayFortune(ctx, "9.9.9.9")
	assert.False(t, ok)

	f := svc.Draw(ctx, "9.9.9.9")
	assert.True(t, f.New)
	assert.Equal(t, "new text", f.Text)

	fa, err := st.GetFortuneAccess(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, "new text", fa.FortuneText)
	assert.True(t, sameDay(fa.LastAccessDate, today))
}

func TestFortuneStorageErrorsGrantAccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	st := store.NewFromDB(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectQuery("SELECT .* FROM fortune_accesses").WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery("SELECT .* FROM fortune_accesses").WillReturnError(errors.New("connection reset"))
	mock.ExpectExec("INSERT INTO fortune_accesses").WillReturnError(errors.New("connection reset"))

	svc := &FortuneService{Store: st, Fortunes: []string{"still lucky"}}
	ctx := context.Background()
	assert.True(t, svc.CanAccessToday(ctx, "1.1.1.1"))

	f := svc.Draw(ctx, "1.1.1.1")
	assert.True(t, f.New)
	assert.Equal(t, "still lucky", f.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}
