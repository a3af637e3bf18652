package service

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/savethebee/honeyweb/internal/metrics"
	"github.com/savethebee/honeyweb/internal/store"
)

const maxIPLength = 45

var DefaultFortunes = []string{
	"A sweet surprise is waiting for you today.",
	"Like the bee, your hard work will turn into honey.",
	"Good news will arrive before the flowers close tonight.",
	"A friend will share something golden with you.",
	"Patience fills the hive. Your moment is near.",
	"Today is a good day to try something new.",
	"The busiest bee has no time for sorrow.",
	"Kind words are like honey: sweet to the soul.",
	"A small step today becomes a full comb tomorrow.",
	"Someone is grateful for you more than you know.",
}

// Fortune is the result of a daily draw.
type Fortune struct {
	Text string `json:"fortune"`
	New  bool   `json:"isNew"`
}

// FortuneService limits fortune draws to one per client IP per UTC day.
// Storage errors never block a draw.
type FortuneService struct {
	Store    *store.Store
	Fortunes []string
	Now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NormalizeIP strips the IPv4-mapped IPv6 prefix and bounds the length.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	ip = strings.TrimPrefix(ip, "::ffff:")
	if ip == "" {
		ip = "unknown"
	}
	if len(ip) > maxIPLength {
		ip = ip[:maxIPLength]
	}
	return ip
}

func (s *FortuneService) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// CanAccessToday reports whether ip may draw a new fortune.
func (s *FortuneService) CanAccessToday(ctx context.Context, ip string) bool {
	fa, err := s.Store.GetFortuneAccess(ctx, NormalizeIP(ip))
	if err != nil {
		slog.Warn("Fortune lookup failed, granting access", "error", err, "ip", ip)
		return true
	}
	return fa == nil || fa.LastAccessDate.UTC().Before(s.today())
}

// TodayFortune returns the text already drawn today by ip, if any.
func (s *FortuneService) TodayFortune(ctx context.Context, ip string) (string, bool) {
	fa, err := s.Store.GetFortuneAccess(ctx, NormalizeIP(ip))
	if err != nil {
		slog.Warn("Fortune lookup failed", "error", err, "ip", ip)
		return "", false
	}
	if fa == nil || !sameDay(fa.LastAccessDate, s.today()) {
		return "", false
	}
	return fa.FortuneText, true
}

// Record stores text as today's draw for ip.
func (s *FortuneService) Record(ctx context.Context, ip, text string) {
	if err := s.Store.UpsertFortuneAccess(ctx, NormalizeIP(ip), s.today(), text); err != nil {
		slog.Warn("Failed to record fortune access", "error", err, "ip", ip)
	}
}

// Draw returns today's fortune for ip, drawing and recording a new one when
// the ip has not drawn yet today.
func (s *FortuneService) Draw(ctx context.Context, ip string) Fortune {
	fa, err := s.Store.GetFortuneAccess(ctx, NormalizeIP(ip))
	if err != nil {
		slog.Warn("Fortune lookup failed, granting access", "error", err, "ip", ip)
	}
	if err == nil && fa != nil && !fa.LastAccessDate.UTC().Before(s.today()) {
		metrics.RecordFortune("repeat")
		return Fortune{Text: fa.FortuneText}
	}
	text := s.random()
	s.Record(ctx, ip, text)
	metrics.RecordFortune("new")
	return Fortune{Text: text, New: true}
}

func (s *FortuneService) random() string {
	list := s.Fortunes
	if len(list) == 0 {
		list = DefaultFortunes
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return list[s.rnd.Intn(len(list))]
}
