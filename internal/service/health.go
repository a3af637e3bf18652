package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/savethebee/honeyweb/internal/store"
)

// DatabaseStatus is reported by /Health/DatabaseStatus.
type DatabaseStatus struct {
	IsConnected       bool      `json:"isConnected"`
	CanCreateUser     bool      `json:"canCreateUser"`
	Status            string    `json:"status"`
	Driver            string    `json:"driver"`
	PendingMigrations []string  `json:"pendingMigrations"`
	UserCount         int       `json:"userCount"`
	Timestamp         time.Time `json:"timestamp"`
}

type HealthService struct {
	Store *store.Store
}

func (s *HealthService) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		slog.Warn("Database ping failed", "error", err)
		return false
	}
	return true
}

// CanCreateUser reports whether the users table is reachable.
func (s *HealthService) CanCreateUser(ctx context.Context) bool {
	_, err := s.Store.CountUsers(ctx)
	return err == nil
}

func (s *HealthService) Status(ctx context.Context) DatabaseStatus {
	st := DatabaseStatus{
		Driver:            s.Store.Driver(),
		PendingMigrations: []string{},
		Timestamp:         time.Now().UTC(),
	}
	st.IsConnected = s.IsConnected(ctx)
	if !st.IsConnected {
		st.Status = "Database is not reachable"
		return st
	}
	if pending, err := s.Store.PendingMigrations(ctx); err == nil {
		st.PendingMigrations = pending
	} else {
		slog.Warn("Failed to list pending migrations", "error", err)
	}
	n, err := s.Store.CountUsers(ctx)
	st.CanCreateUser = err == nil
	st.UserCount = n
	switch {
	case !st.CanCreateUser:
		st.Status = "Database reachable but schema is not ready"
	case len(st.PendingMigrations) > 0:
		st.Status = "Database reachable with pending migrations"
	default:
		st.Status = "Database is healthy"
	}
	return st
}
