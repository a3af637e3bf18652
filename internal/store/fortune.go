package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

func (s *Store) GetFortuneAccess(ctx context.Context, ip string) (*models.FortuneAccess, error) {
	var fa models.FortuneAccess
	query := `SELECT id, ip_address, last_access_date, created_on, fortune_text FROM fortune_accesses WHERE ip_address = ?`
	err := s.DB.GetContext(ctx, &fa, s.rebind(query), ip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fa, nil
}

// UpsertFortuneAccess stores the draw for ip, replacing any earlier one.
func (s *Store) UpsertFortuneAccess(ctx context.Context, ip string, day time.Time, text string) error {
	query := `
		INSERT INTO fortune_accesses (id, ip_address, last_access_date, created_on, fortune_text)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (ip_address) DO UPDATE SET last_access_date = ?, fortune_text = ?
	`
	_, err := s.DB.ExecContext(ctx, s.rebind(query), uuid.New(), ip, day, now(), text, day, text)
	return err
}

// PruneFortuneAccesses deletes rows last accessed before cutoff.
func (s *Store) PruneFortuneAccesses(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM fortune_accesses WHERE last_access_date < ?`), cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
