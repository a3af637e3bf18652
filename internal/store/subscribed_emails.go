package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

// AddSubscribedEmail is a no-op when the address is already on the list.
func (s *Store) AddSubscribedEmail(ctx context.Context, email string) error {
	query := `INSERT INTO subscribed_emails (id, email, subscribed_on) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`
	_, err := s.DB.ExecContext(ctx, s.rebind(query), uuid.New(), email, now())
	return err
}

func (s *Store) RemoveSubscribedEmail(ctx context.Context, email string) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM subscribed_emails WHERE LOWER(email) = LOWER(?)`), email)
	return err
}

func (s *Store) IsEmailSubscribed(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.rebind(`SELECT COUNT(*) FROM subscribed_emails WHERE LOWER(email) = LOWER(?)`), email)
	return n > 0, err
}

func (s *Store) ListSubscribedEmails(ctx context.Context) ([]models.SubscribedEmail, error) {
	emails := []models.SubscribedEmail{}
	err := s.DB.SelectContext(ctx, &emails, `SELECT id, email, subscribed_on FROM subscribed_emails ORDER BY subscribed_on DESC`)
	return emails, err
}
