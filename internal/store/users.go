package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

const userColumns = `id, email, first_name, last_name, phone_number, password_hash, profile_picture_path, is_subscribed, is_admin, created_on`

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedOn.IsZero() {
		u.CreatedOn = now()
	}
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :first_name, :last_name, :phone_number, :password_hash, :profile_picture_path, :is_subscribed, :is_admin, :created_on)
	`
	_, err := s.DB.NamedExecContext(ctx, query, u)
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail matches case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER(?)`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) SetUserSubscribed(ctx context.Context, email string, subscribed bool) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE users SET is_subscribed = ? WHERE LOWER(email) = LOWER(?)`), subscribed, email)
	return err
}

func (s *Store) SetUserAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE users SET is_admin = ? WHERE id = ?`), admin, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_on DESC`)
	return users, err
}
