package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

func (s *Store) CreateBeekeeper(ctx context.Context, b *models.Beekeeper) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedOn.IsZero() {
		b.CreatedOn = now()
	}
	query := `
		INSERT INTO beekeepers (id, user_id, phone_number, hive_farm_picture_paths, latitude, longitude, created_on)
		VALUES (:id, :user_id, :phone_number, :hive_farm_picture_paths, :latitude, :longitude, :created_on)
	`
	_, err := s.DB.NamedExecContext(ctx, query, b)
	return err
}

func (s *Store) BeekeeperExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.rebind(`SELECT COUNT(*) FROM beekeepers WHERE user_id = ?`), userID)
	return n > 0, err
}

func (s *Store) BeekeeperExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.rebind(`SELECT COUNT(*) FROM beekeepers WHERE phone_number = ?`), phone)
	return n > 0, err
}

func (s *Store) GetBeekeeperByUserID(ctx context.Context, userID uuid.UUID) (*models.Beekeeper, error) {
	var b models.Beekeeper
	query := `SELECT id, user_id, phone_number, hive_farm_picture_paths, latitude, longitude, created_on FROM beekeepers WHERE user_id = ?`
	err := s.DB.GetContext(ctx, &b, s.rebind(query), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetBeekeeperProfile(ctx context.Context, id uuid.UUID) (*models.BeekeeperProfile, error) {
	var p models.BeekeeperProfile
	query := `
		SELECT b.id, b.user_id, b.phone_number, b.hive_farm_picture_paths, b.latitude, b.longitude, b.created_on,
		       u.first_name, u.last_name, u.email
		FROM beekeepers b
		JOIN users u ON u.id = b.user_id
		WHERE b.id = ?
	`
	err := s.DB.GetContext(ctx, &p, s.rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListBeekeeperCards(ctx context.Context) ([]models.BeekeeperCard, error) {
	query := `
		SELECT b.id,
		       TRIM(u.first_name || ' ' || u.last_name) AS full_name,
		       u.email, b.phone_number, b.hive_farm_picture_paths, b.created_on,
		       (SELECT COUNT(*) FROM honeys h WHERE h.beekeeper_id = b.id AND h.is_active = ?) AS honey_count,
		       (SELECT COUNT(*) FROM propolises p WHERE p.beekeeper_id = b.id AND p.is_active = ?) AS propolis_count
		FROM beekeepers b
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_on
	`
	cards := []models.BeekeeperCard{}
	err := s.DB.SelectContext(ctx, &cards, s.rebind(query), true, true)
	return cards, err
}

// ListBeekeeperMapPoints returns beekeepers that have both coordinates set.
func (s *Store) ListBeekeeperMapPoints(ctx context.Context) ([]models.MapPoint, error) {
	query := `
		SELECT b.id, TRIM(u.first_name || ' ' || u.last_name) AS full_name, b.latitude, b.longitude
		FROM beekeepers b
		JOIN users u ON u.id = b.user_id
		WHERE b.latitude IS NOT NULL AND b.longitude IS NOT NULL
	`
	points := []models.MapPoint{}
	err := s.DB.SelectContext(ctx, &points, query)
	return points, err
}

func (s *Store) BeekeeperFullNameByHoneyID(ctx context.Context, honeyID uuid.UUID) (string, error) {
	var name string
	query := `
		SELECT TRIM(u.first_name || ' ' || u.last_name)
		FROM honeys h
		JOIN beekeepers b ON b.id = h.beekeeper_id
		JOIN users u ON u.id = b.user_id
		WHERE h.id = ?
	`
	err := s.DB.GetContext(ctx, &name, s.rebind(query), honeyID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// BeekeeperOwnsHoney reports whether the honey belongs to the beekeeper of userID.
func (s *Store) BeekeeperOwnsHoney(ctx context.Context, userID, honeyID uuid.UUID) (bool, error) {
	var n int
	query := `
		SELECT COUNT(*) FROM honeys h
		JOIN beekeepers b ON b.id = h.beekeeper_id
		WHERE b.user_id = ? AND h.id = ?
	`
	err := s.DB.GetContext(ctx, &n, s.rebind(query), userID, honeyID)
	return n > 0, err
}

func (s *Store) BeekeeperOwnsPropolis(ctx context.Context, userID, propolisID uuid.UUID) (bool, error) {
	var n int
	query := `
		SELECT COUNT(*) FROM propolises p
		JOIN beekeepers b ON b.id = p.beekeeper_id
		WHERE b.user_id = ? AND p.id = ?
	`
	err := s.DB.GetContext(ctx, &n, s.rebind(query), userID, propolisID)
	return n > 0, err
}
