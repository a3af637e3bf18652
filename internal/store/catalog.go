package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

const propolisListingSelect = `
	SELECT p.id, p.title, p.origin, p.description, p.image_url, p.price, p.net_weight, p.year_made,
	       p.created_on, p.is_active, p.flavour_id, p.beekeeper_id,
	       f.name AS flavour_name,
	       TRIM(u.first_name || ' ' || u.last_name) AS beekeeper_name
	FROM propolises p
	JOIN flavours f ON f.id = p.flavour_id
	JOIN beekeepers b ON b.id = p.beekeeper_id
	JOIN users u ON u.id = b.user_id
`

const beePollenListingSelect = `
	SELECT bp.id, bp.title, bp.origin, bp.description, bp.image_url, bp.price, bp.net_weight,
	       bp.created_on, bp.is_active, bp.beekeeper_id,
	       TRIM(u.first_name || ' ' || u.last_name) AS beekeeper_name
	FROM bee_pollens bp
	JOIN beekeepers b ON b.id = bp.beekeeper_id
	JOIN users u ON u.id = b.user_id
`

func (s *Store) CreatePropolis(ctx context.Context, p *models.Propolis) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedOn.IsZero() {
		p.CreatedOn = now()
	}
	query := `
		INSERT INTO propolises (id, title, origin, description, image_url, price, net_weight, year_made, created_on, is_active, flavour_id, beekeeper_id)
		VALUES (:id, :title, :origin, :description, :image_url, :price, :net_weight, :year_made, :created_on, :is_active, :flavour_id, :beekeeper_id)
	`
	_, err := s.DB.NamedExecContext(ctx, query, p)
	return err
}

func (s *Store) UpdatePropolis(ctx context.Context, p *models.Propolis) error {
	query := `
		UPDATE propolises
		SET title = :title, origin = :origin, description = :description, image_url = :image_url,
		    price = :price, net_weight = :net_weight, year_made = :year_made, flavour_id = :flavour_id
		WHERE id = :id
	`
	_, err := s.DB.NamedExecContext(ctx, query, p)
	return err
}

func (s *Store) GetPropolis(ctx context.Context, id uuid.UUID) (*models.PropolisListing, error) {
	var p models.PropolisListing
	err := s.DB.GetContext(ctx, &p, s.rebind(propolisListingSelect+` WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPropolises(ctx context.Context) ([]models.PropolisListing, error) {
	items := []models.PropolisListing{}
	err := s.DB.SelectContext(ctx, &items, s.rebind(propolisListingSelect+` WHERE p.is_active = ? ORDER BY p.created_on DESC`), true)
	return items, err
}

func (s *Store) SetPropolisActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE propolises SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CreateBeePollen(ctx context.Context, p *models.BeePollen) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedOn.IsZero() {
		p.CreatedOn = now()
	}
	query := `
		INSERT INTO bee_pollens (id, title, origin, description, image_url, price, net_weight, created_on, is_active, beekeeper_id)
		VALUES (:id, :title, :origin, :description, :image_url, :price, :net_weight, :created_on, :is_active, :beekeeper_id)
	`
	_, err := s.DB.NamedExecContext(ctx, query, p)
	return err
}

func (s *Store) ListBeePollens(ctx context.Context) ([]models.BeePollenListing, error) {
	items := []models.BeePollenListing{}
	err := s.DB.SelectContext(ctx, &items, s.rebind(beePollenListingSelect+` WHERE bp.is_active = ? ORDER BY bp.created_on DESC`), true)
	return items, err
}

func (s *Store) SetBeePollenActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE bee_pollens SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.DB.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY id`)
	return categories, err
}

func (s *Store) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := s.DB.GetContext(ctx, &c, s.rebind(`SELECT id, name FROM categories WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListFlavours(ctx context.Context) ([]models.Flavour, error) {
	flavours := []models.Flavour{}
	err := s.DB.SelectContext(ctx, &flavours, `SELECT id, name FROM flavours ORDER BY id`)
	return flavours, err
}
