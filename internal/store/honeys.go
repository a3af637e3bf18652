package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
)

type HoneySorting int

const (
	SortNewest HoneySorting = iota
	SortOldest
	SortPriceAscending
	SortPriceDescending
)

// CatalogFilter narrows public product listings.
type CatalogFilter struct {
	CategoryName string
	SearchTerm   string
	Sorting      HoneySorting
	Page         int
	PerPage      int
}

const honeyListingSelect = `
	SELECT h.id, h.title, h.origin, h.description, h.image_url, h.price, h.net_weight, h.year_made,
	       h.created_on, h.is_active, h.category_id, h.beekeeper_id,
	       c.name AS category_name,
	       TRIM(u.first_name || ' ' || u.last_name) AS beekeeper_name
	FROM honeys h
	JOIN categories c ON c.id = h.category_id
	JOIN beekeepers b ON b.id = h.beekeeper_id
	JOIN users u ON u.id = b.user_id
`

func (s *Store) CreateHoney(ctx context.Context, h *models.Honey) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedOn.IsZero() {
		h.CreatedOn = now()
	}
	query := `
		INSERT INTO honeys (id, title, origin, description, image_url, price, net_weight, year_made, created_on, is_active, category_id, beekeeper_id)
		VALUES (:id, :title, :origin, :description, :image_url, :price, :net_weight, :year_made, :created_on, :is_active, :category_id, :beekeeper_id)
	`
	_, err := s.DB.NamedExecContext(ctx, query, h)
	return err
}

func (s *Store) UpdateHoney(ctx context.Context, h *models.Honey) error {
	query := `
		UPDATE honeys
		SET title = :title, origin = :origin, description = :description, image_url = :image_url,
		    price = :price, net_weight = :net_weight, year_made = :year_made, category_id = :category_id
		WHERE id = :id
	`
	_, err := s.DB.NamedExecContext(ctx, query, h)
	return err
}

func (s *Store) GetHoney(ctx context.Context, id uuid.UUID) (*models.HoneyListing, error) {
	var h models.HoneyListing
	err := s.DB.GetContext(ctx, &h, s.rebind(honeyListingSelect+` WHERE h.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHoneys returns one page of active honeys and the total match count.
func (s *Store) ListHoneys(ctx context.Context, f CatalogFilter) ([]models.HoneyListing, int, error) {
	conditions := []string{"h.is_active = ?"}
	args := []interface{}{true}

	if f.CategoryName != "" {
		conditions = append(conditions, "c.name = ?")
		args = append(args, f.CategoryName)
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		conditions = append(conditions, "(LOWER(h.title) LIKE ? OR LOWER(h.origin) LIKE ? OR LOWER(h.description) LIKE ?)")
		args = append(args, like, like, like)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM honeys h JOIN categories c ON c.id = h.category_id` + where
	if err := s.DB.GetContext(ctx, &total, s.rebind(countQuery), args...); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY h.created_on DESC"
	switch f.Sorting {
	case SortOldest:
		order = " ORDER BY h.created_on ASC"
	case SortPriceAscending:
		order = " ORDER BY h.price ASC"
	case SortPriceDescending:
		order = " ORDER BY h.price DESC"
	}

	query := honeyListingSelect + where + order
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.PerPage, (page-1)*f.PerPage)
	}

	honeys := []models.HoneyListing{}
	if err := s.DB.SelectContext(ctx, &honeys, s.rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return honeys, total, nil
}

// ListAllHoneys includes inactive rows; used by the admin back office.
func (s *Store) ListAllHoneys(ctx context.Context) ([]models.HoneyListing, error) {
	honeys := []models.HoneyListing{}
	err := s.DB.SelectContext(ctx, &honeys, honeyListingSelect+` ORDER BY h.created_on DESC`)
	return honeys, err
}

func (s *Store) LastHoneys(ctx context.Context, n int) ([]models.HoneyListing, error) {
	honeys := []models.HoneyListing{}
	query := honeyListingSelect + ` WHERE h.is_active = ? ORDER BY h.created_on DESC LIMIT ?`
	err := s.DB.SelectContext(ctx, &honeys, s.rebind(query), true, n)
	return honeys, err
}

func (s *Store) HoneysByBeekeeper(ctx context.Context, beekeeperID uuid.UUID) ([]models.HoneyListing, error) {
	honeys := []models.HoneyListing{}
	query := honeyListingSelect + ` WHERE h.is_active = ? AND h.beekeeper_id = ? ORDER BY h.created_on DESC`
	err := s.DB.SelectContext(ctx, &honeys, s.rebind(query), true, beekeeperID)
	return honeys, err
}

// FirstActiveHoneyInCategory returns any active honey of the category, or nil.
func (s *Store) FirstActiveHoneyInCategory(ctx context.Context, categoryID int) (*models.Honey, error) {
	var h models.Honey
	query := `
		SELECT id, title, origin, description, image_url, price, net_weight, year_made, created_on, is_active, category_id, beekeeper_id
		FROM honeys WHERE category_id = ? AND is_active = ? ORDER BY created_on LIMIT 1
	`
	err := s.DB.GetContext(ctx, &h, s.rebind(query), categoryID, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) SetHoneyActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`UPDATE honeys SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CountActiveHoneys(ctx context.Context) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, s.rebind(`SELECT COUNT(*) FROM honeys WHERE is_active = ?`), true)
	return n, err
}
