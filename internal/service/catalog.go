package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/shopspring/decimal"
)

const DefaultHoneysPerPage = 6

// ProductForm carries the editable fields shared by honey, propolis and bee pollen.
// CategoryID is used for honey, FlavourID for propolis.
type ProductForm struct {
	Title       string
	Origin      string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	NetWeight   int
	YearMade    int
	CategoryID  int
	FlavourID   int
}

func (f ProductForm) validate(needYear bool) error {
	v := &ValidationError{}
	if !lengthBetween(f.Title, 2, 50) {
		v.add("title", "Title must be between 2 and 50 characters.")
	}
	if !lengthBetween(f.Origin, 2, 50) {
		v.add("origin", "Origin must be between 2 and 50 characters.")
	}
	if !lengthBetween(f.Description, 10, 1000) {
		v.add("description", "Description must be between 10 and 1000 characters.")
	}
	if f.Price.LessThanOrEqual(decimal.Zero) || f.Price.GreaterThan(decimal.NewFromInt(2000)) {
		v.add("price", "Price must be between 0.01 and 2000.")
	}
	if f.NetWeight < 1 || f.NetWeight > 10000 {
		v.add("net_weight", "Net weight must be between 1 and 10000 grams.")
	}
	if needYear {
		if y := time.Now().Year(); f.YearMade < 2000 || f.YearMade > y {
			v.add("year_made", "Year made must be between 2000 and the current year.")
		}
	}
	return v.orNil()
}

func (f ProductForm) validatePropolis() error {
	if err := f.validate(true); err != nil {
		return err
	}
	if f.FlavourID < 1 {
		return &ValidationError{Fields: map[string]string{"flavour": "Choose a flavour."}}
	}
	return nil
}

// HoneyQuery is the public catalog filter with 1-based paging.
type HoneyQuery struct {
	Category   string
	SearchTerm string
	Sorting    store.HoneySorting
	Page       int
	PerPage    int
}

type HoneyPage struct {
	Honeys     []models.HoneyListing
	Total      int
	Page       int
	TotalPages int
	Categories []models.Category
}

type CatalogService struct {
	Store *store.Store
}

func (s *CatalogService) AllHoneys(ctx context.Context, q HoneyQuery) (*HoneyPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultHoneysPerPage
	}
	honeys, total, err := s.Store.ListHoneys(ctx, store.CatalogFilter{
		CategoryName: q.Category,
		SearchTerm:   q.SearchTerm,
		Sorting:      q.Sorting,
		Page:         q.Page,
		PerPage:      q.PerPage,
	})
	if err != nil {
		return nil, err
	}
	categories, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &HoneyPage{
		Honeys:     honeys,
		Total:      total,
		Page:       q.Page,
		TotalPages: int(math.Ceil(float64(total) / float64(q.PerPage))),
		Categories: categories,
	}, nil
}

func (s *CatalogService) LastThreeHoneys(ctx context.Context) ([]models.HoneyListing, error) {
	return s.Store.LastHoneys(ctx, 3)
}

// HoneyDetails returns an active honey; soft-deleted ones are reported as not found.
func (s *CatalogService) HoneyDetails(ctx context.Context, id uuid.UUID) (*models.HoneyListing, error) {
	h, err := s.Store.GetHoney(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil || !h.IsActive {
		return nil, ErrNotFound
	}
	return h, nil
}

func (s *CatalogService) HoneysByBeekeeper(ctx context.Context, beekeeperID uuid.UUID) ([]models.HoneyListing, error) {
	return s.Store.HoneysByBeekeeper(ctx, beekeeperID)
}

func (s *CatalogService) beekeeperOf(ctx context.Context, userID uuid.UUID) (*models.Beekeeper, error) {
	b, err := s.Store.GetBeekeeperByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotBeekeeper
	}
	return b, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id int) error {
	c, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrInvalidCategory
	}
	return nil
}

func (s *CatalogService) CreateHoney(ctx context.Context, userID uuid.UUID, f ProductForm) (*models.Honey, error) {
	b, err := s.beekeeperOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := f.validate(true); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, f.CategoryID); err != nil {
		return nil, err
	}
	h := &models.Honey{
		Title:       f.Title,
		Origin:      f.Origin,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		Price:       f.Price,
		NetWeight:   f.NetWeight,
		YearMade:    f.YearMade,
		IsActive:    true,
		CategoryID:  f.CategoryID,
		BeekeeperID: b.ID,
	}
	if err := s.Store.CreateHoney(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// canManageHoney allows admins and the owning beekeeper.
func (s *CatalogService) canManageHoney(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	if isAdmin {
		return nil
	}
	owns, err := s.Store.BeekeeperOwnsHoney(ctx, userID, id)
	if err != nil {
		return err
	}
	if !owns {
		return ErrForbidden
	}
	return nil
}

func (s *CatalogService) EditHoney(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID, f ProductForm) error {
	existing, err := s.Store.GetHoney(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if err := s.canManageHoney(ctx, userID, isAdmin, id); err != nil {
		return err
	}
	if err := f.validate(true); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, f.CategoryID); err != nil {
		return err
	}
	h := existing.Honey
	h.Title, h.Origin, h.Description = f.Title, f.Origin, f.Description
	h.Price, h.NetWeight, h.YearMade, h.CategoryID = f.Price, f.NetWeight, f.YearMade, f.CategoryID
	if f.ImageURL != "" {
		h.ImageURL = f.ImageURL
	}
	return s.Store.UpdateHoney(ctx, &h)
}

// DeleteHoney soft-deletes by clearing is_active.
func (s *CatalogService) DeleteHoney(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	if err := s.canManageHoney(ctx, userID, isAdmin, id); err != nil {
		return err
	}
	return notFound(s.Store.SetHoneyActive(ctx, id, false))
}

// SetHoneyActive is the admin toggle; it can also restore a deleted honey.
func (s *CatalogService) SetHoneyActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFound(s.Store.SetHoneyActive(ctx, id, active))
}

func (s *CatalogService) AllHoneysForAdmin(ctx context.Context) ([]models.HoneyListing, error) {
	return s.Store.ListAllHoneys(ctx)
}

func (s *CatalogService) AllPropolises(ctx context.Context) ([]models.PropolisListing, error) {
	return s.Store.ListPropolises(ctx)
}

func (s *CatalogService) PropolisDetails(ctx context.Context, id uuid.UUID) (*models.PropolisListing, error) {
	p, err := s.Store.GetPropolis(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *CatalogService) CreatePropolis(ctx context.Context, userID uuid.UUID, f ProductForm) (*models.Propolis, error) {
	b, err := s.beekeeperOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := f.validatePropolis(); err != nil {
		return nil, err
	}
	p := &models.Propolis{
		Title:       f.Title,
		Origin:      f.Origin,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		Price:       f.Price,
		NetWeight:   f.NetWeight,
		YearMade:    f.YearMade,
		IsActive:    true,
		FlavourID:   f.FlavourID,
		BeekeeperID: b.ID,
	}
	if err := s.Store.CreatePropolis(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) EditPropolis(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID, f ProductForm) error {
	existing, err := s.Store.GetPropolis(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if !isAdmin {
		owns, err := s.Store.BeekeeperOwnsPropolis(ctx, userID, id)
		if err != nil {
			return err
		}
		if !owns {
			return ErrForbidden
		}
	}
	if err := f.validatePropolis(); err != nil {
		return err
	}
	p := existing.Propolis
	p.Title, p.Origin, p.Description = f.Title, f.Origin, f.Description
	p.Price, p.NetWeight, p.YearMade, p.FlavourID = f.Price, f.NetWeight, f.YearMade, f.FlavourID
	if f.ImageURL != "" {
		p.ImageURL = f.ImageURL
	}
	return s.Store.UpdatePropolis(ctx, &p)
}

func (s *CatalogService) DeletePropolis(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	if !isAdmin {
		owns, err := s.Store.BeekeeperOwnsPropolis(ctx, userID, id)
		if err != nil {
			return err
		}
		if !owns {
			return ErrForbidden
		}
	}
	return notFound(s.Store.SetPropolisActive(ctx, id, false))
}

func (s *CatalogService) AllBeePollens(ctx context.Context) ([]models.BeePollenListing, error) {
	return s.Store.ListBeePollens(ctx)
}

func (s *CatalogService) CreateBeePollen(ctx context.Context, userID uuid.UUID, f ProductForm) (*models.BeePollen, error) {
	b, err := s.beekeeperOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := f.validate(false); err != nil {
		return nil, err
	}
	p := &models.BeePollen{
		Title:       f.Title,
		Origin:      f.Origin,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		Price:       f.Price,
		NetWeight:   f.NetWeight,
		IsActive:    true,
		BeekeeperID: b.ID,
	}
	if err := s.Store.CreateBeePollen(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteBeePollen is admin-only.
func (s *CatalogService) DeleteBeePollen(ctx context.Context, id uuid.UUID) error {
	return notFound(s.Store.SetBeePollenActive(ctx, id, false))
}

func (s *CatalogService) AllCategories(ctx context.Context) ([]models.Category, error) {
	return s.Store.ListCategories(ctx)
}

func (s *CatalogService) AllFlavours(ctx context.Context) ([]models.Flavour, error) {
	return s.Store.ListFlavours(ctx)
}

// notFound translates sql.ErrNoRows from store mutations.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
