package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
)

const UnknownBeekeeperName = "Unknown beekeeper"

type BecomeBeekeeperForm struct {
	PhoneNumber     string
	HivePicturePath string
	Latitude        *float64
	Longitude       *float64
}

func (f BecomeBeekeeperForm) validate() error {
	v := &ValidationError{}
	if !IsValidPhone(strings.TrimSpace(f.PhoneNumber)) {
		v.add("phone_number", "Enter a valid Bulgarian phone number.")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		v.add("location", "Latitude and longitude must be given together.")
	}
	if f.Latitude != nil && (*f.Latitude < -90 || *f.Latitude > 90) {
		v.add("location", "Latitude must be between -90 and 90.")
	}
	if f.Longitude != nil && (*f.Longitude < -180 || *f.Longitude > 180) {
		v.add("location", "Longitude must be between -180 and 180.")
	}
	return v.orNil()
}

type BeekeeperService struct {
	Store *store.Store
}

func (s *BeekeeperService) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.Store.BeekeeperExistsByUserID(ctx, userID)
}

func (s *BeekeeperService) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return s.Store.BeekeeperExistsByPhone(ctx, strings.TrimSpace(phone))
}

// Become turns a signed-in user into a beekeeper.
func (s *BeekeeperService) Become(ctx context.Context, userID uuid.UUID, f BecomeBeekeeperForm) (*models.Beekeeper, error) {
	is, err := s.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if is {
		return nil, ErrAlreadyBeekeeper
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	taken, err := s.ExistsByPhone(ctx, f.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPhoneTaken
	}
	b := &models.Beekeeper{
		UserID:               userID,
		PhoneNumber:          strings.TrimSpace(f.PhoneNumber),
		HiveFarmPicturePaths: f.HivePicturePath,
		Latitude:             f.Latitude,
		Longitude:            f.Longitude,
	}
	if err := s.Store.CreateBeekeeper(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Profile loads a beekeeper with the honeys they still list.
func (s *BeekeeperService) Profile(ctx context.Context, id uuid.UUID) (*models.BeekeeperProfile, error) {
	p, err := s.Store.GetBeekeeperProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	honeys, err := s.Store.HoneysByBeekeeper(ctx, id)
	if err != nil {
		return nil, err
	}
	p.OwnedHoneys = honeys
	return p, nil
}

func (s *BeekeeperService) All(ctx context.Context) ([]models.BeekeeperCard, error) {
	return s.Store.ListBeekeeperCards(ctx)
}

func (s *BeekeeperService) MapPoints(ctx context.Context) ([]models.MapPoint, error) {
	return s.Store.ListBeekeeperMapPoints(ctx)
}

func (s *BeekeeperService) FullNameByHoneyID(ctx context.Context, honeyID uuid.UUID) (string, error) {
	name, err := s.Store.BeekeeperFullNameByHoneyID(ctx, honeyID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return UnknownBeekeeperName, nil
	}
	return name, nil
}

func (s *BeekeeperService) HasHoneyWithID(ctx context.Context, userID, honeyID uuid.UUID) (bool, error) {
	return s.Store.BeekeeperOwnsHoney(ctx, userID, honeyID)
}

func (s *BeekeeperService) HasPropolisWithID(ctx context.Context, userID, propolisID uuid.UUID) (bool, error) {
	return s.Store.BeekeeperOwnsPropolis(ctx, userID, propolisID)
}
