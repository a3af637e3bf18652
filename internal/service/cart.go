package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/hub"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/shopspring/decimal"
)

type CartService struct {
	Store *store.Store
	Hub   Broadcaster
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, error) {
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *CartService) view(ctx context.Context, cartID uuid.UUID) (*models.CartView, error) {
	lines, err := s.Store.CartLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	v := &models.CartView{
		Honeys:     []models.CartLine{},
		Propolises: []models.CartLine{},
		TotalPrice: decimal.Zero,
	}
	for _, l := range lines {
		if l.ProductKind == "propolis" {
			v.Propolises = append(v.Propolises, l)
		} else {
			v.Honeys = append(v.Honeys, l)
		}
		v.TotalPrice = v.TotalPrice.Add(l.Subtotal())
	}
	return v, nil
}

// AddToCart adds exactly one of honeyID or propolisID. Adding a product that
// is already in the cart increases its quantity.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, honeyID, propolisID uuid.NullUUID, quantity int) error {
	if honeyID.Valid == propolisID.Valid {
		return ErrInvalidInput
	}
	if quantity < MinOrderQuantity || quantity > MaxOrderQuantity {
		return ErrInvalidQuantity
	}
	if honeyID.Valid {
		h, err := s.Store.GetHoney(ctx, honeyID.UUID)
		if err != nil {
			return err
		}
		if h == nil || !h.IsActive {
			return ErrNotFound
		}
	} else {
		p, err := s.Store.GetPropolis(ctx, propolisID.UUID)
		if err != nil {
			return err
		}
		if p == nil || !p.IsActive {
			return ErrNotFound
		}
	}
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Store.AddCartItem(ctx, cart.ID, honeyID, propolisID, quantity, MaxOrderQuantity); err != nil {
		return err
	}
	s.notifyCart(ctx, userID, cart.ID)
	return nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, cartItemID uuid.UUID) error {
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Store.RemoveCartItem(ctx, cart.ID, cartItemID); err != nil {
		return notFound(err)
	}
	s.notifyCart(ctx, userID, cart.ID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Store.ClearCart(ctx, cart.ID); err != nil {
		return err
	}
	s.notifyCart(ctx, userID, cart.ID)
	return nil
}

// UpdateQuantity sets a line's quantity and returns the new cart total.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, cartItemID uuid.UUID, quantity int) (decimal.Decimal, error) {
	if quantity < MinOrderQuantity || quantity > MaxOrderQuantity {
		return decimal.Zero, ErrInvalidQuantity
	}
	cart, err := s.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.Store.UpdateCartItemQuantity(ctx, cart.ID, cartItemID, quantity); err != nil {
		return decimal.Zero, notFound(err)
	}
	v, err := s.view(ctx, cart.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if s.Hub != nil {
		s.Hub.SendToUser(userID, hub.Event{Type: hub.EventCartItemQuantityUpdated, Payload: map[string]interface{}{
			"cartItemId": cartItemID,
			"quantity":   quantity,
			"totalPrice": v.TotalPrice,
		}})
	}
	return v.TotalPrice, nil
}

func (s *CartService) notifyCart(ctx context.Context, userID, cartID uuid.UUID) {
	if s.Hub == nil {
		return
	}
	v, err := s.view(ctx, cartID)
	if err != nil {
		slog.Warn("Failed to load cart for live update", "error", err, "user_id", userID)
		return
	}
	s.Hub.SendToUser(userID, hub.Event{Type: hub.EventCartUpdated, Payload: map[string]interface{}{
		"items":      len(v.Honeys) + len(v.Propolises),
		"totalPrice": v.TotalPrice,
	}})
}
