package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/hub"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func some(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

func TestCartAddIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, bk := createBeekeeper(t, st, "bee@example.com", "0888111222")
	h := createHoney(t, st, bk.ID, 1, "Linden honey", "10.00")
	p := &models.Propolis{
		Title: "Propolis drops", Origin: "Rila", Description: "Alcohol-free propolis tincture.",
		Price: decimal.RequireFromString("7.25"), NetWeight: 30, YearMade: 2024,
		IsActive: true, FlavourID: 2, BeekeeperID: bk.ID,
	}
	require.NoError(t, st.CreatePropolis(ctx, p))
	buyer := createUser(t, st, "buyer@example.com")

	svc := &CartService{Store: st}
	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h.ID), uuid.NullUUID{}, 1))
	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h.ID), uuid.NullUUID{}, 2))
	require.NoError(t, svc.AddToCart(ctx, buyer.ID, uuid.NullUUID{}, some(p.ID), 2))

	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Honeys, 1)
	require.Len(t, cart.Propolises, 1)
	assert.Equal(t, 3, cart.Honeys[0].Quantity)
	assert.True(t, cart.TotalPrice.Equal(decimal.RequireFromString("44.50")))
}

func TestCartAddCapsLineQuantity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, bk := createBeekeeper(t, st, "bee@example.com", "0888111222")
	h := createHoney(t, st, bk.ID, 1, "Linden honey", "10.00")
	buyer := createUser(t, st, "buyer@example.com")
	svc := &CartService{Store: st}

	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h.ID), uuid.NullUUID{}, 8))
	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h.ID), uuid.NullUUID{}, 5))

	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Honeys, 1)
	assert.Equal(t, MaxOrderQuantity, cart.Honeys[0].Quantity)
}

func TestCartHidesDeactivatedProducts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, bk := createBeekeeper(t, st, "bee@example.com", "0888111222")
	kept := createHoney(t, st, bk.ID, 1, "Linden honey", "10.00")
	gone := createHoney(t, st, bk.ID, 3, "Sunflower honey", "8.00")
	buyer := createUser(t, st, "buyer@example.com")
	svc := &CartService{Store: st}

	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(kept.ID), uuid.NullUUID{}, 1))
	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(gone.ID), uuid.NullUUID{}, 2))
	require.NoError(t, st.SetHoneyActive(ctx, gone.ID, false))

	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Honeys, 1)
	assert.Equal(t, kept.ID, cart.Honeys[0].ProductID)
	assert.True(t, cart.TotalPrice.Equal(decimal.RequireFromString("10.00")))

	orders := &OrderService{Store: st}
	order, err := orders.CreateOrderFromCart(ctx, buyer.ID, ContactDetails{
		FullName: "Ivan Petrov", PhoneNumber: "0888123456", Email: "buyer@example.com", Address: "Plovdiv",
	})
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestCartRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	buyer := createUser(t, st, "buyer@example.com")
	svc := &CartService{Store: st}

	err := svc.AddToCart(ctx, buyer.ID, uuid.NullUUID{}, uuid.NullUUID{}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = svc.AddToCart(ctx, buyer.ID, some(uuid.New()), some(uuid.New()), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = svc.AddToCart(ctx, buyer.ID, some(uuid.New()), uuid.NullUUID{}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	err = svc.AddToCart(ctx, buyer.ID, some(uuid.New()), uuid.NullUUID{}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartUpdateQuantityNotifiesOwner(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, bk := createBeekeeper(t, st, "bee@example.com", "0888111222")
	h := createHoney(t, st, bk.ID, 1, "Linden honey", "10.00")
	buyer := createUser(t, st, "buyer@example.com")
	feed := &fakeBroadcaster{}
	svc := &CartService{Store: st, Hub: feed}

	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h.ID), uuid.NullUUID{}, 1))
	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	itemID := cart.Honeys[0].CartItemID

	total, err := svc.UpdateQuantity(ctx, buyer.ID, itemID, 4)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("40.00")))

	last := feed.direct[len(feed.direct)-1]
	assert.Equal(t, buyer.ID, last.userID)
	assert.Equal(t, hub.EventCartItemQuantityUpdated, last.event.Type)

	_, err = svc.UpdateQuantity(ctx, buyer.ID, itemID, 11)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	other := createUser(t, st, "other@example.com")
	_, err = svc.UpdateQuantity(ctx, other.ID, itemID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, bk := createBeekeeper(t, st, "bee@example.com", "0888111222")
	h1 := createHoney(t, st, bk.ID, 1, "Linden honey", "10.00")
	h2 := createHoney(t, st, bk.ID, 2, "Bio honey", "11.00")
	buyer := createUser(t, st, "buyer@example.com")
	svc := &CartService{Store: st}

	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h1.ID), uuid.NullUUID{}, 1))
	require.NoError(t, svc.AddToCart(ctx, buyer.ID, some(h2.ID), uuid.NullUUID{}, 1))
	cart, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Honeys, 2)

	require.NoError(t, svc.RemoveFromCart(ctx, buyer.ID, cart.Honeys[0].CartItemID))
	cart, err = svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Honeys, 1)

	require.NoError(t, svc.ClearCart(ctx, buyer.ID))
	cart, err = svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
	assert.True(t, cart.TotalPrice.IsZero())
}
