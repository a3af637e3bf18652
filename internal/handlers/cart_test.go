package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	handler *CartHandler
	buyer   uuid.UUID
	cookies []*http.Cookie
	itemID  uuid.UUID
}

func newCartFixture(t *testing.T) cartFixture {
	t.Helper()
	st := newTestStore(t)
	base := newTestBase(t)
	carts := &service.CartService{Store: st}
	h := &CartHandler{
		Base:   base,
		Carts:  carts,
		Orders: &service.OrderService{Store: st},
		Users:  &service.UserService{Store: st},
	}

	honey := createHoney(t, st, "bee@example.com", "0888111222")
	buyer := createUser(t, st, "buyer@example.com")
	ctx := context.Background()
	require.NoError(t, carts.AddToCart(ctx, buyer.ID, optionalUUID(honey.ID.String()), uuid.NullUUID{}, 1))
	cart, err := carts.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Honeys, 1)

	return cartFixture{
		handler: h,
		buyer:   buyer.ID,
		cookies: signedIn(t, base, buyer.ID, false),
		itemID:  cart.Honeys[0].CartItemID,
	}
}

func (f cartFixture) update(t *testing.T, itemID, quantity string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := withCookies(postForm("/User/UpdateCartItem", url.Values{
		"cart_item_id": {itemID},
		"quantity":     {quantity},
	}), f.cookies)
	rec := httptest.NewRecorder()
	f.handler.UpdateCartItem(rec, req)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestUpdateCartItemReturnsTotal(t *testing.T) {
	f := newCartFixture(t)

	rec, body := f.update(t, f.itemID.String(), "3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	total, err := decimal.NewFromString(body["totalPrice"].(string))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("37.50")), total.String())
}

func TestUpdateCartItemRejects(t *testing.T) {
	f := newCartFixture(t)

	rec, body := f.update(t, f.itemID.String(), "11")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = f.update(t, f.itemID.String(), "many")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.update(t, "not-a-uuid", "2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.update(t, uuid.NewString(), "2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrderWithEmptyCart(t *testing.T) {
	f := newCartFixture(t)
	require.NoError(t, f.handler.Carts.ClearCart(context.Background(), f.buyer))

	rec := httptest.NewRecorder()
	f.handler.PlaceOrder(rec, withCookies(postForm("/User/PlaceOrder", url.Values{
		"full_name":    {"Ivan Petrov"},
		"phone_number": {"0888123456"},
		"email":        {"buyer@example.com"},
		"address":      {"Plovdiv"},
	}), f.cookies))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/User/Cart", rec.Header().Get("Location"))
	flashes := flashesAfter(t, f.handler.Base, rec)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Invalid order. Your cart is empty.", flashes[0].Message)
}

func TestPlaceOrderFromCart(t *testing.T) {
	f := newCartFixture(t)

	rec := httptest.NewRecorder()
	f.handler.PlaceOrder(rec, withCookies(postForm("/User/PlaceOrder", url.Values{
		"full_name":    {"Ivan Petrov"},
		"phone_number": {"0888123456"},
		"email":        {"buyer@example.com"},
		"address":      {"Plovdiv"},
	}), f.cookies))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/User/Orders", rec.Header().Get("Location"))

	orders, err := f.handler.Orders.UserOrders(context.Background(), f.buyer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalPrice.Equal(decimal.RequireFromString("12.50")))
}

func TestUserOrdersListsPlacedOrders(t *testing.T) {
	f := newCartFixture(t)
	order, err := f.handler.Orders.CreateOrderFromCart(context.Background(), f.buyer, service.ContactDetails{
		FullName:    "Ivan Petrov",
		PhoneNumber: "0888123456",
		Email:       "buyer@example.com",
		Address:     "Plovdiv",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := withCookies(httptest.NewRequest(http.MethodGet, "/User/Orders", nil), f.cookies)
	f.handler.UserOrders(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-order="`+order.ID.String()+`"`)
}
