package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/reports"
	"github.com/savethebee/honeyweb/internal/service"
)

// CartHandler serves the signed-in user's cart and orders.
type CartHandler struct {
	*Base
	Carts  *service.CartService
	Orders *service.OrderService
	Users  *service.UserService
}

func optionalUUID(s string) uuid.NullUUID {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

func (h *CartHandler) Cart(w http.ResponseWriter, r *http.Request) {
	current := h.CurrentUser(r)
	cart, err := h.Carts.GetCart(r.Context(), current.ID)
	if err != nil {
		h.serverError(w, r, "Error loading cart", err)
		return
	}

	contact := service.ContactDetails{}
	if u, err := h.Users.Get(r.Context(), current.ID); err == nil {
		contact = service.ContactDetails{FullName: u.FullName(), PhoneNumber: u.PhoneNumber, Email: u.Email}
	} else {
		slog.Warn("Could not prefill cart contact details", "error", err, "user_id", current.ID)
	}

	h.render(w, r, "cart.html", map[string]interface{}{
		"Cart":    cart,
		"Contact": contact,
	})
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		qty = 1
	}
	err = h.Carts.AddToCart(r.Context(), h.CurrentUser(r).ID,
		optionalUUID(r.FormValue("honey_id")), optionalUUID(r.FormValue("propolis_id")), qty)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/User/Cart", "success", "The product was added to your cart!")
	case errors.Is(err, service.ErrInvalidQuantity):
		h.redirectWithFlash(w, r, back(r, "/User/Cart"), "error", "Quantity must be between 1 and 10.")
	default:
		if !errors.Is(err, service.ErrNotFound) && !errors.Is(err, service.ErrInvalidInput) {
			slog.Error("Failed to add to cart", "error", err)
		}
		h.redirectWithFlash(w, r, "/User/Cart", "error", "Could not add the product to your cart.")
	}
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(r.FormValue("cart_item_id"))
	if err == nil {
		err = h.Carts.RemoveFromCart(r.Context(), h.CurrentUser(r).ID, itemID)
	}
	if err != nil {
		slog.Warn("Failed to remove cart item", "error", err)
		h.redirectWithFlash(w, r, "/User/Cart", "error", "Could not remove the product from your cart.")
		return
	}
	h.redirectWithFlash(w, r, "/User/Cart", "success", "The product was removed from your cart.")
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.ClearCart(r.Context(), h.CurrentUser(r).ID); err != nil {
		slog.Error("Failed to clear cart", "error", err)
		h.redirectWithFlash(w, r, "/User/Cart", "error", "Could not clear your cart.")
		return
	}
	h.redirectWithFlash(w, r, "/User/Cart", "success", "Your cart was cleared.")
}

// UpdateCartItem changes a line's quantity and answers with the new total.
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(r.FormValue("cart_item_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid cart item"})
		return
	}
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid quantity"})
		return
	}

	total, err := h.Carts.UpdateQuantity(r.Context(), h.CurrentUser(r).ID, itemID, qty)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "totalPrice": total})
	case errors.Is(err, service.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "cart item not found"})
	default:
		slog.Error("Failed to update cart item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false})
	}
}

func (h *CartHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	contact := service.ContactDetails{
		FullName:    r.FormValue("full_name"),
		PhoneNumber: r.FormValue("phone_number"),
		Email:       r.FormValue("email"),
		Address:     r.FormValue("address"),
	}
	order, err := h.Orders.CreateOrderFromCart(r.Context(), h.CurrentUser(r).ID, contact)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/User/Orders", "success", "Order "+order.ID.String()+" was placed successfully.")
	case errors.Is(err, service.ErrEmptyCart):
		h.redirectWithFlash(w, r, "/User/Cart", "error", "Invalid order. Your cart is empty.")
	case errors.Is(err, service.ErrInvalidInput):
		h.flashErrors(w, r, validationMessages(err))
		http.Redirect(w, r, "/User/Cart", http.StatusSeeOther)
	default:
		slog.Error("Failed to place cart order", "error", err)
		h.redirectWithFlash(w, r, "/User/Cart", "error", "We could not place your order. Please try again.")
	}
}

func (h *CartHandler) UserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.UserOrders(r.Context(), h.CurrentUser(r).ID)
	if err != nil {
		h.serverError(w, r, "Error fetching orders", err)
		return
	}
	h.render(w, r, "orders.html", map[string]interface{}{"Orders": orders})
}

// Receipt streams a PDF receipt for one of the user's own orders.
func (h *CartHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	order, err := h.Orders.OrderForUser(r.Context(), h.CurrentUser(r).ID, id)
	if err != nil {
		h.serviceError(w, r, "Error loading order", err)
		return
	}
	writeReceipt(w, order.ID, func(buf *bytes.Buffer) error { return reports.WriteOrderReceipt(buf, order) })
}

func writeReceipt(w http.ResponseWriter, id uuid.UUID, write func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		slog.Error("Failed to build receipt", "error", err, "order_id", id)
		http.Error(w, "Could not build receipt", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", reports.ContentTypePDF)
	w.Header().Set("Content-Disposition", `attachment; filename="receipt-`+id.String()+`.pdf"`)
	buf.WriteTo(w)
}
