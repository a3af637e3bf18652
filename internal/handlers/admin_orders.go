package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/reports"
	"github.com/savethebee/honeyweb/internal/service"
)

const maxExportOrders = 10000

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = service.DefaultOrdersPerPage
	}
	status := models.OrderStatus(r.URL.Query().Get("status"))

	result, err := h.Orders.AllOrders(r.Context(), status, page, limit)
	if errors.Is(err, service.ErrInvalidInput) {
		http.Redirect(w, r, "/Admin/Orders", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error fetching orders", err)
		return
	}
	totalPages := result.TotalPages
	if totalPages == 0 { // Handle case with no orders
		totalPages = 1
	}

	h.render(w, r, "admin_orders.html", map[string]interface{}{
		"Orders":      result.Orders,
		"Statuses":    models.OrderStatuses,
		"Status":      status,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Limit":       limit,
	})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	status := models.OrderStatus(r.FormValue("status"))

	_, err = h.Orders.UpdateStatus(r.Context(), id, status)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, back(r, "/Admin/Orders"), "success", "Order updated!")
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(w, r, back(r, "/Admin/Orders"), "error", "Invalid order status.")
	case errors.Is(err, service.ErrNotFound):
		h.redirectWithFlash(w, r, "/Admin/Orders", "error", "Order not found.")
	default:
		slog.Error("Error updating order status", "error", err, "order_id", id)
		h.redirectWithFlash(w, r, "/Admin/Orders", "error", "Error updating status.")
	}
}

// ExportOrders downloads the orders, optionally filtered by status, as xlsx.
func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	result, err := h.Orders.AllOrders(r.Context(), status, 1, maxExportOrders)
	if errors.Is(err, service.ErrInvalidInput) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error fetching orders for export", err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteOrdersWorkbook(&buf, result.Orders); err != nil {
		slog.Error("Failed to build workbook", "error", err)
		http.Error(w, "Could not build export", http.StatusInternalServerError)
		return
	}
	name := "orders-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", reports.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	buf.WriteTo(w)
}

func (h *AdminHandler) OrderReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	order, err := h.Orders.OrderDetails(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, "Error loading order", err)
		return
	}
	writeReceipt(w, order.ID, func(buf *bytes.Buffer) error { return reports.WriteOrderReceipt(buf, order) })
}
