package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/savethebee/honeyweb/internal/service"
	"github.com/savethebee/honeyweb/internal/store"
)

// AdminHandler serves the back office. Every route is wrapped in RequireAdmin.
type AdminHandler struct {
	*Base
	Store      *store.Store
	Orders     *service.OrderService
	Catalog    *service.CatalogService
	Posts      *service.PostService
	Users      *service.UserService
	Newsletter *service.NewsletterService
	Uploads    *Uploader
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching stats", err)
		return
	}
	h.render(w, r, "admin_dashboard.html", map[string]interface{}{"Stats": stats})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.All(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching users", err)
		return
	}
	h.render(w, r, "admin_users.html", map[string]interface{}{"Users": users})
}

func (h *AdminHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Newsletter.Subscribers(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching subscribers", err)
		return
	}
	h.render(w, r, "admin_subscribers.html", map[string]interface{}{"Subscribers": subs})
}

// SendNewsletter queues one email per subscriber and returns immediately.
func (h *AdminHandler) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	subject := strings.TrimSpace(r.FormValue("subject"))
	body := strings.TrimSpace(r.FormValue("body"))

	n, err := h.Newsletter.Broadcast(r.Context(), subject, body)
	switch {
	case err == nil:
		slog.Info("Newsletter queued", "recipients", n, "by", h.CurrentUser(r).ID)
		h.redirectWithFlash(w, r, "/Admin/Subscribers", "success", "Newsletter queued for delivery.")
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(w, r, "/Admin/Subscribers", "error", "Subject and message are required.")
	default:
		slog.Error("Failed to send newsletter", "error", err)
		h.redirectWithFlash(w, r, "/Admin/Subscribers", "error", "Error sending the newsletter.")
	}
}
