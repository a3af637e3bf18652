package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/savethebee/honeyweb/internal/service"
)

type NewsletterHandler struct {
	*Base
	Newsletter *service.NewsletterService
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	err := h.Newsletter.Subscribe(r.Context(), r.FormValue("email"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, back(r, "/"), "success", "You are now subscribed to the newsletter!")
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(w, r, back(r, "/"), "error", "Invalid email format.")
	default:
		slog.Error("Newsletter subscription failed", "error", err)
		h.redirectWithFlash(w, r, back(r, "/"), "error", "Something went wrong while subscribing to the newsletter.")
	}
}

func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	err := h.Newsletter.Unsubscribe(r.Context(), r.FormValue("email"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, back(r, "/"), "success", "You have been unsubscribed from the newsletter.")
	case errors.Is(err, service.ErrInvalidInput):
		h.redirectWithFlash(w, r, back(r, "/"), "error", "Invalid email format.")
	default:
		slog.Error("Newsletter unsubscription failed", "error", err)
		h.redirectWithFlash(w, r, back(r, "/"), "error", "Something went wrong while unsubscribing from the newsletter.")
	}
}

// UnsubscribeLink handles the signed link sent in every newsletter.
func (h *NewsletterHandler) UnsubscribeLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.redirectWithFlash(w, r, "/", "error", "Missing unsubscribe token.")
		return
	}
	addr, err := h.Newsletter.UnsubscribeWithToken(r.Context(), token)
	if errors.Is(err, service.ErrInvalidToken) {
		h.renderStatus(w, r, http.StatusBadRequest, "unsubscribed.html", map[string]interface{}{
			"Error": "This unsubscribe link is invalid or has expired.",
		})
		return
	}
	if err != nil {
		h.serverError(w, r, "Failed to unsubscribe via link", err)
		return
	}
	slog.Info("Unsubscribed via link", "email", addr)
	h.render(w, r, "unsubscribed.html", map[string]interface{}{"Email": addr})
}
