package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/email"
	"github.com/savethebee/honeyweb/internal/service"
)

type HomeHandler struct {
	*Base
	Catalog  *service.CatalogService
	Posts    *service.PostService
	Orders   *service.OrderService
	Fortunes *service.FortuneService
	Notifier *email.Notifier
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	if h.CurrentUser(r).IsAdmin {
		http.Redirect(w, r, "/Admin", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	honeys, err := h.Catalog.LastThreeHoneys(ctx)
	if err != nil {
		h.serverError(w, r, "Error fetching honeys", err)
		return
	}
	posts, err := h.Posts.LastThree(ctx)
	if err != nil {
		h.serverError(w, r, "Error fetching posts", err)
		return
	}
	formData, err := h.Orders.OrderFormData(ctx)
	if err != nil {
		h.serverError(w, r, "Error loading order form", err)
		return
	}

	h.render(w, r, "home.html", map[string]interface{}{
		"Honeys":        honeys,
		"Posts":         posts,
		"OrderFormData": formData,
	})
}

func (h *HomeHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "contact.html", map[string]interface{}{"Form": email.ContactForm{}})
}

func (h *HomeHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/Home/Contact", "error", "Invalid form data.")
		return
	}
	form := email.ContactForm{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
	if phone := strings.TrimSpace(r.FormValue("number")); phone != "" {
		form.Message += "\n\nPhone: " + phone
	}

	errs := make(map[string]string)
	if form.Name == "" {
		errs["name"] = "Your name is required."
	}
	if !service.IsValidEmail(form.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if form.Subject == "" {
		errs["subject"] = "Subject is required."
	}
	if form.Message == "" {
		errs["message"] = "Message is required."
	}
	if len(errs) > 0 {
		h.flash(w, r, "error", "The email was not sent. Check your details and try again.")
		h.renderStatus(w, r, http.StatusBadRequest, "contact.html", map[string]interface{}{"Form": form, "Errors": errs})
		return
	}

	if err := h.Notifier.Contact(r.Context(), form); err != nil {
		h.serverError(w, r, "Failed to send contact email", err)
		return
	}
	h.redirectWithFlash(w, r, "/", "success", "Thank you for your email!")
}

func (h *HomeHandler) GetOrderFormData(w http.ResponseWriter, r *http.Request) {
	data, err := h.Orders.OrderFormData(r.Context())
	if err != nil {
		slog.Error("Failed to load order form data", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load order form"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *HomeHandler) PlaceOrderFromHomepage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/", "error", "Please fill in all required fields.")
		return
	}

	form := service.QuickOrderForm{
		FullName:    r.FormValue("full_name"),
		Email:       r.FormValue("email"),
		PhoneNumber: r.FormValue("phone_number"),
		Address:     r.FormValue("address"),
		Notes:       r.FormValue("notes"),
	}
	form.HoneyTypeID, _ = strconv.Atoi(r.FormValue("honey_type_id"))
	form.Quantity, _ = strconv.Atoi(r.FormValue("quantity"))
	if id, err := uuid.Parse(r.FormValue("beekeeper_id")); err == nil {
		form.BeekeeperID = uuid.NullUUID{UUID: id, Valid: true}
	}

	order, err := h.Orders.PlaceQuickOrder(r.Context(), form)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/", "success",
			"Order "+order.ID.String()+" was placed. Check your email for the confirmation!")
	case errors.Is(err, service.ErrInvalidInput):
		h.flashErrors(w, r, validationMessages(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, service.ErrInvalidCategory):
		h.redirectWithFlash(w, r, "/", "error", "Please choose one of the listed honey types.")
	default:
		slog.Error("Failed to place quick order", "error", err)
		h.redirectWithFlash(w, r, "/", "error", "We could not place your order. Please try again.")
	}
}

// Fortune draws the caller's fortune of the day.
func (h *HomeHandler) Fortune(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Fortunes.Draw(r.Context(), ClientIP(r)))
}

func (h *HomeHandler) Error(w http.ResponseWriter, r *http.Request) {
	code, _ := strconv.Atoi(r.URL.Query().Get("statusCode"))
	page := "error.html"
	switch code {
	case http.StatusBadRequest, http.StatusNotFound:
		page = "error404.html"
	case http.StatusUnauthorized, http.StatusForbidden:
		page = "error401.html"
	}
	status := http.StatusOK
	if code >= 400 && code < 600 {
		status = code
	}
	w.Header().Set("Cache-Control", "no-store")
	h.renderStatus(w, r, status, page, map[string]interface{}{"StatusCode": code})
}
