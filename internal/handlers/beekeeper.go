package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/savethebee/honeyweb/internal/service"
)

type BeekeeperHandler struct {
	*Base
	Beekeepers *service.BeekeeperService
	Uploads    *Uploader
}

func (h *BeekeeperHandler) BecomeGet(w http.ResponseWriter, r *http.Request) {
	is, err := h.Beekeepers.ExistsByUserID(r.Context(), h.CurrentUser(r).ID)
	if err != nil {
		h.serverError(w, r, "Beekeeper lookup failed", err)
		return
	}
	if is {
		h.redirectWithFlash(w, r, "/", "error", "You are already a Beekeeper!")
		return
	}
	h.render(w, r, "beekeeper_become.html", map[string]interface{}{"Form": service.BecomeBeekeeperForm{}})
}

func optionalFloat(s string) *float64 {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (h *BeekeeperHandler) BecomePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.redirectWithFlash(w, r, "/Beekeeper/Become", "error", "File too large.")
		return
	}
	form := service.BecomeBeekeeperForm{
		PhoneNumber: r.FormValue("phone_number"),
		Latitude:    optionalFloat(r.FormValue("latitude")),
		Longitude:   optionalFloat(r.FormValue("longitude")),
	}

	taken, err := h.Beekeepers.ExistsByPhone(r.Context(), form.PhoneNumber)
	if err != nil {
		h.serverError(w, r, "Beekeeper lookup failed", err)
		return
	}
	if taken {
		h.flash(w, r, "error", "A Beekeeper with the provided phone number already exists!")
		h.renderStatus(w, r, http.StatusBadRequest, "beekeeper_become.html", map[string]interface{}{"Form": form})
		return
	}

	path, err := h.Uploads.SaveImage(r, "hive_picture")
	switch {
	case err == nil:
		form.HivePicturePath = path
	case errors.Is(err, errNoFile):
	case errors.Is(err, errUnsupportedImage):
		h.flash(w, r, "error", "Unsupported image format.")
		h.renderStatus(w, r, http.StatusBadRequest, "beekeeper_become.html", map[string]interface{}{"Form": form})
		return
	default:
		slog.Warn("Failed to store hive picture", "error", err)
	}

	b, err := h.Beekeepers.Become(r.Context(), h.CurrentUser(r).ID, form)
	switch {
	case err == nil:
		slog.Info("New beekeeper", "beekeeper_id", b.ID)
		h.redirectWithFlash(w, r, "/Honey/All", "success", "You are now a Beekeeper!")
	case errors.Is(err, service.ErrAlreadyBeekeeper):
		h.redirectWithFlash(w, r, "/", "error", "You are already a Beekeeper!")
	case errors.Is(err, service.ErrPhoneTaken):
		h.flash(w, r, "error", "A Beekeeper with the provided phone number already exists!")
		h.renderStatus(w, r, http.StatusBadRequest, "beekeeper_become.html", map[string]interface{}{"Form": form})
	case errors.Is(err, service.ErrInvalidInput):
		for _, m := range validationMessages(err) {
			h.flash(w, r, "error", m)
		}
		h.renderStatus(w, r, http.StatusBadRequest, "beekeeper_become.html", map[string]interface{}{"Form": form})
	default:
		slog.Error("Failed to register beekeeper", "error", err)
		h.redirectWithFlash(w, r, "/", "error",
			"Unexpected error occurred while registering you as a Beekeeper! Please try again later or contact administrator.")
	}
}

func (h *BeekeeperHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.redirectWithFlash(w, r, "/Honey/All", "error", "Beekeeper not found!")
		return
	}
	profile, err := h.Beekeepers.Profile(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		h.redirectWithFlash(w, r, "/Honey/All", "error", "Beekeeper not found!")
		return
	}
	if err != nil {
		h.serverError(w, r, "Error loading beekeeper profile", err)
		return
	}
	h.render(w, r, "beekeeper_profile.html", map[string]interface{}{"Profile": profile})
}

func (h *BeekeeperHandler) All(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Beekeepers.All(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching beekeepers", err)
		return
	}
	h.render(w, r, "beekeeper_all.html", map[string]interface{}{"Beekeepers": cards})
}

// Map lists beekeepers that shared a hive location.
func (h *BeekeeperHandler) Map(w http.ResponseWriter, r *http.Request) {
	points, err := h.Beekeepers.MapPoints(r.Context())
	if err != nil {
		slog.Error("Failed to load map points", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load beekeepers"})
		return
	}
	writeJSON(w, http.StatusOK, points)
}
