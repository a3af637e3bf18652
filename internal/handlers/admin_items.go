package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/service"
)

// ListHoneys shows every honey, including soft-deleted ones.
func (h *AdminHandler) ListHoneys(w http.ResponseWriter, r *http.Request) {
	honeys, err := h.Catalog.AllHoneysForAdmin(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching honeys", err)
		return
	}
	h.render(w, r, "admin_honeys.html", map[string]interface{}{"Honeys": honeys})
}

func (h *AdminHandler) ToggleHoney(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		h.redirectWithFlash(w, r, "/Admin/Honeys", "error", "Invalid ID.")
		return
	}
	active := r.FormValue("active") == "true"
	if err := h.Catalog.SetHoneyActive(r.Context(), id, active); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			slog.Error("Error toggling honey", "error", err, "honey_id", id)
		}
		h.redirectWithFlash(w, r, "/Admin/Honeys", "error", "Error updating honey.")
		return
	}
	msg := "Honey hidden from the catalog."
	if active {
		msg = "Honey restored to the catalog."
	}
	h.redirectWithFlash(w, r, "/Admin/Honeys", "success", msg)
}

func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.All(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching posts", err)
		return
	}
	h.render(w, r, "admin_posts.html", map[string]interface{}{"Posts": posts})
}

func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.redirectWithFlash(w, r, "/Admin/Posts", "error", "File too large. Max 10MB.")
		return
	}
	form := service.PostForm{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Content:  strings.TrimSpace(r.FormValue("content")),
		ImageURL: strings.TrimSpace(r.FormValue("image_url")),
	}
	path, err := h.Uploads.SaveImage(r, "image")
	switch {
	case err == nil:
		form.ImageURL = path
	case errors.Is(err, errNoFile):
	case errors.Is(err, errUnsupportedImage):
		h.redirectWithFlash(w, r, "/Admin/Posts", "error", "Unsupported image format. Only PNG, JPG, JPEG and GIF are allowed.")
		return
	default:
		h.serverError(w, r, "Error saving image file", err)
		return
	}

	p, err := h.Posts.Create(r.Context(), h.CurrentUser(r).ID, form)
	if errors.Is(err, service.ErrInvalidInput) {
		h.flashErrors(w, r, validationMessages(err))
		http.Redirect(w, r, "/Admin/Posts", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, r, "Error saving post", err)
		return
	}
	h.redirectWithFlash(w, r, "/Post/Details/"+p.ID.String(), "success", "Post published successfully!")
}

func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		h.redirectWithFlash(w, r, "/Admin/Posts", "error", "Invalid ID.")
		return
	}
	if err := h.Posts.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			slog.Error("Error deleting post", "error", err, "post_id", id)
		}
		h.redirectWithFlash(w, r, "/Admin/Posts", "error", "Error deleting post.")
		return
	}
	h.redirectWithFlash(w, r, "/Admin/Posts", "success", "Post deleted successfully!")
}
