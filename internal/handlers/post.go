package handlers

import (
	"errors"
	"net/http"

	"github.com/savethebee/honeyweb/internal/service"
)

type PostHandler struct {
	*Base
	Posts *service.PostService
}

func (h *PostHandler) All(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.All(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching posts", err)
		return
	}
	h.render(w, r, "post_all.html", map[string]interface{}{"Posts": posts})
}

func (h *PostHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	post, err := h.Posts.Details(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, "Error fetching post", err)
		return
	}
	h.render(w, r, "post_details.html", map[string]interface{}{"Post": post})
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	target := "/Post/Details/" + id.String()
	_, err := h.Posts.AddComment(r.Context(), h.CurrentUser(r).ID, id, r.FormValue("content"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, target, "success", "Your comment was added.")
	case errors.Is(err, service.ErrInvalidInput):
		h.flashErrors(w, r, validationMessages(err))
		http.Redirect(w, r, target, http.StatusSeeOther)
	default:
		h.serviceError(w, r, "Error adding comment", err)
	}
}

// DeleteComment is allowed for the comment's author and admins.
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	user := h.CurrentUser(r)
	c, err := h.Posts.DeleteComment(r.Context(), user.ID, user.IsAdmin, id)
	if err != nil {
		h.serviceError(w, r, "Error deleting comment", err)
		return
	}
	h.redirectWithFlash(w, r, "/Post/Details/"+c.PostID.String(), "success", "The comment was deleted.")
}
