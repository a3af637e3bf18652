package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/savethebee/honeyweb/internal/service"
)

type UserHandler struct {
	*Base
	Users   *service.UserService
	Uploads *Uploader
}

// safeReturnURL only accepts local paths.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}

func (h *UserHandler) RegisterGet(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", map[string]interface{}{
		"Form":      service.RegisterForm{},
		"ReturnURL": safeReturnURL(r.URL.Query().Get("returnUrl")),
	})
}

func (h *UserHandler) RegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxProfilePictureSize + 1<<20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.redirectWithFlash(w, r, "/User/Register", "error", "The profile picture must be at most 5 MB.")
		return
	}

	form := service.RegisterForm{
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		PhoneNumber:     r.FormValue("phone_number"),
	}
	returnURL := safeReturnURL(r.FormValue("return_url"))

	rerender := func(msgs []string) {
		for _, m := range msgs {
			h.flash(w, r, "error", m)
		}
		form.Password, form.ConfirmPassword = "", ""
		h.renderStatus(w, r, http.StatusBadRequest, "register.html", map[string]interface{}{
			"Form":      form,
			"ReturnURL": returnURL,
		})
	}

	if _, header, err := r.FormFile("profile_picture"); err == nil {
		if err := service.ValidateProfilePicture(header.Filename, header.Size); err != nil {
			rerender(validationMessages(err))
			return
		}
		path, err := h.Uploads.SaveImage(r, "profile_picture")
		if err != nil {
			slog.Warn("Failed to store profile picture", "error", err)
			rerender([]string{"The profile picture could not be processed."})
			return
		}
		form.ProfilePicturePath = path
	}

	u, err := h.Users.Register(r.Context(), form)
	if err != nil {
		if msgs := validationMessages(err); len(msgs) > 0 {
			rerender(msgs)
			return
		}
		h.serverError(w, r, "Failed to register user", err)
		return
	}

	slog.Info("User registered", "user_id", u.ID)
	if err := h.signIn(w, r, u.ID, u.FullName(), u.IsAdmin); err != nil {
		h.serverError(w, r, "Failed to save session", err)
		return
	}
	h.redirectWithFlash(w, r, returnURL, "success", "Welcome, "+u.FirstName+"!")
}

func (h *UserHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", map[string]interface{}{
		"ReturnURL": safeReturnURL(r.URL.Query().Get("returnUrl")),
	})
}

func (h *UserHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	returnURL := safeReturnURL(r.FormValue("return_url"))

	u, err := h.Users.Authenticate(r.Context(), email, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.redirectWithFlash(w, r, "/User/Login", "error", "Invalid email or password")
		return
	}
	if err != nil {
		h.redirectWithFlash(w, r, "/User/Login", "error", "Internal Server Error")
		slog.Error("Login failed", "error", err)
		return
	}

	if err := h.signIn(w, r, u.ID, u.FullName(), u.IsAdmin); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	slog.Info("Login successful", "user_id", u.ID, "admin", u.IsAdmin)
	if u.IsAdmin && returnURL == "/" {
		returnURL = "/Admin"
	}
	h.redirectWithFlash(w, r, returnURL, "success", "Welcome, "+u.FirstName+"!")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	for _, k := range []string{keyAuthenticated, keyUserID, keyUserName, keyIsAdmin} {
		delete(session.Values, k)
	}
	session.AddFlash(FlashMessage{Type: "success", Message: "Logged out successfully!"})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
