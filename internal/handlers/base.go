package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/savethebee/honeyweb/internal/service"
)

const SessionName = "honeyweb-session"

// Session keys.
const (
	keyAuthenticated = "authenticated"
	keyUserID        = "user_id"
	keyIsAdmin       = "is_admin"
	keyUserName      = "user_name"
)

// CurrentUser is the signed-in user as stored in the session cookie.
type CurrentUser struct {
	ID            uuid.UUID
	Name          string
	IsAdmin       bool
	Authenticated bool
}

// Base carries what every handler group needs to read sessions and render pages.
type Base struct {
	SessionStore *sessions.CookieStore
	Templates    *TemplateCache
}

func (b *Base) session(r *http.Request) *sessions.Session {
	// A cookie signed with an old key yields an error and a fresh session.
	session, _ := b.SessionStore.Get(r, SessionName)
	return session
}

// CurrentUser reads the signed-in user from the session.
func (b *Base) CurrentUser(r *http.Request) CurrentUser {
	session := b.session(r)
	auth, _ := session.Values[keyAuthenticated].(bool)
	idStr, _ := session.Values[keyUserID].(string)
	id, err := uuid.Parse(idStr)
	if !auth || err != nil {
		return CurrentUser{}
	}
	name, _ := session.Values[keyUserName].(string)
	admin, _ := session.Values[keyIsAdmin].(bool)
	return CurrentUser{ID: id, Name: name, IsAdmin: admin, Authenticated: true}
}

// Identify adapts the session for websocket hubs.
func (b *Base) Identify(r *http.Request) (uuid.UUID, bool) {
	u := b.CurrentUser(r)
	return u.ID, u.Authenticated
}

// IdentifyAdmin only accepts admins.
func (b *Base) IdentifyAdmin(r *http.Request) (uuid.UUID, bool) {
	u := b.CurrentUser(r)
	return u.ID, u.Authenticated && u.IsAdmin
}

func (b *Base) signIn(w http.ResponseWriter, r *http.Request, id uuid.UUID, name string, admin bool) error {
	session := b.session(r)
	session.Values[keyAuthenticated] = true
	session.Values[keyUserID] = id.String()
	session.Values[keyUserName] = name
	session.Values[keyIsAdmin] = admin
	session.Options.Path = "/"
	return session.Save(r, w)
}

func (b *Base) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	session := b.session(r)
	session.AddFlash(FlashMessage{Type: kind, Message: msg})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

// redirectWithFlash adds a flash message and sends a 303 to target.
func (b *Base) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, msg string) {
	b.flash(w, r, kind, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// render executes a page inside the layout with the common page data.
func (b *Base) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	b.renderStatus(w, r, http.StatusOK, name, data)
}

func (b *Base) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	session := b.session(r)
	data["CsrfField"] = csrf.TemplateField(r)
	data["CsrfToken"] = csrf.Token(r)
	data["Flashes"] = GetFlash(session)
	data["User"] = b.CurrentUser(r)
	session.Save(r, w) // clears the flashes just read

	var buf bytes.Buffer
	if err := b.Templates.Render(&buf, name, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// serverError logs err and shows the generic error page.
func (b *Base) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	http.Redirect(w, r, "/Home/Error?statusCode=500", http.StatusSeeOther)
}

// serviceError maps domain errors to a status page.
func (b *Base) serviceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotBeekeeper):
		http.Redirect(w, r, "/Home/Error?statusCode=403", http.StatusSeeOther)
	default:
		b.serverError(w, r, msg, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// validationMessages flattens a *service.ValidationError for flashing.
func validationMessages(err error) []string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, 0, len(verr.Fields))
		for _, m := range verr.Fields {
			msgs = append(msgs, m)
		}
		return msgs
	}
	var idErr *service.IdentityError
	if errors.As(err, &idErr) {
		return idErr.Messages()
	}
	return nil
}

func (b *Base) flashErrors(w http.ResponseWriter, r *http.Request, msgs []string) {
	session := b.session(r)
	for _, m := range msgs {
		session.AddFlash(FlashMessage{Type: "error", Message: m})
	}
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

// back returns the Referer or fallback.
func back(r *http.Request, fallback string) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return fallback
}
