package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/shopspring/decimal"
)

// Product kinds, used for form routes and templates.
const (
	kindHoney     = "Honey"
	kindPropolis  = "Propolis"
	kindBeePollen = "BeePollen"
)

type CatalogHandler struct {
	*Base
	Catalog    *service.CatalogService
	Beekeepers *service.BeekeeperService
	Uploads    *Uploader
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

func (h *CatalogHandler) AllHoneys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("limit"))
	sorting, _ := strconv.Atoi(q.Get("sorting"))
	if sorting < int(store.SortNewest) || sorting > int(store.SortPriceDescending) {
		sorting = int(store.SortNewest)
	}

	result, err := h.Catalog.AllHoneys(r.Context(), service.HoneyQuery{
		Category:   q.Get("category"),
		SearchTerm: strings.TrimSpace(q.Get("searchTerm")),
		Sorting:    store.HoneySorting(sorting),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		h.serverError(w, r, "Error fetching honeys", err)
		return
	}
	h.render(w, r, "honey_all.html", map[string]interface{}{
		"Result":     result,
		"Category":   q.Get("category"),
		"SearchTerm": q.Get("searchTerm"),
		"Sorting":    sorting,
		"HasPrev":    result.Page > 1,
		"HasNext":    result.Page < result.TotalPages,
	})
}

func (h *CatalogHandler) HoneyDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	honey, err := h.Catalog.HoneyDetails(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, "Error fetching honey", err)
		return
	}

	user := h.CurrentUser(r)
	canManage := user.IsAdmin
	if user.Authenticated && !canManage {
		if canManage, err = h.Beekeepers.HasHoneyWithID(r.Context(), user.ID, id); err != nil {
			slog.Warn("Ownership check failed", "error", err, "honey_id", id)
		}
	}
	h.render(w, r, "honey_details.html", map[string]interface{}{
		"Honey":     honey,
		"CanManage": canManage,
	})
}

// parseProductForm reads the shared product fields and stores an optional image.
func (h *CatalogHandler) parseProductForm(r *http.Request) (service.ProductForm, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return service.ProductForm{}, &service.ValidationError{Fields: map[string]string{"image": "File too large."}}
	}
	f := service.ProductForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Origin:      strings.TrimSpace(r.FormValue("origin")),
		Description: strings.TrimSpace(r.FormValue("description")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
	}
	f.Price, _ = decimal.NewFromString(strings.Replace(r.FormValue("price"), ",", ".", 1))
	f.NetWeight, _ = strconv.Atoi(r.FormValue("net_weight"))
	f.YearMade, _ = strconv.Atoi(r.FormValue("year_made"))
	f.CategoryID, _ = strconv.Atoi(r.FormValue("category_id"))
	f.FlavourID, _ = strconv.Atoi(r.FormValue("flavour_id"))

	path, err := h.Uploads.SaveImage(r, "image")
	switch {
	case err == nil:
		f.ImageURL = path
	case errors.Is(err, errNoFile):
	case errors.Is(err, errUnsupportedImage):
		return f, &service.ValidationError{Fields: map[string]string{"image": "Unsupported image format."}}
	default:
		return f, err
	}
	return f, nil
}

func (h *CatalogHandler) productFormPage(w http.ResponseWriter, r *http.Request, status int, kind, action string, form service.ProductForm) {
	ctx := r.Context()
	categories, err := h.Catalog.AllCategories(ctx)
	if err != nil {
		h.serverError(w, r, "Error fetching categories", err)
		return
	}
	flavours, err := h.Catalog.AllFlavours(ctx)
	if err != nil {
		h.serverError(w, r, "Error fetching flavours", err)
		return
	}
	h.renderStatus(w, r, status, "product_form.html", map[string]interface{}{
		"Kind":       kind,
		"Action":     action,
		"Form":       form,
		"Categories": categories,
		"Flavours":   flavours,
	})
}

// requireBeekeeper sends non-beekeepers to the become page.
func (h *CatalogHandler) requireBeekeeper(w http.ResponseWriter, r *http.Request) bool {
	user := h.CurrentUser(r)
	ok, err := h.Beekeepers.ExistsByUserID(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, "Beekeeper lookup failed", err)
		return false
	}
	if !ok {
		h.redirectWithFlash(w, r, "/Beekeeper/Become", "error", "You must become a beekeeper before adding products.")
		return false
	}
	return true
}

// saveFailed flashes form problems and re-renders, or reports a server error.
func (h *CatalogHandler) saveFailed(w http.ResponseWriter, r *http.Request, kind, action string, form service.ProductForm, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		for _, m := range validationMessages(err) {
			h.flash(w, r, "error", m)
		}
		h.productFormPage(w, r, http.StatusBadRequest, kind, action, form)
	case errors.Is(err, service.ErrInvalidCategory):
		h.flash(w, r, "error", "Choose an existing category.")
		h.productFormPage(w, r, http.StatusBadRequest, kind, action, form)
	case errors.Is(err, service.ErrNotBeekeeper):
		h.redirectWithFlash(w, r, "/Beekeeper/Become", "error", "You must become a beekeeper before adding products.")
	default:
		h.serviceError(w, r, "Error saving "+kind, err)
	}
}

func (h *CatalogHandler) AddHoneyGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireBeekeeper(w, r) {
		return
	}
	h.productFormPage(w, r, http.StatusOK, kindHoney, "/Honey/Add", service.ProductForm{})
}

func (h *CatalogHandler) AddHoneyPost(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseProductForm(r)
	if err == nil {
		honey, cerr := h.Catalog.CreateHoney(r.Context(), h.CurrentUser(r).ID, form)
		if cerr == nil {
			slog.Info("Honey created", "honey_id", honey.ID)
			h.redirectWithFlash(w, r, "/Honey/Details/"+honey.ID.String(), "success", "The honey was added.")
			return
		}
		err = cerr
	}
	h.saveFailed(w, r, kindHoney, "/Honey/Add", form, err)
}

func (h *CatalogHandler) EditHoneyGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	honey, err := h.Catalog.HoneyDetails(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, "Error fetching honey", err)
		return
	}
	user := h.CurrentUser(r)
	if !user.IsAdmin {
		owns, err := h.Beekeepers.HasHoneyWithID(r.Context(), user.ID, id)
		if err != nil {
			h.serverError(w, r, "Ownership check failed", err)
			return
		}
		if !owns {
			h.serviceError(w, r, "Not the owner", service.ErrForbidden)
			return
		}
	}
	h.productFormPage(w, r, http.StatusOK, kindHoney, "/Honey/Edit/"+id.String(), service.ProductForm{
		Title:       honey.Title,
		Origin:      honey.Origin,
		Description: honey.Description,
		ImageURL:    honey.ImageURL,
		Price:       honey.Price,
		NetWeight:   honey.NetWeight,
		YearMade:    honey.YearMade,
		CategoryID:  honey.CategoryID,
	})
}

func (h *CatalogHandler) EditHoneyPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	action := "/Honey/Edit/" + id.String()
	form, err := h.parseProductForm(r)
	if err == nil {
		user := h.CurrentUser(r)
		if err = h.Catalog.EditHoney(r.Context(), user.ID, user.IsAdmin, id, form); err == nil {
			h.redirectWithFlash(w, r, "/Honey/Details/"+id.String(), "success", "The honey was updated.")
			return
		}
	}
	h.saveFailed(w, r, kindHoney, action, form, err)
}

func (h *CatalogHandler) DeleteHoney(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	user := h.CurrentUser(r)
	if err := h.Catalog.DeleteHoney(r.Context(), user.ID, user.IsAdmin, id); err != nil {
		h.serviceError(w, r, "Error deleting honey", err)
		return
	}
	slog.Info("Honey deleted", "honey_id", id, "by", user.ID)
	h.redirectWithFlash(w, r, "/Honey/All", "success", "The honey was deleted.")
}

func (h *CatalogHandler) AllPropolises(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.AllPropolises(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching propolis", err)
		return
	}
	h.render(w, r, "propolis_all.html", map[string]interface{}{"Propolises": items})
}

func (h *CatalogHandler) PropolisDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	p, err := h.Catalog.PropolisDetails(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, "Error fetching propolis", err)
		return
	}
	user := h.CurrentUser(r)
	canManage := user.IsAdmin
	if user.Authenticated && !canManage {
		if canManage, err = h.Beekeepers.HasPropolisWithID(r.Context(), user.ID, id); err != nil {
			slog.Warn("Ownership check failed", "error", err, "propolis_id", id)
		}
	}
	h.render(w, r, "propolis_details.html", map[string]interface{}{
		"Propolis":  p,
		"CanManage": canManage,
	})
}

func (h *CatalogHandler) AddPropolisGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireBeekeeper(w, r) {
		return
	}
	h.productFormPage(w, r, http.StatusOK, kindPropolis, "/Propolis/Add", service.ProductForm{})
}

func (h *CatalogHandler) AddPropolisPost(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseProductForm(r)
	if err == nil {
		p, cerr := h.Catalog.CreatePropolis(r.Context(), h.CurrentUser(r).ID, form)
		if cerr == nil {
			h.redirectWithFlash(w, r, "/Propolis/Details/"+p.ID.String(), "success", "The propolis was added.")
			return
		}
		err = cerr
	}
	h.saveFailed(w, r, kindPropolis, "/Propolis/Add", form, err)
}

func (h *CatalogHandler) EditPropolisGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	p, err := h.Catalog.PropolisDetails(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, "Error fetching propolis", err)
		return
	}
	user := h.CurrentUser(r)
	if !user.IsAdmin {
		owns, err := h.Beekeepers.HasPropolisWithID(r.Context(), user.ID, id)
		if err != nil {
			h.serverError(w, r, "Ownership check failed", err)
			return
		}
		if !owns {
			h.serviceError(w, r, "Not the owner", service.ErrForbidden)
			return
		}
	}
	h.productFormPage(w, r, http.StatusOK, kindPropolis, "/Propolis/Edit/"+id.String(), service.ProductForm{
		Title:       p.Title,
		Origin:      p.Origin,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		NetWeight:   p.NetWeight,
		YearMade:    p.YearMade,
		FlavourID:   p.FlavourID,
	})
}

func (h *CatalogHandler) EditPropolisPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	form, err := h.parseProductForm(r)
	if err == nil {
		user := h.CurrentUser(r)
		if err = h.Catalog.EditPropolis(r.Context(), user.ID, user.IsAdmin, id, form); err == nil {
			h.redirectWithFlash(w, r, "/Propolis/Details/"+id.String(), "success", "The propolis was updated.")
			return
		}
	}
	h.saveFailed(w, r, kindPropolis, "/Propolis/Edit/"+id.String(), form, err)
}

func (h *CatalogHandler) DeletePropolis(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	user := h.CurrentUser(r)
	if err := h.Catalog.DeletePropolis(r.Context(), user.ID, user.IsAdmin, id); err != nil {
		h.serviceError(w, r, "Error deleting propolis", err)
		return
	}
	h.redirectWithFlash(w, r, "/Propolis/All", "success", "The propolis was deleted.")
}

func (h *CatalogHandler) AllBeePollens(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.AllBeePollens(r.Context())
	if err != nil {
		h.serverError(w, r, "Error fetching bee pollen", err)
		return
	}
	h.render(w, r, "bee_pollen_all.html", map[string]interface{}{"BeePollens": items})
}

func (h *CatalogHandler) AddBeePollenGet(w http.ResponseWriter, r *http.Request) {
	if !h.requireBeekeeper(w, r) {
		return
	}
	h.productFormPage(w, r, http.StatusOK, kindBeePollen, "/BeePollen/Add", service.ProductForm{})
}

func (h *CatalogHandler) AddBeePollenPost(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseProductForm(r)
	if err == nil {
		if _, err = h.Catalog.CreateBeePollen(r.Context(), h.CurrentUser(r).ID, form); err == nil {
			h.redirectWithFlash(w, r, "/BeePollen/All", "success", "The bee pollen was added.")
			return
		}
	}
	h.saveFailed(w, r, kindBeePollen, "/BeePollen/Add", form, err)
}

// DeleteBeePollen hides a bee pollen listing. Admin only.
func (h *CatalogHandler) DeleteBeePollen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
		return
	}
	if err := h.Catalog.DeleteBeePollen(r.Context(), id); err != nil {
		h.serviceError(w, r, "Error deleting bee pollen", err)
		return
	}
	h.redirectWithFlash(w, r, "/BeePollen/All", "success", "The bee pollen was deleted.")
}
