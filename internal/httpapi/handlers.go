package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pauljones0/deal-finder/internal/catalog"
	"github.com/pauljones0/deal-finder/internal/models"
)

type handlers struct {
	deps Deps
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	scope, err := catalog.ParseTimeScope(q.Get("scope"))
	if err != nil {
		return catalog.Filter{}, err
	}
	quick, err := catalog.ParseQuickFilter(q.Get("filter"))
	if err != nil {
		return catalog.Filter{}, err
	}
	category := strings.TrimSpace(q.Get("category"))
	if category == "" {
		category = catalog.AllCategories
	}
	return catalog.Filter{
		Query:    q.Get("query"),
		Category: category,
		Scope:    scope,
		Quick:    quick,
	}, nil
}

func (h *handlers) listDeals(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deals := h.deps.Catalog.ListDeals(r.Context(), f)
	writeJSON(w, http.StatusOK, map[string]any{"deals": deals})
}

func (h *handlers) listGroupedDeals(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	groups := h.deps.Catalog.GroupByDate(h.deps.Catalog.ListDeals(r.Context(), f))
	if groups == nil {
		groups = []models.DateGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *handlers) topDeal(w http.ResponseWriter, r *http.Request) {
	deal, ok := catalog.TopDeal(h.deps.Catalog.ListDeals(r.Context(), catalog.Filter{}))
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"deal": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deal": deal})
}

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.deps.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *handlers) footerSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog.GetFooterSettings(r.Context()))
}

func (h *handlers) adminOverview(w http.ResponseWriter, r *http.Request) {
	data, err := h.deps.Catalog.AdminPageData(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *handlers) createDeal(w http.ResponseWriter, r *http.Request) {
	var in models.DealInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	deal, err := h.deps.Catalog.CreateDeal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "deal": deal})
}

func (h *handlers) deleteDeal(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeleteDeal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *handlers) purgeDeals(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.Catalog.PurgeStaleDeals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "purged": n})
}

type categorizeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *handlers) categorizeDeal(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.deps.Catalog.CategorizeDeal(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "category": category})
}

func (h *handlers) addCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	name, err := h.deps.Catalog.AddCategory(r.Context(), in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "category": name})
}

func (h *handlers) updateFooterSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.FooterSettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	settings, err := h.deps.Catalog.UpdateFooterSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "settings": settings})
}

func (h *handlers) preview(w http.ResponseWriter, r *http.Request) {
	if h.deps.Previewer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "link preview is disabled"})
		return
	}
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeError(w, r, models.NewValidationError("url", "is required"))
		return
	}
	preview, err := h.deps.Previewer.Preview(r.Context(), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "preview": preview})
}
