package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Stats returns the cached dashboard counters. ?force=true bypasses the cache.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	snap := h.StatsCache.Get(r.Context(), force)
	writeJSON(w, http.StatusOK, snap)
}

// RefreshStats forces a recount and bounces back to wherever the admin came from.
func (h *AdminHandler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	snap := h.StatsCache.Get(r.Context(), true)

	target := r.Referer()
	if target == "" {
		target = "/admin/dashboard"
	}
	h.flashAndRedirect(w, r, "success",
		fmt.Sprintf("Stats refreshed: %d new enquiries", snap.NewEnquiries), target)
}

// NewEnquiriesCount feeds the badge in the admin navigation.
func (h *AdminHandler) NewEnquiriesCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Store.CountNewEnquiries(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "count failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// SearchAPI backs the live search box on the public site.
func (h *PublicHandler) SearchAPI(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, []models.Product{})
		return
	}

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	products, err := h.Store.SearchProducts(r.Context(), query, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// CategoriesAPI lists every category with its live product count.
func (h *PublicHandler) CategoriesAPI(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing failed"})
		return
	}
	for i := range categories {
		count, err := h.Store.CountProductsInCategory(r.Context(), categories[i].ID.Hex())
		if err == nil {
			categories[i].ProductCount = count
		}
	}
	writeJSON(w, http.StatusOK, categories)
}
