package handlers

import (
	"context"
	"net/http"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/amalvarghese-30/mumbai-tech/internal/store"
	"github.com/gorilla/sessions"
)

// PublicStore is the read side of the catalog used by public pages.
type PublicStore interface {
	ListCategories(ctx context.Context, limit int64) ([]models.Category, error)
	CategoryByID(ctx context.Context, id string) (*models.Category, error)
	CountProductsInCategory(ctx context.Context, categoryID string) (int64, error)
	ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, int64, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	FeaturedProducts(ctx context.Context, limit int64) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string, limit int64) ([]models.Product, error)
}

type PublicHandler struct {
	Store        PublicStore
	SessionStore *sessions.CookieStore
	*Renderer
}

func (h *PublicHandler) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), 6)
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}
	featured, err := h.Store.FeaturedProducts(r.Context(), 8)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := map[string]interface{}{
		"Categories":       categories,
		"FeaturedProducts": featured,
		"Flashes":          GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "home.html", data)
}

func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "about.html", nil)
}

func (h *PublicHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), 0)
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}
	for i := range categories {
		count, err := h.Store.CountProductsInCategory(r.Context(), categories[i].ID.Hex())
		if err == nil {
			categories[i].ProductCount = count
		}
	}
	h.Render(w, r, "categories.html", map[string]interface{}{
		"Categories": categories,
	})
}

func (h *PublicHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	category, err := h.Store.CategoryByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if category == nil {
		session, _ := h.SessionStore.Get(r, publicSessionName)
		session.AddFlash(FlashMessage{Type: "error", Message: "Category not found"})
		session.Save(r, w)
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}

	products, _, err := h.Store.ListProducts(r.Context(), store.ProductFilter{CategoryID: id})
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	h.Render(w, r, "category_products.html", map[string]interface{}{
		"Category": category,
		"Products": products,
	})
}

func (h *PublicHandler) Products(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	products, _, err := h.Store.ListProducts(r.Context(), store.ProductFilter{
		Text:       search,
		CategoryID: category,
	})
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	categories, err := h.Store.ListCategories(r.Context(), 0)
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}
	categoryNames := make(map[string]string, len(categories))
	for i := range categories {
		id := categories[i].ID.Hex()
		categoryNames[id] = categories[i].Name
		if count, err := h.Store.CountProductsInCategory(r.Context(), id); err == nil {
			categories[i].ProductCount = count
		}
	}

	h.Render(w, r, "products.html", map[string]interface{}{
		"Products":         products,
		"Categories":       categories,
		"CategoryNames":    categoryNames,
		"SearchQuery":      search,
		"SelectedCategory": category,
	})
}

func (h *PublicHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.ProductByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		session, _ := h.SessionStore.Get(r, publicSessionName)
		session.AddFlash(FlashMessage{Type: "error", Message: "Product not found"})
		session.Save(r, w)
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	product.CategoryName = "Uncategorized"
	if product.CategoryID != "" {
		if category, err := h.Store.CategoryByID(r.Context(), product.CategoryID); err == nil && category != nil {
			product.CategoryName = category.Name
		}
	}

	h.Render(w, r, "product_detail.html", map[string]interface{}{
		"Product": product,
	})
}

// Search runs a full-text query against the product text index.
func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	products, err := h.Store.SearchProducts(r.Context(), query, 50)
	if err != nil {
		http.Error(w, "Error searching products", http.StatusInternalServerError)
		return
	}
	h.Render(w, r, "search_results.html", map[string]interface{}{
		"Products": products,
		"Query":    query,
	})
}
