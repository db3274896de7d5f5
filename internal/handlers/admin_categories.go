package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/amalvarghese-30/mumbai-tech/internal/store"
	"github.com/gorilla/csrf"
)

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), 0)
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}
	for i := range categories {
		if count, err := h.Store.CountProductsInCategory(r.Context(), categories[i].ID.Hex()); err == nil {
			categories[i].ProductCount = count
		}
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Categories": categories,
		"CsrfField":  csrf.TemplateField(r),
		"Flashes":    GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "admin_categories.html", data)
}

func (h *AdminHandler) AddCategoryForm(w http.ResponseWriter, r *http.Request) {
	h.renderCategoryForm(w, r, nil, map[string]string{}, map[string]string{})
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	category, errs := parseCategoryForm(r)
	if len(errs) > 0 {
		session.Save(r, w)
		h.renderCategoryForm(w, r, nil, formValues(r), errs)
		return
	}

	if _, err := h.Store.CreateCategory(r.Context(), &category); err != nil {
		if errors.Is(err, store.ErrDuplicateCategory) {
			session.Save(r, w)
			h.renderCategoryForm(w, r, nil, formValues(r),
				map[string]string{"name": "A category with this name already exists."})
			return
		}
		slog.Error("Failed to create category", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving category."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/category/add", http.StatusSeeOther)
		return
	}

	userID, userName := sessionActor(session)
	h.Activity.Record(r.Context(), "add_category", "Added category: "+category.Name,
		userID, userName, clientIP(r))

	session.AddFlash(FlashMessage{Type: "success", Message: "Category added successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (h *AdminHandler) EditCategoryForm(w http.ResponseWriter, r *http.Request) {
	category, err := h.Store.CategoryByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if category == nil {
		h.flashAndRedirect(w, r, "error", "Category not found", "/admin/categories")
		return
	}
	h.renderCategoryForm(w, r, category, map[string]string{}, map[string]string{})
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	id := r.PathValue("id")

	existing, err := h.Store.CategoryByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		h.flashAndRedirect(w, r, "error", "Category not found", "/admin/categories")
		return
	}

	category, errs := parseCategoryForm(r)
	if len(errs) > 0 {
		session.Save(r, w)
		h.renderCategoryForm(w, r, existing, formValues(r), errs)
		return
	}

	if err := h.Store.UpdateCategory(r.Context(), id, &category); err != nil {
		if errors.Is(err, store.ErrDuplicateCategory) {
			session.Save(r, w)
			h.renderCategoryForm(w, r, existing, formValues(r),
				map[string]string{"name": "A category with this name already exists."})
			return
		}
		slog.Error("Failed to update category", "id", id, "error", err)
		h.flashAndRedirect(w, r, "error", "Error updating category.", "/admin/categories")
		return
	}

	userID, userName := sessionActor(session)
	h.Activity.Record(r.Context(), "edit_category", "Edited category: "+category.Name,
		userID, userName, clientIP(r))

	session.AddFlash(FlashMessage{Type: "success", Message: "Category updated successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// DeleteCategory refuses to remove a category that still has products
// pointing at it; the error message reports the live count.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	id := r.PathValue("id")

	category, err := h.Store.CategoryByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if category == nil {
		h.flashAndRedirect(w, r, "error", "Category not found", "/admin/categories")
		return
	}

	count, err := h.Store.CountProductsInCategory(r.Context(), id)
	if err != nil {
		http.Error(w, "Error checking category usage", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		h.flashAndRedirect(w, r, "error",
			fmt.Sprintf("Cannot delete category with %d products. Move or delete products first.", count),
			"/admin/categories")
		return
	}

	if err := h.Store.DeleteCategory(r.Context(), id); err != nil {
		slog.Error("Failed to delete category", "id", id, "error", err)
		h.flashAndRedirect(w, r, "error", "Error deleting category.", "/admin/categories")
		return
	}

	userID, userName := sessionActor(session)
	h.Activity.Record(r.Context(), "delete_category", "Deleted category: "+category.Name,
		userID, userName, clientIP(r))

	h.flashAndRedirect(w, r, "success", "Category deleted successfully!", "/admin/categories")
}

func (h *AdminHandler) renderCategoryForm(w http.ResponseWriter, r *http.Request, category *models.Category, values, errs map[string]string) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Category":  category,
		"Values":    values,
		"Errors":    errs,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "category_form.html", data)
}

func parseCategoryForm(r *http.Request) (models.Category, map[string]string) {
	c := models.Category{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		IconClass:   strings.TrimSpace(r.FormValue("icon_class")),
	}

	errs := make(map[string]string)
	if n := utf8.RuneCountInString(c.Name); n < 2 || n > 100 {
		errs["name"] = "Category name must be between 2 and 100 characters."
	}
	if utf8.RuneCountInString(c.Description) > 500 {
		errs["description"] = "Description must be at most 500 characters."
	}
	return c, errs
}
