package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/amalvarghese-30/mumbai-tech/internal/stats"
)

// NavStore feeds the category navigation shown on every page.
type NavStore interface {
	ListCategories(ctx context.Context, limit int64) ([]models.Category, error)
}

// Renderer executes templates and injects the data every page carries: the
// stats snapshot and the top categories for navigation.
type Renderer struct {
	Templates *TemplateCache
	Stats     *stats.Cache
	Nav       NavStore
}

func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	tmpl := rn.Templates.Get(name)
	if tmpl == nil {
		slog.Error("Template not found", "name", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	if rn.Stats != nil {
		data["Stats"] = rn.Stats.Get(r.Context(), false)
	}
	if rn.Nav != nil {
		if categories, err := rn.Nav.ListCategories(r.Context(), 10); err == nil {
			data["NavCategories"] = categories
		} else {
			slog.Error("Failed to load navigation categories", "error", err)
		}
	}

	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to execute template", "name", name, "error", err)
	}
}
