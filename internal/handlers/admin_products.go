package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/amalvarghese-30/mumbai-tech/internal/store"
	"github.com/gorilla/csrf"
)

const productsPerPage = 20

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	filter := store.ProductFilter{
		Search:      r.URL.Query().Get("search"),
		CategoryID:  r.URL.Query().Get("category"),
		StockStatus: r.URL.Query().Get("stock_status"),
		Page:        page,
		PerPage:     productsPerPage,
	}

	products, total, err := h.Store.ListProducts(r.Context(), filter)
	if err != nil {
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}

	totalPages := int((total + productsPerPage - 1) / productsPerPage)
	if totalPages == 0 {
		totalPages = 1
	}

	categories, err := h.Store.ListCategories(r.Context(), 0)
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID.Hex()] = c.Name
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Products":         products,
		"Categories":       categories,
		"CategoryNames":    categoryNames,
		"CurrentPage":      page,
		"TotalPages":       totalPages,
		"TotalProducts":    total,
		"Search":           filter.Search,
		"SelectedCategory": filter.CategoryID,
		"SelectedStock":    filter.StockStatus,
		"CsrfField":        csrf.TemplateField(r),
		"Flashes":          GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "admin_products.html", data)
}

func (h *AdminHandler) AddProductForm(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, nil, map[string]string{}, map[string]string{})
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 16MB."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/product/add", http.StatusSeeOther)
		return
	}

	product, errs := parseProductForm(r)
	if len(errs) > 0 {
		session.Save(r, w)
		h.renderProductForm(w, r, nil, formValues(r), errs)
		return
	}

	product.Images = h.saveProductImages(r)
	userID, userName := sessionActor(session)
	product.CreatedBy = userID

	if _, err := h.Store.CreateProduct(r.Context(), &product); err != nil {
		slog.Error("Failed to create product", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving product."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/product/add", http.StatusSeeOther)
		return
	}

	h.Activity.Record(r.Context(), "add_product", "Added product: "+product.Name,
		userID, userName, clientIP(r))

	session.AddFlash(FlashMessage{Type: "success", Message: "Product added successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *AdminHandler) EditProductForm(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.ProductByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		h.flashAndRedirect(w, r, "error", "Product not found", "/admin/products")
		return
	}
	h.renderProductForm(w, r, product, map[string]string{}, map[string]string{})
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	id := r.PathValue("id")

	existing, err := h.Store.ProductByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		h.flashAndRedirect(w, r, "error", "Product not found", "/admin/products")
		return
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 16MB."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/product/edit/"+id, http.StatusSeeOther)
		return
	}

	product, errs := parseProductForm(r)
	if len(errs) > 0 {
		session.Save(r, w)
		h.renderProductForm(w, r, existing, formValues(r), errs)
		return
	}

	// New uploads are appended to the existing gallery.
	product.Images = append(existing.Images, h.saveProductImages(r)...)
	product.CreatedBy = existing.CreatedBy

	if err := h.Store.UpdateProduct(r.Context(), id, &product); err != nil {
		slog.Error("Failed to update product", "id", id, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error updating product."})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/product/edit/"+id, http.StatusSeeOther)
		return
	}

	userID, userName := sessionActor(session)
	h.Activity.Record(r.Context(), "edit_product", "Edited product: "+product.Name,
		userID, userName, clientIP(r))

	session.AddFlash(FlashMessage{Type: "success", Message: "Product updated successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	id := r.PathValue("id")

	product, err := h.Store.ProductByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		h.flashAndRedirect(w, r, "error", "Product not found", "/admin/products")
		return
	}

	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		slog.Error("Failed to delete product", "id", id, "error", err)
		h.flashAndRedirect(w, r, "error", "Error deleting product.", "/admin/products")
		return
	}

	userID, userName := sessionActor(session)
	h.Activity.Record(r.Context(), "delete_product", "Deleted product: "+product.Name,
		userID, userName, clientIP(r))

	h.flashAndRedirect(w, r, "success", "Product deleted successfully!", "/admin/products")
}

func (h *AdminHandler) renderProductForm(w http.ResponseWriter, r *http.Request, product *models.Product, values, errs map[string]string) {
	categories, err := h.Store.ListCategories(r.Context(), 0)
	if err != nil {
		http.Error(w, "Error fetching categories", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Product":    product,
		"Categories": categories,
		"Values":     values,
		"Errors":     errs,
		"CsrfField":  csrf.TemplateField(r),
		"Flashes":    GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "product_form.html", data)
}

// saveProductImages stores every uploaded image, skipping (and logging) the
// ones that fail so a bad file never blocks the rest of the form.
func (h *AdminHandler) saveProductImages(r *http.Request) []string {
	var names []string
	if r.MultipartForm == nil {
		return names
	}
	for _, header := range r.MultipartForm.File["images"] {
		name, err := h.Files.SaveImage(header)
		if err != nil {
			slog.Warn("Skipping product image", "file", header.Filename, "error", err)
			continue
		}
		names = append(names, name)
	}
	return names
}

func parseProductForm(r *http.Request) (models.Product, map[string]string) {
	p := models.Product{
		Name:           strings.TrimSpace(r.FormValue("name")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		CategoryID:     strings.TrimSpace(r.FormValue("category_id")),
		PartNumber:     strings.TrimSpace(r.FormValue("part_number")),
		Manufacturer:   strings.TrimSpace(r.FormValue("manufacturer")),
		MachineType:    strings.TrimSpace(r.FormValue("machine_type")),
		TechnicalSpecs: strings.TrimSpace(r.FormValue("technical_specs")),
		Currency:       strings.TrimSpace(r.FormValue("currency")),
		StockStatus:    r.FormValue("stock_status"),
		IsFeatured:     r.FormValue("is_featured"),
	}
	if p.Currency == "" {
		p.Currency = "INR"
	}
	if p.StockStatus == "" {
		p.StockStatus = models.StockInStock
	}
	if p.IsFeatured == "" {
		p.IsFeatured = "no"
	}

	errs := make(map[string]string)
	if n := utf8.RuneCountInString(p.Name); n < 3 || n > 200 {
		errs["name"] = "Product name must be between 3 and 200 characters."
	}
	if utf8.RuneCountInString(p.Description) < 10 {
		errs["description"] = "Description must be at least 10 characters."
	}
	if p.CategoryID == "" {
		errs["category_id"] = "Please select a category."
	}
	if n := utf8.RuneCountInString(p.PartNumber); n < 3 || n > 100 {
		errs["part_number"] = "Part number must be between 3 and 100 characters."
	}
	if n := utf8.RuneCountInString(p.Manufacturer); n < 2 || n > 100 {
		errs["manufacturer"] = "Manufacturer must be between 2 and 100 characters."
	}
	if !models.ValidStockStatus(p.StockStatus) {
		errs["stock_status"] = "Invalid stock status selected."
	}
	if p.IsFeatured != "yes" && p.IsFeatured != "no" {
		errs["is_featured"] = "Invalid featured selection."
	}

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			errs["price"] = "Price must be a non-negative number."
		} else {
			p.Price = price
		}
	}

	return p, errs
}
