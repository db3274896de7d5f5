package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/gorilla/csrf"
)

const enquiriesPerPage = 15

func (h *AdminHandler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "all"
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	enquiries, total, err := h.Store.ListEnquiries(r.Context(), status, page, enquiriesPerPage)
	if err != nil {
		http.Error(w, "Error fetching enquiries", http.StatusInternalServerError)
		return
	}

	// Resolve product names for display; deleted products are labelled.
	for i := range enquiries {
		if enquiries[i].ProductID == "" {
			continue
		}
		product, err := h.Store.ProductByID(r.Context(), enquiries[i].ProductID)
		if err == nil && product != nil {
			enquiries[i].ProductName = product.Name
		} else {
			enquiries[i].ProductName = "Product deleted"
		}
	}

	totalPages := int((total + enquiriesPerPage - 1) / enquiriesPerPage)
	if totalPages == 0 {
		totalPages = 1
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Enquiries":     enquiries,
		"CurrentStatus": status,
		"CurrentPage":   page,
		"TotalPages":    totalPages,
		"Total":         total,
		"CsrfField":     csrf.TemplateField(r),
		"Flashes":       GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "admin_enquiries.html", data)
}

func (h *AdminHandler) EnquiryDetail(w http.ResponseWriter, r *http.Request) {
	enquiry, err := h.Store.EnquiryByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Error fetching enquiry", http.StatusInternalServerError)
		return
	}
	if enquiry == nil {
		h.flashAndRedirect(w, r, "error", "Enquiry not found", "/admin/enquiries")
		return
	}

	var product *models.Product
	if enquiry.ProductID != "" {
		product, _ = h.Store.ProductByID(r.Context(), enquiry.ProductID)
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Enquiry":  enquiry,
		"Product":  product,
		"Statuses": []string{models.EnquiryNew, models.EnquiryContacted, models.EnquiryQuoted, models.EnquiryClosed},
		"Flashes":  GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "enquiry_detail.html", data)
}

// UpdateEnquiryStatus moves an enquiry to any member of the fixed status set.
// Values outside the set are rejected before anything is written.
func (h *AdminHandler) UpdateEnquiryStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	id := r.PathValue("id")
	status := r.PathValue("status")

	if !models.ValidEnquiryStatus(status) {
		h.flashAndRedirect(w, r, "error", "Invalid status", "/admin/enquiry/"+id)
		return
	}

	enquiry, err := h.Store.EnquiryByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Error fetching enquiry", http.StatusInternalServerError)
		return
	}
	if enquiry == nil {
		h.flashAndRedirect(w, r, "error", "Enquiry not found", "/admin/enquiries")
		return
	}

	if err := h.Store.UpdateEnquiryStatus(r.Context(), id, status); err != nil {
		slog.Error("Failed to update enquiry status", "id", id, "status", status, "error", err)
		h.flashAndRedirect(w, r, "error", "Error updating enquiry status.", "/admin/enquiry/"+id)
		return
	}

	userID, userName := sessionActor(session)
	h.Activity.Record(r.Context(), "update_enquiry_status",
		"Updated enquiry "+id+" to "+status, userID, userName, clientIP(r))

	h.flashAndRedirect(w, r, "success", "Enquiry status updated!", "/admin/enquiry/"+id)
}

func (h *AdminHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Store.RecentActivities(r.Context(), 100)
	if err != nil {
		http.Error(w, "Error fetching activities", http.StatusInternalServerError)
		return
	}
	h.Render(w, r, "activities.html", map[string]interface{}{
		"Activities": activities,
	})
}
