package handlers

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// EnquiryStore is the slice of the store the intake pipeline needs.
type EnquiryStore interface {
	CreateEnquiry(ctx context.Context, e *models.Enquiry) (string, error)
	EnquiryByID(ctx context.Context, id string) (*models.Enquiry, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

// BlobSaver persists the optional specification file.
type BlobSaver interface {
	Save(header *multipart.FileHeader) (string, error)
}

// Notifier dispatches the two enquiry emails in the background.
type Notifier interface {
	NotifyEnquiry(enquiryID string, e models.Enquiry, productName string)
}

type EnquiryHandler struct {
	Store        EnquiryStore
	Files        BlobSaver
	Mailer       Notifier
	SessionStore *sessions.CookieStore
	*Renderer
}

// Form renders the enquiry form, pre-selecting a product when linked from a
// product page.
func (h *EnquiryHandler) Form(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")

	var product *models.Product
	if productID != "" {
		// Best effort: a dead product link still gets a usable form.
		product, _ = h.Store.ProductByID(r.Context(), productID)
	}

	session, _ := h.SessionStore.Get(r, publicSessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Product":   product,
		"ProductID": productID,
		"Values":    map[string]string{},
		"Errors":    map[string]string{},
	}
	session.Save(r, w)
	h.Render(w, r, "enquiry.html", data)
}

// Submit runs the intake pipeline: validate, persist the attachment, insert
// the enquiry, then hand off to the notifier without waiting on it.
func (h *EnquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data. Files may be at most 16MB."})
		session.Save(r, w)
		http.Redirect(w, r, "/enquiry", http.StatusSeeOther)
		return
	}

	enquiry, errs := parseEnquiryForm(r)
	if len(errs) > 0 {
		data := map[string]interface{}{
			"CsrfField": csrf.TemplateField(r),
			"Flashes":   GetFlash(session),
			"Errors":    errs,
			"Values":    formValues(r),
			"ProductID": enquiry.ProductID,
		}
		session.Save(r, w)
		h.Render(w, r, "enquiry.html", data)
		return
	}

	// Product resolution is best effort; an unresolvable reference is
	// carried through as opaque text.
	productName := ""
	if enquiry.ProductID != "" {
		if product, err := h.Store.ProductByID(r.Context(), enquiry.ProductID); err == nil && product != nil {
			productName = product.Name
		}
	}

	// At most one specification file; a blob store failure degrades to no
	// attachment rather than rejecting the enquiry.
	if files := r.MultipartForm.File["spec_file"]; len(files) > 0 {
		name, err := h.Files.Save(files[0])
		if err != nil {
			slog.Warn("Failed to store enquiry attachment, continuing without it",
				"file", files[0].Filename, "error", err)
		} else {
			enquiry.Attachments = []string{name}
		}
	}

	enquiry.Status = models.EnquiryNew
	enquiry.CreatedAt = time.Now().UTC()
	enquiry.IPAddress = clientIP(r)

	id, err := h.Store.CreateEnquiry(r.Context(), &enquiry)
	if err != nil {
		slog.Error("Failed to persist enquiry", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to submit your enquiry. Please try again."})
		session.Save(r, w)
		http.Redirect(w, r, "/enquiry", http.StatusSeeOther)
		return
	}

	// Fire and forget: the response never waits on email delivery.
	go h.Mailer.NotifyEnquiry(id, enquiry, productName)

	session.AddFlash(FlashMessage{Type: "success", Message: "Your enquiry has been submitted successfully! We will contact you soon."})
	session.Save(r, w)
	http.Redirect(w, r, "/enquiry/success/"+id, http.StatusSeeOther)
}

func (h *EnquiryHandler) Success(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSessionName)

	enquiry, err := h.Store.EnquiryByID(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "Error fetching enquiry", http.StatusInternalServerError)
		return
	}
	if enquiry == nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Enquiry not found"})
		session.Save(r, w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"Enquiry": enquiry,
		"Flashes": GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "enquiry_success.html", data)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// parseEnquiryForm validates the submitted fields and builds the enquiry
// document. The returned map names each offending field; an empty map means
// the enquiry is ready to persist.
func parseEnquiryForm(r *http.Request) (models.Enquiry, map[string]string) {
	e := models.Enquiry{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Phone:           strings.TrimSpace(r.FormValue("phone")),
		Company:         strings.TrimSpace(r.FormValue("company")),
		Country:         strings.TrimSpace(r.FormValue("country")),
		Industry:        strings.TrimSpace(r.FormValue("industry")),
		Message:         strings.TrimSpace(r.FormValue("message")),
		QuantityUnit:    strings.TrimSpace(r.FormValue("quantity_unit")),
		DeliveryUrgency: strings.TrimSpace(r.FormValue("delivery_urgency")),
		ProductID:       strings.TrimSpace(r.FormValue("product_id")),
	}

	errs := make(map[string]string)

	if n := utf8.RuneCountInString(e.Name); n < 2 || n > 100 {
		errs["name"] = "Name must be between 2 and 100 characters."
	}
	if !emailPattern.MatchString(e.Email) {
		errs["email"] = "Please enter a valid email address."
	}
	if n := len(e.Phone); n < 10 || n > 15 {
		errs["phone"] = "Phone number must be between 10 and 15 characters."
	}
	if utf8.RuneCountInString(e.Message) < 2 {
		errs["message"] = "Please tell us what you need."
	}
	if e.Country == "" {
		errs["country"] = "Please select your country."
	}
	if e.DeliveryUrgency == "" {
		errs["delivery_urgency"] = "Please select a delivery timeframe."
	}

	e.Quantity = 1
	if raw := strings.TrimSpace(r.FormValue("quantity")); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 1 {
			errs["quantity"] = "Quantity must be a whole number of at least 1."
		} else {
			e.Quantity = qty
		}
	}

	return e, errs
}

// formValues flattens the posted form for re-rendering after a validation
// failure.
func formValues(r *http.Request) map[string]string {
	values := make(map[string]string, len(r.Form))
	for key := range r.Form {
		values[key] = r.FormValue(key)
	}
	return values
}
