package handlers

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/amalvarghese-30/mumbai-tech/internal/stats"
	"github.com/amalvarghese-30/mumbai-tech/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

// AdminStore is everything the admin console reads and writes.
type AdminStore interface {
	UserByUsername(ctx context.Context, username string) (*models.AdminUser, error)

	ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, int64, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context, limit int64) ([]models.Category, error)
	CategoryByID(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (string, error)
	UpdateCategory(ctx context.Context, id string, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CountProductsInCategory(ctx context.Context, categoryID string) (int64, error)

	ListEnquiries(ctx context.Context, status string, page, perPage int) ([]models.Enquiry, int64, error)
	EnquiryByID(ctx context.Context, id string) (*models.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id, status string) error
	RecentEnquiries(ctx context.Context, limit int64) ([]models.Enquiry, error)
	CountNewEnquiries(ctx context.Context) (int64, error)

	RecentActivities(ctx context.Context, limit int64) ([]models.ActivityEntry, error)
}

// ImageSaver persists (and normalizes) product image uploads.
type ImageSaver interface {
	SaveImage(header *multipart.FileHeader) (string, error)
}

type AdminHandler struct {
	Store        AdminStore
	Files        ImageSaver
	Activity     *ActivityLogger
	StatsCache   *stats.Cache
	SessionStore *sessions.CookieStore
	*Renderer
}

func (h *AdminHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	if auth, ok := session.Values["authenticated"].(bool); ok && auth {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "login.html", data)
}

func (h *AdminHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.Store.UserByUsername(r.Context(), username)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Internal Server Error"})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	// Unknown username and wrong password produce the same message so the
	// form cannot be used to enumerate accounts.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid username or password"})
		session.Save(r, w)
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	session.Values["authenticated"] = true
	session.Values["user_id"] = user.ID.Hex()
	session.Values["username"] = user.Username
	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome, " + user.Username + "!"})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	h.Activity.Record(r.Context(), "login", "User "+user.Username+" logged in",
		user.ID.Hex(), user.Username, clientIP(r))

	slog.Info("Login successful", "username", user.Username)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	userID, userName := sessionActor(session)
	if userName != "" {
		h.Activity.Record(r.Context(), "logout", "User "+userName+" logged out",
			userID, userName, clientIP(r))
	}

	session.Values["authenticated"] = false
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// AuthMiddleware gates the admin surface behind the session.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := h.SessionStore.Get(r, adminSessionName)
		if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
			session.AddFlash(FlashMessage{Type: "error", Message: "You must be logged in to access this page."})
			session.Save(r, w)
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot := h.StatsCache.Get(r.Context(), false)

	recentEnquiries, err := h.Store.RecentEnquiries(r.Context(), 10)
	if err != nil {
		http.Error(w, "Error fetching enquiries", http.StatusInternalServerError)
		return
	}
	recentActivities, err := h.Store.RecentActivities(r.Context(), 15)
	if err != nil {
		http.Error(w, "Error fetching activities", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, adminSessionName)
	data := map[string]interface{}{
		"Stats":            snapshot,
		"RecentEnquiries":  recentEnquiries,
		"RecentActivities": recentActivities,
		"Flashes":          GetFlash(session),
	}
	session.Save(r, w)
	h.Render(w, r, "dashboard.html", data)
}

// flashAndRedirect queues one flash message and sends the browser on.
func (h *AdminHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	session.AddFlash(FlashMessage{Type: kind, Message: message})
	session.Save(r, w)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// sessionActor pulls the logged-in admin's identity out of the session.
func sessionActor(session *sessions.Session) (userID, userName string) {
	userID, _ = session.Values["user_id"].(string)
	userName, _ = session.Values["username"].(string)
	return userID, userName
}
