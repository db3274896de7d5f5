package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"github.com/amalvarghese-30/mumbai-tech/internal/store"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// fakeAdminStore satisfies AdminStore with recorded mutations so handlers can
// be tested without a database.
type fakeAdminStore struct {
	users         map[string]*models.AdminUser
	categories    map[string]*models.Category
	enquiries     map[string]*models.Enquiry
	productCounts map[string]int64

	statusUpdates   []string
	deletedCategory []string
	activities      []models.ActivityEntry
}

func (s *fakeAdminStore) UserByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	return s.users[username], nil
}

func (s *fakeAdminStore) ListProducts(context.Context, store.ProductFilter) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (s *fakeAdminStore) ProductByID(context.Context, string) (*models.Product, error) {
	return nil, nil
}
func (s *fakeAdminStore) CreateProduct(context.Context, *models.Product) (string, error) {
	return "", nil
}
func (s *fakeAdminStore) UpdateProduct(context.Context, string, *models.Product) error { return nil }
func (s *fakeAdminStore) DeleteProduct(context.Context, string) error                  { return nil }

func (s *fakeAdminStore) ListCategories(context.Context, int64) ([]models.Category, error) {
	return nil, nil
}
func (s *fakeAdminStore) CategoryByID(_ context.Context, id string) (*models.Category, error) {
	return s.categories[id], nil
}
func (s *fakeAdminStore) CreateCategory(context.Context, *models.Category) (string, error) {
	return "", nil
}
func (s *fakeAdminStore) UpdateCategory(context.Context, string, *models.Category) error { return nil }
func (s *fakeAdminStore) DeleteCategory(_ context.Context, id string) error {
	s.deletedCategory = append(s.deletedCategory, id)
	return nil
}
func (s *fakeAdminStore) CountProductsInCategory(_ context.Context, categoryID string) (int64, error) {
	return s.productCounts[categoryID], nil
}

func (s *fakeAdminStore) ListEnquiries(context.Context, string, int, int) ([]models.Enquiry, int64, error) {
	return nil, 0, nil
}
func (s *fakeAdminStore) EnquiryByID(_ context.Context, id string) (*models.Enquiry, error) {
	return s.enquiries[id], nil
}
func (s *fakeAdminStore) UpdateEnquiryStatus(_ context.Context, id, status string) error {
	s.statusUpdates = append(s.statusUpdates, id+"="+status)
	return nil
}
func (s *fakeAdminStore) RecentEnquiries(context.Context, int64) ([]models.Enquiry, error) {
	return nil, nil
}
func (s *fakeAdminStore) CountNewEnquiries(context.Context) (int64, error) { return 0, nil }

func (s *fakeAdminStore) RecentActivities(context.Context, int64) ([]models.ActivityEntry, error) {
	return s.activities, nil
}

func (s *fakeAdminStore) RecordActivity(_ context.Context, entry *models.ActivityEntry) error {
	s.activities = append(s.activities, *entry)
	return nil
}

func newAdminHandler(t *testing.T, fake *fakeAdminStore) *AdminHandler {
	t.Helper()
	return &AdminHandler{
		Store:        fake,
		Activity:     &ActivityLogger{Store: fake},
		SessionStore: sessions.NewCookieStore([]byte("test-session-key-0123456789abcdef")),
		Renderer:     &Renderer{Templates: loadTestTemplates(t)},
	}
}

// flashesFrom replays the response cookies through the session store to read
// back whatever flash messages the handler queued.
func flashesFrom(t *testing.T, h *AdminHandler, rec *httptest.ResponseRecorder) []FlashMessage {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	session, err := h.SessionStore.Get(req, adminSessionName)
	if err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	return GetFlash(session)
}

func loginForm(username, password string) *http.Request {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "198.51.100.7:40000"
	return req
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakeAdminStore{
		users: map[string]*models.AdminUser{
			"admin": {ID: primitive.NewObjectID(), Username: "admin", Password: string(hash)},
		},
	}
	h := newAdminHandler(t, fake)

	var messages []string
	for _, attempt := range []struct{ user, pass string }{
		{"admin", "wrong password"},
		{"nobody", "correct horse"},
	} {
		rec := httptest.NewRecorder()
		h.LoginPost(rec, loginForm(attempt.user, attempt.pass))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want redirect", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("redirect = %q, want /admin/login", loc)
		}
		flashes := flashesFrom(t, h, rec)
		if len(flashes) != 1 {
			t.Fatalf("got %d flashes, want 1", len(flashes))
		}
		messages = append(messages, flashes[0].Message)
	}

	if messages[0] != messages[1] {
		t.Errorf("wrong password and unknown user produce different messages: %q vs %q", messages[0], messages[1])
	}
	if messages[0] != "Invalid username or password" {
		t.Errorf("message = %q", messages[0])
	}
	if len(fake.activities) != 0 {
		t.Errorf("failed logins recorded %d activity entries, want 0", len(fake.activities))
	}
}

func TestLoginSuccessRecordsActivity(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	fake := &fakeAdminStore{
		users: map[string]*models.AdminUser{
			"admin": {ID: primitive.NewObjectID(), Username: "admin", Password: string(hash)},
		},
	}
	h := newAdminHandler(t, fake)

	rec := httptest.NewRecorder()
	h.LoginPost(rec, loginForm("admin", "correct horse"))

	if loc := rec.Header().Get("Location"); loc != "/admin/dashboard" {
		t.Fatalf("redirect = %q, want /admin/dashboard", loc)
	}
	if len(fake.activities) != 1 {
		t.Fatalf("recorded %d activity entries, want 1", len(fake.activities))
	}
	entry := fake.activities[0]
	if entry.Action != "login" {
		t.Errorf("action = %q, want login", entry.Action)
	}
	if entry.UserName != "admin" {
		t.Errorf("user_name = %q, want admin", entry.UserName)
	}
	if entry.IPAddress != "198.51.100.7" {
		t.Errorf("ip = %q", entry.IPAddress)
	}
}

func TestUpdateEnquiryStatusRejectsUnknownStatus(t *testing.T) {
	fake := &fakeAdminStore{
		enquiries: map[string]*models.Enquiry{
			"e1": {Status: models.EnquiryNew},
		},
	}
	h := newAdminHandler(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/admin/enquiry/status/e1/resolved", nil)
	req.SetPathValue("id", "e1")
	req.SetPathValue("status", "resolved")
	rec := httptest.NewRecorder()
	h.UpdateEnquiryStatus(rec, req)

	if len(fake.statusUpdates) != 0 {
		t.Fatalf("store written %v, want no mutation for unknown status", fake.statusUpdates)
	}
	if len(fake.activities) != 0 {
		t.Errorf("recorded %d activity entries, want 0", len(fake.activities))
	}
	flashes := flashesFrom(t, h, rec)
	if len(flashes) != 1 || flashes[0].Message != "Invalid status" {
		t.Errorf("flashes = %v, want single Invalid status", flashes)
	}
}

func TestUpdateEnquiryStatusAllowsAnyTransition(t *testing.T) {
	// Every pair within the status set is legal, including backwards moves.
	fake := &fakeAdminStore{
		enquiries: map[string]*models.Enquiry{
			"e1": {Status: models.EnquiryClosed},
		},
	}
	h := newAdminHandler(t, fake)

	req := httptest.NewRequest(http.MethodGet, "/admin/enquiry/status/e1/new", nil)
	req.SetPathValue("id", "e1")
	req.SetPathValue("status", "new")
	rec := httptest.NewRecorder()
	h.UpdateEnquiryStatus(rec, req)

	if len(fake.statusUpdates) != 1 || fake.statusUpdates[0] != "e1=new" {
		t.Fatalf("status updates = %v, want [e1=new]", fake.statusUpdates)
	}
	if len(fake.activities) != 1 || fake.activities[0].Action != "update_enquiry_status" {
		t.Errorf("activities = %v, want one update_enquiry_status entry", fake.activities)
	}
}

func TestDeleteCategoryRefusesWhenInUse(t *testing.T) {
	fake := &fakeAdminStore{
		categories:    map[string]*models.Category{"c1": {Name: "Pumps"}},
		productCounts: map[string]int64{"c1": 3},
	}
	h := newAdminHandler(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/admin/category/delete/c1", nil)
	req.SetPathValue("id", "c1")
	rec := httptest.NewRecorder()
	h.DeleteCategory(rec, req)

	if len(fake.deletedCategory) != 0 {
		t.Fatalf("deleted %v, want refusal", fake.deletedCategory)
	}
	flashes := flashesFrom(t, h, rec)
	if len(flashes) != 1 {
		t.Fatalf("got %d flashes, want 1", len(flashes))
	}
	if !strings.Contains(flashes[0].Message, "3 products") {
		t.Errorf("message %q does not report the product count", flashes[0].Message)
	}
}

func TestDeleteCategoryRemovesEmptyCategory(t *testing.T) {
	fake := &fakeAdminStore{
		categories: map[string]*models.Category{"c1": {Name: "Pumps"}},
	}
	h := newAdminHandler(t, fake)

	req := httptest.NewRequest(http.MethodPost, "/admin/category/delete/c1", nil)
	req.SetPathValue("id", "c1")
	rec := httptest.NewRecorder()
	h.DeleteCategory(rec, req)

	if len(fake.deletedCategory) != 1 || fake.deletedCategory[0] != "c1" {
		t.Fatalf("deleted = %v, want [c1]", fake.deletedCategory)
	}
	if len(fake.activities) != 1 || fake.activities[0].Action != "delete_category" {
		t.Errorf("activities = %v, want one delete_category entry", fake.activities)
	}
}

func TestActivityLoggerDefaultsToSystem(t *testing.T) {
	fake := &fakeAdminStore{}
	logger := &ActivityLogger{Store: fake}

	logger.Record(context.Background(), "seed_admin", "Bootstrap admin created", "", "", "")

	if len(fake.activities) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(fake.activities))
	}
	if fake.activities[0].UserName != "System" {
		t.Errorf("user_name = %q, want System", fake.activities[0].UserName)
	}
}
