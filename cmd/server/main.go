package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/config"
	"github.com/amalvarghese-30/mumbai-tech/internal/handlers"
	"github.com/amalvarghese-30/mumbai-tech/internal/mailer"
	"github.com/amalvarghese-30/mumbai-tech/internal/stats"
	"github.com/amalvarghese-30/mumbai-tech/internal/storage"
	"github.com/amalvarghese-30/mumbai-tech/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/robfig/cron"
)

func main() {
	// Configure slog as early as possible in main.
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := store.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			slog.Error("Failed to close MongoDB connection", "error", err)
		}
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = db.EnsureIndexes(ctx)
	cancel()
	if err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Seed the bootstrap admin account on a fresh database.
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = db.SeedDefaultAdmin(ctx, cfg.AdminPassword)
	cancel()
	if err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. File storage, mail, stats
	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to initialize upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	mail := mailer.New(cfg.Mail, files)
	statsCache := stats.NewCache(db)
	renderer := &handlers.Renderer{Templates: templates, Stats: statsCache, Nav: db}

	// 6. Setup Handlers
	publicHandler := &handlers.PublicHandler{
		Store:        db,
		SessionStore: sessionStore,
		Renderer:     renderer,
	}
	enquiryHandler := &handlers.EnquiryHandler{
		Store:        db,
		Files:        files,
		Mailer:       mail,
		SessionStore: sessionStore,
		Renderer:     renderer,
	}
	adminHandler := &handlers.AdminHandler{
		Store:        db,
		Files:        files,
		Activity:     &handlers.ActivityLogger{Store: db},
		StatsCache:   statsCache,
		SessionStore: sessionStore,
		Renderer:     renderer,
	}

	mux := http.NewServeMux()

	// Static Files (uploads live under static/uploads)
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Rate limiter for the public enquiry form (1 submission per minute per IP)
	rateLimiter := handlers.NewRateLimiter(1 * time.Minute)

	// Public Routes
	mux.HandleFunc("GET /{$}", handlers.CacheControlMiddleware(publicHandler.Index))
	mux.HandleFunc("GET /about", handlers.CacheControlMiddleware(publicHandler.About))
	mux.HandleFunc("GET /categories", handlers.CacheControlMiddleware(publicHandler.Categories))
	mux.HandleFunc("GET /category/{id}", handlers.CacheControlMiddleware(publicHandler.CategoryProducts))
	mux.HandleFunc("GET /products", handlers.CacheControlMiddleware(publicHandler.Products))
	mux.HandleFunc("GET /product/{id}", handlers.CacheControlMiddleware(publicHandler.ProductDetail))
	mux.HandleFunc("GET /search", handlers.CacheControlMiddleware(publicHandler.Search))

	mux.HandleFunc("GET /enquiry", enquiryHandler.Form)
	mux.HandleFunc("POST /enquiry", rateLimiter.Middleware(enquiryHandler.Submit))
	mux.HandleFunc("GET /enquiry/success/{id}", enquiryHandler.Success)

	// Public API
	mux.HandleFunc("GET /api/products/search", publicHandler.SearchAPI)
	mux.HandleFunc("GET /api/categories", publicHandler.CategoriesAPI)

	// Admin auth
	mux.HandleFunc("GET /admin/login", adminHandler.LoginGet)
	mux.HandleFunc("POST /admin/login", adminHandler.LoginPost)
	mux.HandleFunc("GET /admin/logout", adminHandler.Logout)

	// Protected Routes
	mux.HandleFunc("GET /admin/dashboard", adminHandler.AuthMiddleware(adminHandler.Dashboard))

	mux.HandleFunc("GET /admin/products", adminHandler.AuthMiddleware(adminHandler.ListProducts))
	mux.HandleFunc("GET /admin/product/add", adminHandler.AuthMiddleware(adminHandler.AddProductForm))
	mux.HandleFunc("POST /admin/product/add", adminHandler.AuthMiddleware(adminHandler.CreateProduct))
	mux.HandleFunc("GET /admin/product/edit/{id}", adminHandler.AuthMiddleware(adminHandler.EditProductForm))
	mux.HandleFunc("POST /admin/product/edit/{id}", adminHandler.AuthMiddleware(adminHandler.UpdateProduct))
	mux.HandleFunc("POST /admin/product/delete/{id}", adminHandler.AuthMiddleware(adminHandler.DeleteProduct))

	mux.HandleFunc("GET /admin/categories", adminHandler.AuthMiddleware(adminHandler.ListCategories))
	mux.HandleFunc("GET /admin/category/add", adminHandler.AuthMiddleware(adminHandler.AddCategoryForm))
	mux.HandleFunc("POST /admin/category/add", adminHandler.AuthMiddleware(adminHandler.CreateCategory))
	mux.HandleFunc("GET /admin/category/edit/{id}", adminHandler.AuthMiddleware(adminHandler.EditCategoryForm))
	mux.HandleFunc("POST /admin/category/edit/{id}", adminHandler.AuthMiddleware(adminHandler.UpdateCategory))
	mux.HandleFunc("POST /admin/category/delete/{id}", adminHandler.AuthMiddleware(adminHandler.DeleteCategory))

	mux.HandleFunc("GET /admin/enquiries", adminHandler.AuthMiddleware(adminHandler.ListEnquiries))
	mux.HandleFunc("GET /admin/enquiry/{id}", adminHandler.AuthMiddleware(adminHandler.EnquiryDetail))
	mux.HandleFunc("GET /admin/enquiry/status/{id}/{status}", adminHandler.AuthMiddleware(adminHandler.UpdateEnquiryStatus))
	mux.HandleFunc("GET /admin/activities", adminHandler.AuthMiddleware(adminHandler.ListActivities))
	mux.HandleFunc("GET /admin/refresh-stats", adminHandler.AuthMiddleware(adminHandler.RefreshStats))

	// Admin API
	mux.HandleFunc("GET /api/stats", adminHandler.AuthMiddleware(adminHandler.Stats))
	mux.HandleFunc("GET /api/admin/new-enquiries-count", adminHandler.AuthMiddleware(adminHandler.NewEnquiriesCount))

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 8. Nightly digest of enquiries nobody has touched.
	scheduler := cron.New()
	scheduler.AddFunc("@midnight", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		stale, err := db.StaleNewEnquiries(ctx, 24*time.Hour)
		if err != nil {
			slog.Error("Failed to query stale enquiries", "error", err)
			return
		}
		if len(stale) == 0 {
			return
		}
		slog.Info("Sending stale enquiry digest", "count", len(stale))
		mail.NotifyStaleEnquiries(stale)
	})
	scheduler.Start()
	defer scheduler.Stop()

	// 9. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
