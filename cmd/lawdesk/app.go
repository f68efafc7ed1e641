package main

import (
	"context"
	"net/http"
	"time"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/httpx"
	"github.com/smithpartners/lawdesk/i18n"
	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/config"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"github.com/smithpartners/lawdesk/internal/db"
	"github.com/smithpartners/lawdesk/internal/handlers"
	"github.com/smithpartners/lawdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	sessions *auth.Sessions
	registry *dashboard.Registry
	blobs    *blob.Store
	log      *zap.Logger
}

// NewApp creates the application with all routes configured.
func NewApp(cfg *config.Config, gdb *gorm.DB, gen ai.Generator, log *zap.Logger) *App {
	blobs := blob.New(cfg.Storage.Root, cfg.Storage.PublicBaseURL)
	sessions := auth.New(cfg.Session.Secret)
	users := auth.NewCachedVerifier(func(ctx context.Context, userID string) bool {
		var count int64
		gdb.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count)
		return count > 0
	}, time.Minute)
	sessions.SetUserVerifier(users.Verify)
	app := &App{
		mux:      http.NewServeMux(),
		db:       gdb,
		sessions: sessions,
		registry: dashboard.NewRegistry(dashboard.Deps{DB: gdb, Uploader: blobs, AI: gen, Log: log}),
		blobs:    blobs,
		log:      log,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := a.withRecover(a.withLogging(a.sessions.Middleware(withLanguage(a.mux))))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	ah := handlers.NewAuthHandler(a.db, a.sessions, a.registry, a.log)
	rh := handlers.NewResourceHandler(a.registry, a.log)
	ch := handlers.NewCalendarHandler(a.registry, a.log)
	dh := handlers.NewDeskHandler(a.registry, a.log)
	ih := handlers.NewInsightsHandler(a.db, a.registry, a.log)

	// Public routes
	a.mux.HandleFunc("GET /{$}", ah.Home)
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /files/", http.StripPrefix("/files", a.blobs.Handler()))

	api := func(pattern string, h http.HandlerFunc) {
		a.mux.Handle(pattern, a.sessions.RequireSession(h))
	}

	// Collections
	api("GET /api/{res}", rh.List)
	api("GET /api/{res}/state", rh.State)
	api("GET /api/{res}/schema", rh.Schema)
	api("POST /api/{res}/form", rh.OpenAdd)
	api("POST /api/{res}/form/close", rh.CloseForm)
	api("POST /api/{res}/{id}/edit", rh.OpenEdit)
	api("POST /api/{res}/submit", rh.Submit)
	api("POST /api/{res}/{id}/delete", rh.RequestDelete)
	api("POST /api/{res}/delete/confirm", rh.ConfirmDelete)
	api("POST /api/{res}/delete/cancel", rh.CancelDelete)
	api("POST /api/{res}/attach", rh.Attach)
	api("POST /api/{res}/suggest", rh.Suggest)
	api("POST /api/workflow-templates/{id}/use", rh.UseTemplate)

	// Calendar
	api("GET /api/calendar", ch.Month)
	api("POST /api/calendar/next", ch.Next)
	api("POST /api/calendar/prev", ch.Prev)
	api("GET /api/schedule", ch.Schedule)

	// Aggregates and reference data
	api("GET /api/campaigns/stats", ih.CampaignStats)
	api("GET /api/audience-segments", ih.AudienceSegments)
	api("GET /api/workflow-templates", ih.WorkflowTemplates)
	api("GET /api/document-types", ih.DocumentTypes)
	api("GET /api/analytics", ih.Analytics)

	// AI tools
	api("POST /api/ai/draft", dh.AIDraft)
	api("POST /api/ai/research", dh.AIResearch)
	api("POST /api/ai/summarize", dh.AISummary)
	api("POST /api/drafts", dh.SaveDraft)
	api("GET /api/research", dh.LookupResearch)
	api("POST /api/research", dh.SaveResearch)
	api("POST /api/briefs/upload", dh.UploadBrief)
	api("POST /api/briefs/summaries", dh.Summarize)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks the database.
func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, a.db); err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSONError(w, http.StatusServiceUnavailable, "db_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "ok"})
}

// withLanguage picks the request language from ?lang=, the lang cookie or
// Accept-Language, in that order.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = i18n.DetectLanguage(c.Value)
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = i18n.DetectLanguage(q)
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// withLogging logs method, path, status and duration of every request.
func (a *App) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// withRecover turns a panic into a JSON internal_error.
func (a *App) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				a.log.Error("panic", zap.Any("value", v), zap.String("path", r.URL.Path), zap.Stack("stack"))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
