package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/view"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Section is one entry of the dashboard menu.
type Section struct {
	Key   string
	Path  string
	Label string
}

// Sections lists the dashboard menu in display order.
func Sections() []Section {
	return []Section{
		{Key: dashboard.Cases, Path: "/api/cases", Label: "nav_cases"},
		{Key: dashboard.Clients, Path: "/api/clients", Label: "nav_clients"},
		{Key: dashboard.Documents, Path: "/api/documents", Label: "nav_documents"},
		{Key: "calendar", Path: "/api/calendar", Label: "nav_calendar"},
		{Key: "schedule", Path: "/api/schedule", Label: "nav_schedule"},
		{Key: dashboard.Campaigns, Path: "/api/campaigns", Label: "nav_campaigns"},
		{Key: dashboard.Workflows, Path: "/api/workflows", Label: "nav_workflows"},
		{Key: dashboard.ChatbotQAs, Path: "/api/chatbot_qas", Label: "nav_chatbot"},
		{Key: "analytics", Path: "/api/analytics", Label: "nav_analytics"},
		{Key: "research", Path: "/api/research", Label: "nav_research"},
		{Key: "briefs", Path: "/api/briefs/summaries", Label: "nav_briefs"},
		{Key: "drafts", Path: "/api/document-types", Label: "nav_drafts"},
	}
}

type AuthHandler struct {
	db       *gorm.DB
	sessions *auth.Sessions
	registry *dashboard.Registry
	log      *zap.Logger
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, registry *dashboard.Registry, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions, registry: registry, log: log}
}

// Home renders the dashboard shell, or the login form when signed out.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		h.render(w, r, "login.html", nil)
		return
	}
	h.render(w, r, "dashboard.html", map[string]any{"Sections": Sections()})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, "login.html", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&user).Error
	if err == nil {
		err = auth.CheckPassword(user.Password, password)
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, auth.ErrInvalidCredentials) {
			h.log.Error("login lookup failed", zap.Error(err))
		}
		h.render(w, r, "login.html", map[string]any{"Error": "invalid_credentials", "Email": email})
		return
	}

	h.sessions.Create(w, auth.Session{UserID: user.ID, Email: user.Email})
	h.log.Info("signed in", zap.String("user_id", user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the cookie and forgets the session's workspace.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.FromContext(r.Context()); ok {
		h.registry.Drop(sess)
	}
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name, data); err != nil {
		h.log.Error("render failed", zap.String("template", name), zap.Error(err))
	}
}
