package handlers

import (
	"net/http"

	"github.com/smithpartners/lawdesk/httpx"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InsightsHandler serves aggregates and reference data.
type InsightsHandler struct {
	db       *gorm.DB
	registry *dashboard.Registry
	log      *zap.Logger
}

func NewInsightsHandler(db *gorm.DB, registry *dashboard.Registry, log *zap.Logger) *InsightsHandler {
	return &InsightsHandler{db: db, registry: registry, log: log}
}

// CampaignStats aggregates the campaigns the caller last listed.
func (h *InsightsHandler) CampaignStats(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, ws.CampaignStats())
}

func (h *InsightsHandler) AudienceSegments(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, dashboard.AudienceSegments())
}

func (h *InsightsHandler) WorkflowTemplates(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, dashboard.WorkflowTemplates())
}

func (h *InsightsHandler) DocumentTypes(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, dashboard.DocumentTypes())
}

func (h *InsightsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := dashboard.LoadAnalytics(r.Context(), h.db)
	if err != nil {
		h.log.Error("analytics failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "fetch_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}
