package handlers

import (
	"net/http"
	"time"

	"github.com/smithpartners/lawdesk/httpx"
	"github.com/smithpartners/lawdesk/i18n"
	"github.com/smithpartners/lawdesk/internal/calendar"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"github.com/smithpartners/lawdesk/internal/models"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	registry *dashboard.Registry
	log      *zap.Logger
}

func NewCalendarHandler(registry *dashboard.Registry, log *zap.Logger) *CalendarHandler {
	return &CalendarHandler{registry: registry, log: log}
}

type monthResponse struct {
	calendar.MonthView
	State any `json:"state"`
}

type scheduleResponse struct {
	calendar.ScheduleView
	State any `json:"state"`
}

func (h *CalendarHandler) month(w http.ResponseWriter, r *http.Request, ws *dashboard.Workspace, err error) {
	lang := i18n.LangFromContext(r.Context())
	body := monthResponse{MonthView: ws.Calendar.Project(ws.Now()), State: ws.Events.View(lang)}
	if err != nil {
		h.log.Warn("calendar fetch failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "fetch_failed", body)
		return
	}
	httpx.JSON(w, http.StatusOK, body)
}

// Month shows ?month=YYYY-MM, or the board's current month.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var err error
	if v := r.URL.Query().Get("month"); v != "" {
		t, perr := time.Parse("2006-01", v)
		if perr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_month", nil)
			return
		}
		err = ws.Calendar.Show(r.Context(), t.Year(), t.Month())
	} else {
		err = ws.Calendar.Refresh(r.Context())
	}
	h.month(w, r, ws, err)
}

func (h *CalendarHandler) Next(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	h.month(w, r, ws, ws.Calendar.Next(r.Context()))
}

func (h *CalendarHandler) Prev(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	h.month(w, r, ws, ws.Calendar.Prev(r.Context()))
}

// Schedule shows the court schedule of ?date=YYYY-MM-DD, or the selected day.
func (h *CalendarHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var err error
	if v := r.URL.Query().Get("date"); v != "" {
		day, perr := models.ParseDate(v)
		if perr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		err = ws.Schedule.Select(r.Context(), day)
	} else {
		err = ws.Schedule.Refresh(r.Context())
	}
	lang := i18n.LangFromContext(r.Context())
	body := scheduleResponse{ScheduleView: ws.Schedule.Project(ws.Now()), State: ws.ScheduleEvents.View(lang)}
	if err != nil {
		h.log.Warn("schedule fetch failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "fetch_failed", body)
		return
	}
	httpx.JSON(w, http.StatusOK, body)
}
