package handlers

import (
	"net/http"

	"github.com/smithpartners/lawdesk/httpx"
	"github.com/smithpartners/lawdesk/i18n"
	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"go.uber.org/zap"
)

// DeskHandler serves the AI-backed tools: drafting, research and briefs.
type DeskHandler struct {
	registry *dashboard.Registry
	log      *zap.Logger
}

func NewDeskHandler(registry *dashboard.Registry, log *zap.Logger) *DeskHandler {
	return &DeskHandler{registry: registry, log: log}
}

type textResponse struct {
	Text string `json:"text"`
}

type queryRequest struct {
	Query  string `json:"query"`
	Result string `json:"result,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *DeskHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return false
	}
	return true
}

func (h *DeskHandler) text(w http.ResponseWriter, r *http.Request, text string, err error) {
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, textResponse{Text: text})
}

// AIDraft returns a generated draft for the request. Nothing is stored.
func (h *DeskHandler) AIDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var req ai.DraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := ws.AIDraft(r.Context(), req)
	h.text(w, r, text, err)
}

// SaveDraft stores the draft request as a document.
func (h *DeskHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var req ai.DraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := ws.SaveDraft(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"document": doc,
		"message":  i18n.T(i18n.LangFromContext(r.Context()), "draft_saved"),
	})
}

func (h *DeskHandler) AIResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var req queryRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := ws.AIResearch(r.Context(), req.Query)
	h.text(w, r, text, err)
}

// LookupResearch returns the stored result of ?query=.
func (h *DeskHandler) LookupResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	text, err := ws.LookupResearch(r.Context(), r.URL.Query().Get("query"))
	h.text(w, r, text, err)
}

func (h *DeskHandler) SaveResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var req queryRequest
	if !h.decode(w, r, &req) {
		return
	}
	row, err := ws.SaveResearch(r.Context(), req.Query, req.Result)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *DeskHandler) AISummary(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	text, err := ws.AISummary(r.Context(), req.Text)
	h.text(w, r, text, err)
}

// UploadBrief stores the multipart "file" part in the briefs bucket.
func (h *DeskHandler) UploadBrief(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, h.log, dashboard.ErrNoFile)
		return
	}
	defer file.Close()
	row, err := ws.UploadBrief(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

// Summarize stores the plain excerpt of the posted text.
func (h *DeskHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	var req textRequest
	if !h.decode(w, r, &req) {
		return
	}
	row, err := ws.SummarizeText(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}
