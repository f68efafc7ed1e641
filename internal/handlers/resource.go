package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/smithpartners/lawdesk/httpx"
	"github.com/smithpartners/lawdesk/i18n"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/resource"
	"go.uber.org/zap"
)

// ResourceHandler serves the CRUD collections of the caller's workspace.
// Every route answers with the localized state of the collection.
type ResourceHandler struct {
	registry *dashboard.Registry
	log      *zap.Logger
}

func NewResourceHandler(registry *dashboard.Registry, log *zap.Logger) *ResourceHandler {
	return &ResourceHandler{registry: registry, log: log}
}

// controller resolves {res} for the caller. It answers the request itself
// when it returns false.
func (h *ResourceHandler) controller(w http.ResponseWriter, r *http.Request) (*dashboard.Workspace, resource.Controller, bool) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return nil, nil, false
	}
	c, ok := ws.Resource(r.PathValue("res"))
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, nil, false
	}
	return ws, c, true
}

// respond writes the state after an action. Failures that the collection
// reports through its state keep the state as details.
func (h *ResourceHandler) respond(w http.ResponseWriter, r *http.Request, c resource.Controller, err error) {
	lang := i18n.LangFromContext(r.Context())
	if err == nil {
		httpx.JSON(w, http.StatusOK, c.View(lang))
		return
	}
	if v, ok := resource.IsValidation(err); ok {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	status, code := errorCode(err)
	if status == http.StatusInternalServerError {
		code = failureCode(r)
		h.log.Warn("resource action failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	httpx.JSONError(w, status, code, c.View(lang))
}

// failureCode names an unmapped failure by the action that hit it.
func failureCode(r *http.Request) string {
	switch {
	case r.Method == http.MethodGet:
		return resource.CodeFetchFailed
	case r.URL.Path == "/api/"+r.PathValue("res")+"/delete/confirm":
		return resource.CodeDeleteFailed
	case r.URL.Path == "/api/"+r.PathValue("res")+"/attach":
		return resource.CodeUploadFailed
	case r.URL.Path == "/api/"+r.PathValue("res")+"/suggest":
		return resource.CodeAIFailed
	}
	return resource.CodeSaveFailed
}

// listParams reads the filter columns of the schema, q, from and to.
func listParams(r *http.Request, schema resource.Schema) (resource.ListParams, error) {
	q := r.URL.Query()
	p := resource.ListParams{Search: q.Get("q")}
	for _, col := range schema.FilterColumns {
		if v := q.Get(col); v != "" {
			if p.Filters == nil {
				p.Filters = map[string]string{}
			}
			p.Filters[col] = v
		}
	}
	var err error
	if v := q.Get("from"); v != "" {
		if p.From, err = models.ParseDate(v); err != nil {
			return p, err
		}
	}
	if v := q.Get("to"); v != "" {
		if p.To, err = models.ParseDate(v); err != nil {
			return p, err
		}
	}
	return p, nil
}

// List runs the list with the query parameters and returns the state.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	params, err := listParams(r, c.Schema())
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	h.respond(w, r, c, c.List(r.Context(), params))
}

// State returns the state without fetching.
func (h *ResourceHandler) State(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, r, c, nil)
}

// Schema returns the field descriptors of the collection.
func (h *ResourceHandler) Schema(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, c.Schema())
}

// OpenAdd opens the add form; the body may carry prefilled values, which
// win over the screen defaults.
func (h *ResourceHandler) OpenAdd(w http.ResponseWriter, r *http.Request) {
	ws, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	values, err := readValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	defaults := ws.AddDefaults(r.PathValue("res"))
	if defaults == nil {
		defaults = values
	} else {
		for k, v := range values {
			defaults[k] = v
		}
	}
	h.respond(w, r, c, c.OpenAdd(defaults))
}

func (h *ResourceHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, r, c, c.OpenEdit(r.Context(), r.PathValue("id")))
}

func (h *ResourceHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, r, c, c.CloseForm())
}

func (h *ResourceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	values, err := readValues(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	h.respond(w, r, c, c.Submit(r.Context(), values))
}

func (h *ResourceHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, r, c, c.RequestDelete(r.PathValue("id")))
}

func (h *ResourceHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, r, c, c.ConfirmDelete(r.Context()))
}

func (h *ResourceHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.respond(w, r, c, c.CancelDelete())
}

// Attach uploads the multipart "file" part into the open form.
func (h *ResourceHandler) Attach(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "no_file", i18n.T(i18n.LangFromContext(r.Context()), "no_file"))
		return
	}
	defer file.Close()
	_, err = c.Attach(r.Context(), header.Filename, file)
	h.respond(w, r, c, err)
}

// Suggest fills the AI-assisted field of the open form.
func (h *ResourceHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	ws, c, ok := h.controller(w, r)
	if !ok {
		return
	}
	_, err := ws.Suggest(r.Context(), r.PathValue("res"))
	if errors.Is(err, dashboard.ErrNoAssist) {
		httpx.JSONError(w, http.StatusBadRequest, "unsupported", nil)
		return
	}
	h.respond(w, r, c, err)
}

// UseTemplate opens the workflow add form from a template.
func (h *ResourceHandler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.registry, w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "bad_request", nil)
		return
	}
	h.respond(w, r, ws.Workflows, ws.UseTemplate(id))
}
