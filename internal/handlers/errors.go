package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/httpx"
	"github.com/smithpartners/lawdesk/i18n"
	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/blob"
	"github.com/smithpartners/lawdesk/internal/dashboard"
	"github.com/smithpartners/lawdesk/internal/resource"
	"github.com/smithpartners/lawdesk/internal/store"
	"go.uber.org/zap"
)

// maxUploadBytes bounds multipart uploads.
const maxUploadBytes = 32 << 20

// errorCode maps a domain error onto an HTTP status and a stable error code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, resource.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, resource.ErrFormClosed):
		return http.StatusConflict, "form_closed"
	case errors.Is(err, resource.ErrNoPendingDelete):
		return http.StatusConflict, "no_pending_delete"
	case errors.Is(err, resource.ErrNoUpload), errors.Is(err, dashboard.ErrNoAssist):
		return http.StatusBadRequest, "unsupported"
	case errors.Is(err, resource.ErrUnknownField), errors.Is(err, blob.ErrInvalidName):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, dashboard.ErrNoResearch):
		return http.StatusNotFound, "no_research"
	case errors.Is(err, dashboard.ErrNoFile):
		return http.StatusBadRequest, "no_file"
	case errors.Is(err, dashboard.ErrNoText):
		return http.StatusBadRequest, "no_text"
	case errors.Is(err, ai.ErrGenerationFailed):
		return http.StatusBadGateway, resource.CodeAIFailed
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError answers with the mapped error. Violations are returned as
// details; otherwise details carries the localized message.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if v, ok := resource.IsValidation(err); ok {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	status, code := errorCode(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	httpx.JSONError(w, status, code, i18n.T(i18n.LangFromContext(r.Context()), code))
}

// workspace returns the caller's workspace. Routes using it sit behind
// RequireSession, so a missing session is answered with 401.
func workspace(reg *dashboard.Registry, w http.ResponseWriter, r *http.Request) (*dashboard.Workspace, bool) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	return reg.Get(sess), true
}

// readValues reads form values from a JSON object or an urlencoded body.
// JSON scalars other than strings are kept in their JSON text form.
func readValues(r *http.Request) (map[string]string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		raw := map[string]json.RawMessage{}
		if err := httpx.DecodeJSON(r, &raw); err != nil {
			return nil, err
		}
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				out[k] = s
				continue
			}
			if string(v) == "null" {
				out[k] = ""
				continue
			}
			out[k] = string(v)
		}
		return out, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}
