package resource

import (
	"maps"
	"strings"

	"github.com/smithpartners/lawdesk/i18n"
	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/internal/store"
	"github.com/smithpartners/lawdesk/validation"
)

// Mode of an open form.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Level of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message shown after an action. It stays until
// the next state-changing action starts.
type Notification struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`

	key string
}

// Text renders the notification in lang.
func (n Notification) Text(lang string) string {
	key := n.key
	if key == "" {
		key = n.Code
	}
	text := i18n.T(lang, key)
	if strings.Contains(text, "%s") {
		return i18n.Tf(lang, key, n.Subject)
	}
	return text
}

// ListParams are the user-controlled list inputs.
type ListParams struct {
	Filters map[string]string `json:"filters,omitempty"`
	Search  string            `json:"q,omitempty"`
	From    models.Date       `json:"from"`
	To      models.Date       `json:"to"`
}

func (p ListParams) clone() ListParams {
	p.Filters = maps.Clone(p.Filters)
	return p
}

// query maps the params onto a store query. Empty filter values and columns
// the schema does not filter on are ignored.
func (p ListParams) query(s Schema) store.Query {
	q := store.Query{OrderBy: s.OrderBy, Asc: s.OrderAsc}
	for col, v := range p.Filters {
		if v == "" || v == "all" || !s.filterable(col) {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]any{}
		}
		q.Filters[col] = v
	}
	if s.SearchColumn != "" && strings.TrimSpace(p.Search) != "" {
		q.Search = &store.Search{Column: s.SearchColumn, Term: strings.TrimSpace(p.Search)}
	}
	if s.RangeColumn != "" && (!p.From.IsZero() || !p.To.IsZero()) {
		r := &store.Range{Column: s.RangeColumn}
		if !p.From.IsZero() {
			r.From = p.From
		}
		if !p.To.IsZero() {
			r.To = p.To
		}
		q.Range = r
	}
	return q
}

// Form is the add/edit form state.
type Form struct {
	Open       bool                  `json:"open"`
	Mode       Mode                  `json:"mode,omitempty"`
	EditID     string                `json:"edit_id,omitempty"`
	Values     map[string]string     `json:"values,omitempty"`
	Violations validation.Violations `json:"violations,omitempty"`
	Messages   map[string]string     `json:"messages,omitempty"`
}

// State is a snapshot of a Manager.
type State[T any] struct {
	Items         []T           `json:"items"`
	Params        ListParams    `json:"params"`
	Loading       bool          `json:"loading"`
	ListError     string        `json:"list_error,omitempty"`
	ListMessage   string        `json:"list_message,omitempty"`
	Form          Form          `json:"form"`
	PendingDelete string        `json:"pending_delete,omitempty"`
	Notification  *Notification `json:"notification,omitempty"`
	Submitting    bool          `json:"submitting"`
	Deleting      bool          `json:"deleting"`
	Uploading     bool          `json:"uploading"`
	Assisting     bool          `json:"assisting"`
}

// Localize fills the human-readable messages of the snapshot in lang.
func (s *State[T]) Localize(lang string, schema Schema) {
	if s.ListError != "" {
		s.ListMessage = i18n.Tf(lang, s.ListError, schema.plural())
	}
	if s.Notification != nil {
		s.Notification.Message = s.Notification.Text(lang)
	}
	if len(s.Form.Violations) > 0 {
		s.Form.Messages = make(map[string]string, len(s.Form.Violations))
		for col, code := range s.Form.Violations {
			s.Form.Messages[col] = i18n.T(lang, code)
		}
	}
}

func (s State[T]) clone() State[T] {
	out := s
	out.Items = append([]T{}, s.Items...)
	out.Params = s.Params.clone()
	out.Form.Values = maps.Clone(s.Form.Values)
	out.Form.Violations = maps.Clone(s.Form.Violations)
	out.Form.Messages = maps.Clone(s.Form.Messages)
	if s.Notification != nil {
		n := *s.Notification
		out.Notification = &n
	}
	return out
}
