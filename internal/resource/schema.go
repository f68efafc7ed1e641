package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smithpartners/lawdesk/internal/models"
	"github.com/smithpartners/lawdesk/validation"
	"gorm.io/datatypes"
)

// Kind is the input kind of a form field.
type Kind string

const (
	KindText     Kind = "text"
	KindLongText Kind = "longtext"
	KindEnum     Kind = "enum"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindJSON     Kind = "json"
	KindURL      Kind = "url"
	KindEmail    Kind = "email"
)

// Field describes one editable column.
type Field struct {
	Column   string   `json:"column"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	// Min and Max bound numeric kinds; nil leaves the side open.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Limit returns a pointer to n for Field.Min and Field.Max.
func Limit(n float64) *float64 { return &n }

// checkBounds records a violation when n falls outside the field's bounds.
func (f Field) checkBounds(n float64, v validation.Violations) {
	switch {
	case f.Max != nil:
		lo := math.Inf(-1)
		if f.Min != nil {
			lo = *f.Min
		}
		validation.RangeFloat(f.Column, n, lo, *f.Max, v)
	case f.Min != nil && *f.Min == 0:
		validation.NonNegativeFloat(f.Column, n, v)
	case f.Min != nil:
		validation.RangeFloat(f.Column, n, *f.Min, math.Inf(1), v)
	}
}

// Schema describes one collection as the Manager edits it.
type Schema struct {
	Name     string `json:"name"`     // table name, e.g. "cases"
	Singular string `json:"singular"` // e.g. "Case"
	// Noun is the lowercase form used inside sentences; defaults to
	// strings.ToLower(Singular).
	Noun string `json:"noun,omitempty"`
	// Plural is used by the fetch error; defaults to Name.
	Plural string  `json:"plural,omitempty"`
	Fields []Field `json:"fields"`

	SearchColumn  string   `json:"search_column,omitempty"`
	FilterColumns []string `json:"filter_columns,omitempty"`
	RangeColumn   string   `json:"range_column,omitempty"`
	OrderBy       string   `json:"order_by,omitempty"`
	OrderAsc      bool     `json:"order_asc,omitempty"`

	UploadBucket string `json:"upload_bucket,omitempty"`
	UploadPrefix string `json:"upload_prefix,omitempty"`
	// UploadField receives the public URL of an attachment. Defaults to "url".
	UploadField string `json:"upload_field,omitempty"`
	AssistField string `json:"assist_field,omitempty"`
}

// Field returns the field for column.
func (s Schema) Field(column string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) noun() string {
	if s.Noun != "" {
		return s.Noun
	}
	return strings.ToLower(s.Singular)
}

func (s Schema) plural() string {
	if s.Plural != "" {
		return s.Plural
	}
	return s.Name
}

func (s Schema) uploadField() string {
	if s.UploadField != "" {
		return s.UploadField
	}
	return "url"
}

func (s Schema) filterable(column string) bool {
	for _, c := range s.FilterColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Defaults returns the initial form values of an add form.
func (s Schema) Defaults() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		v := f.Default
		if v == "" && f.Kind == KindEnum && len(f.Options) > 0 {
			v = f.Options[0]
		}
		out[f.Column] = v
	}
	return out
}

// Decode converts raw form values into typed column values. Enum and JSON
// fields left empty are omitted so the column default (or the current value
// on update) applies. Unknown keys are ignored.
func (s Schema) Decode(values map[string]string) (map[string]any, validation.Violations) {
	out := make(map[string]any, len(s.Fields))
	v := validation.Violations{}
	for _, f := range s.Fields {
		raw := values[f.Column]
		trimmed := strings.TrimSpace(raw)
		if f.Required {
			validation.Required(f.Column, raw, v)
			if _, bad := v[f.Column]; bad {
				continue
			}
		}
		switch f.Kind {
		case KindEnum:
			validation.OneOf(f.Column, trimmed, f.Options, v)
			if trimmed != "" {
				out[f.Column] = trimmed
			}
		case KindDate:
			d, err := models.ParseDate(trimmed)
			if err != nil {
				v[f.Column] = "invalid_date"
				continue
			}
			out[f.Column] = d
		case KindInt:
			if trimmed == "" {
				out[f.Column] = 0
				continue
			}
			n, err := strconv.Atoi(trimmed)
			if err != nil {
				v[f.Column] = "invalid_number"
				continue
			}
			f.checkBounds(float64(n), v)
			out[f.Column] = n
		case KindFloat:
			if trimmed == "" {
				out[f.Column] = 0.0
				continue
			}
			n, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				v[f.Column] = "invalid_number"
				continue
			}
			f.checkBounds(n, v)
			out[f.Column] = n
		case KindJSON:
			validation.JSON(f.Column, trimmed, v)
			if trimmed != "" {
				out[f.Column] = datatypes.JSON(trimmed)
			}
		case KindEmail:
			validation.Email(f.Column, trimmed, v)
			out[f.Column] = trimmed
		case KindTime:
			out[f.Column] = trimmed
		default:
			out[f.Column] = raw
		}
	}
	for col := range v {
		delete(out, col)
	}
	return out, v
}

// Encode renders the columns of a record as form values.
func (s Schema) Encode(record any) (map[string]string, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Name, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Name, err)
	}
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		msg, ok := raw[f.Column]
		if !ok || string(msg) == "null" {
			out[f.Column] = ""
			continue
		}
		var str string
		if err := json.Unmarshal(msg, &str); err == nil && f.Kind != KindJSON {
			out[f.Column] = str
			continue
		}
		// numbers, and JSON documents as their compact text
		out[f.Column] = string(msg)
	}
	return out, nil
}

// bind builds a T from decoded column values. Column names equal the json
// tags of the models.
func bind[T any](decoded map[string]any) (*T, error) {
	b, err := json.Marshal(decoded)
	if err != nil {
		return nil, err
	}
	row := new(T)
	if err := json.Unmarshal(b, row); err != nil {
		return nil, err
	}
	return row, nil
}
