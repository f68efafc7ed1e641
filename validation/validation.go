package validation

import (
	"encoding/json"
	"net/mail"
	"strings"
)

// Violations maps a field name to a violation code (e.g. "required").
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// OneOf flags a non-empty value that is not among options.
func OneOf(field, value string, options []string, v Violations) {
	if value == "" {
		return
	}
	for _, o := range options {
		if o == value {
			return
		}
	}
	v[field] = "invalid_option"
}

// Email flags a non-empty value that is not a bare address.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v[field] = "invalid_email"
	}
}

// JSON flags a non-empty value that is not well-formed JSON.
func JSON(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if !json.Valid([]byte(value)) {
		v[field] = "invalid_json"
	}
}
