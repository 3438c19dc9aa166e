package paginate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// SelectField is a single projection directive for the query layer.
// Value is true/1 to include the field, false/0 to exclude it, or a string alias.
type SelectField struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Included reports whether the directive keeps the field in the projection.
func (s SelectField) Included() bool {
	switch v := s.Value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return true
	default:
		return false
	}
}

// Alias returns the projected name when the directive renames the field.
func (s SelectField) Alias() (string, bool) {
	v, ok := s.Value.(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Params describes a page request. It is built once per request and never mutated.
// Search and select directives are carried through for the query layer; the
// paginator reads Page, PerPage and Path, and echoes search and select into links.
type Params struct {
	Page         int           `json:"page" validate:"gte=1"`
	PerPage      int           `json:"per_page" validate:"gte=1"`
	Path         string        `json:"path,omitempty"`
	Search       string        `json:"search,omitempty"`
	SearchFields []string      `json:"search_fields,omitempty"`
	SelectFields []SelectField `json:"select_fields,omitempty"`
}

// WithDefaults fills a missing page with 1 and a missing per page with defaultPerPage.
// HTTP callers use it for absent query parameters before validation runs.
func (p Params) WithDefaults(defaultPerPage int) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	return p
}

// Validate checks that page and per page are both >= 1.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		value, _ := fe.Value().(int)
		return &RangeError{Field: jsonName(fe.Field()), Value: value, Reason: "must be >= " + fe.Param()}
	}
	return fmt.Errorf("validate page params: %w", err)
}

// Offset returns the row offset of the requested page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Limit returns the row limit of the requested page.
func (p Params) Limit() int { return p.PerPage }

// ParseList splits a comma separated query value, dropping blanks.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseSelect turns "name,-email,username:login" into select directives:
// a leading '-' excludes a field, "field:alias" renames it, anything else includes it.
func ParseSelect(raw string) []SelectField {
	items := ParseList(raw)
	if len(items) == 0 {
		return nil
	}
	out := make([]SelectField, 0, len(items))
	for _, item := range items {
		switch {
		case strings.HasPrefix(item, "-"):
			out = append(out, SelectField{Field: strings.TrimPrefix(item, "-"), Value: false})
		case strings.Contains(item, ":"):
			field, alias, _ := strings.Cut(item, ":")
			out = append(out, SelectField{Field: field, Value: alias})
		default:
			out = append(out, SelectField{Field: item, Value: true})
		}
	}
	return out
}

// FormatSelect is the inverse of ParseSelect: included fields are written
// bare, excluded ones with a leading '-', aliases as "field:alias".
func FormatSelect(fields []SelectField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch alias, ok := f.Alias(); {
		case ok:
			parts = append(parts, f.Field+":"+alias)
		case f.Included():
			parts = append(parts, f.Field)
		default:
			parts = append(parts, "-"+f.Field)
		}
	}
	return strings.Join(parts, ",")
}

func jsonName(field string) string {
	switch field {
	case "Page":
		return "page"
	case "PerPage":
		return "per_page"
	default:
		return strings.ToLower(field)
	}
}
