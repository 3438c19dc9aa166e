package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/pkg/paginate"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tags and converts failures into field errors keyed by json name.
func validateStruct(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: snake(fe.Field()), Message: tagMessage(fe)})
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return "length must be >= " + fe.Param()
	case "max":
		return "length must be <= " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "alphanum":
		return "must contain only letters and digits"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// searchFieldErrors rejects search fields outside the searchable whitelist.
func searchFieldErrors(fields []string) []FieldError {
	var ferrs []FieldError
	for _, f := range fields {
		if !slices.Contains(repository.UserSearchFields, strings.ToLower(strings.TrimSpace(f))) {
			ferrs = append(ferrs, FieldError{
				Field:   "search_fields",
				Message: fmt.Sprintf("%q is not searchable; allowed: %s", f, strings.Join(repository.UserSearchFields, ", ")),
			})
		}
	}
	return ferrs
}

// selectColumns turns select directives into a column projection. Include
// directives win; with only excludes, every public column but the excluded ones
// is loaded. Aliases select the field under its own name.
func selectColumns(directives []paginate.SelectField) ([]string, []FieldError) {
	if len(directives) == 0 {
		return nil, nil
	}
	var (
		include, exclude []string
		ferrs            []FieldError
	)
	for _, d := range directives {
		name := strings.ToLower(strings.TrimSpace(d.Field))
		if !slices.Contains(repository.UserColumns, name) {
			ferrs = append(ferrs, FieldError{Field: "select", Message: fmt.Sprintf("%q cannot be selected", d.Field)})
			continue
		}
		if d.Included() {
			include = append(include, name)
		} else {
			exclude = append(exclude, name)
		}
	}
	if len(ferrs) > 0 {
		return nil, ferrs
	}
	if len(include) > 0 {
		return include, nil
	}
	cols := make([]string, 0, len(repository.UserColumns))
	for _, c := range repository.UserColumns {
		if c == "id" || !slices.Contains(exclude, c) {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
