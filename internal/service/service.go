// Package service holds use-case orchestration between handlers and repositories:
// validation, domain error shaping, pagination and projection.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/pkg/paginate"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrUnauthenticated is returned when an operation needs a user the session layer did not supply.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrEmailTaken reports an email already held by another live user; it is an ErrAlreadyExists.
var ErrEmailTaken = fmt.Errorf("email is already registered: %w", repository.ErrAlreadyExists)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates FieldError values and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError returns nil when fe is empty, so callers can return it unconditionally.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// CreateUserInput is the payload for registering a directory user.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=member admin"`
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitnil,min=2,max=100"`
	Username *string `json:"username" validate:"omitnil,min=3,max=32,alphanum"`
	Email    *string `json:"email" validate:"omitnil,email,max=254"`
	Password *string `json:"password" validate:"omitnil,min=8,max=72"`
	Role     *string `json:"role" validate:"omitnil,oneof=member admin"`
}

func (in UpdateUserInput) empty() bool {
	return in.Name == nil && in.Username == nil && in.Email == nil && in.Password == nil && in.Role == nil
}

// UserService defines directory use cases. Every method returns public
// representations; entities never leave the service.
type UserService interface {
	ListUsers(ctx context.Context, params paginate.Params) (paginate.Page[model.UserResource], error)
	GetUser(ctx context.Context, id int64) (model.UserResource, error)
	// Profile projects a user already authenticated by the session layer.
	Profile(ctx context.Context, user *model.User) (model.UserResource, error)
	CreateUser(ctx context.Context, in CreateUserInput) (model.UserResource, error)
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (model.UserResource, error)
	// DeleteUser soft-deletes; the user disappears from every read.
	DeleteUser(ctx context.Context, id int64) error
}
