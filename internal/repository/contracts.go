package repository

import (
	"context"

	"github.com/maxviazov/user-directory-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// UserRepository declares persistence operations for directory users.
// Soft-deleted users are invisible to every read.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// Update applies the non-nil fields of patch to a live user and bumps updated_at.
	Update(ctx context.Context, id int64, patch UserPatch) (model.User, error)
	// SoftDelete stamps deleted_at; missing or already deleted users yield ErrNotFound.
	SoftDelete(ctx context.Context, id int64) error
	// Count returns the number of users matching f.
	Count(ctx context.Context, f UserFilter) (int, error)
	// FetchPage returns one window of users matching f ordered by id, plus the total.
	// Columns outside f.Columns are left zero.
	FetchPage(ctx context.Context, f UserFilter, p Page) (PageResult[model.User], error)
}
