package repository

// Page is a limit/offset window for listing operations.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries one window of rows and the total count matching the filter,
// so callers can build navigation metadata without a second round trip.
type PageResult[T any] struct {
	Items []T
	Total int
}

// UserFilter narrows a user listing. Columns lists the public columns to load;
// an empty slice loads every public column.
type UserFilter struct {
	Search       string
	SearchFields []string
	Columns      []string
}

// UserPatch is a partial update; nil fields keep their stored value.
type UserPatch struct {
	Name         *string
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *string
}

// Searchable user columns. Anything else in SearchFields is rejected upstream.
var UserSearchFields = []string{"name", "username", "email"}

// UserColumns are the columns a projection may select. Secrets are not listed.
var UserColumns = []string{"id", "name", "username", "email", "role", "created_at", "updated_at"}
