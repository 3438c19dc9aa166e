package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

const userFullColumns = `id, name, username, email, password_hash, role, is_internal, login_attempts, created_at, updated_at, deleted_at`

type userRepository struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func scanFullUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsInternal, &u.LoginAttempts, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	return u, err
}

func (r *userRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO users (name, username, email, password_hash, role, is_internal)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userFullColumns,
		u.Name, u.Username, u.Email, u.PasswordHash, u.Role, u.IsInternal,
	)
	out, err := scanFullUser(row)
	if err != nil {
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, `lower(email) = lower($1)`, email)
}

func (r *userRepository) Update(ctx context.Context, id int64, p repository.UserPatch) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`UPDATE users SET
		   name          = COALESCE($2, name),
		   username      = COALESCE($3, username),
		   email         = COALESCE($4, email),
		   password_hash = COALESCE($5, password_hash),
		   role          = COALESCE($6, role),
		   updated_at    = NOW()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+userFullColumns,
		id, p.Name, p.Username, p.Email, p.PasswordHash, p.Role,
	)
	out, err := scanFullUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT `+userFullColumns+` FROM users WHERE deleted_at IS NULL AND `+where, arg)
	out, err := scanFullUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context, f repository.UserFilter) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	where, args := userWhere(f)
	var total int
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return 0, repository.MapPgError(err)
	}
	return total, nil
}

func (r *userRepository) FetchPage(ctx context.Context, f repository.UserFilter, p repository.Page) (repository.PageResult[model.User], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.User]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	cols := projectColumns(f.Columns)
	where, args := userWhere(f)
	args = append(args, limit, offset)

	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) OVER() AS total FROM users WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		strings.Join(cols, ", "), where, len(args)-1, len(args),
	)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return repository.PageResult[model.User]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.User]{Items: make([]model.User, 0, limit)}
	for rows.Next() {
		var u model.User
		var total int
		dest := make([]any, 0, len(cols)+1)
		for _, c := range cols {
			dest = append(dest, userColumnTarget(&u, c))
		}
		dest = append(dest, &total)
		if err := rows.Scan(dest...); err != nil {
			return repository.PageResult[model.User]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, u)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.User]{}, repository.MapPgError(err)
	}
	return res, nil
}

// userWhere builds the shared filter: live rows, optionally an ILIKE match on any search field.
func userWhere(f repository.UserFilter) (string, []any) {
	where := `deleted_at IS NULL`
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return where, nil
	}
	fields := searchColumns(f.SearchFields)
	conds := make([]string, 0, len(fields))
	for _, field := range fields {
		conds = append(conds, field+` ILIKE $1`)
	}
	return where + ` AND (` + strings.Join(conds, ` OR `) + `)`, []any{"%" + escapeLike(term) + "%"}
}

// searchColumns keeps only whitelisted names; none left means every searchable column.
func searchColumns(requested []string) []string {
	var out []string
	for _, f := range requested {
		f = strings.ToLower(strings.TrimSpace(f))
		if slices.Contains(repository.UserSearchFields, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return repository.UserSearchFields
	}
	return out
}

// projectColumns keeps whitelisted columns in request order and always loads id.
func projectColumns(requested []string) []string {
	if len(requested) == 0 {
		return repository.UserColumns
	}
	out := []string{"id"}
	for _, c := range requested {
		c = strings.ToLower(strings.TrimSpace(c))
		if slices.Contains(repository.UserColumns, c) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func userColumnTarget(u *model.User, col string) any {
	switch col {
	case "id":
		return &u.ID
	case "name":
		return &u.Name
	case "username":
		return &u.Username
	case "email":
		return &u.Email
	case "role":
		return &u.Role
	case "created_at":
		return &u.CreatedAt
	case "updated_at":
		return &u.UpdatedAt
	default:
		// unreachable: projectColumns filters against the same whitelist
		panic("unknown user column " + col)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

var _ repository.UserRepository = (*userRepository)(nil)
