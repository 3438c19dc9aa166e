package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/pkg/paginate"
	"github.com/maxviazov/user-directory-service/pkg/transform"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// userService composes the repository, the paginator and the transformer; no transport or SQL details.
type userService struct {
	users     repository.UserRepository
	tx        repository.TxManager
	pager     *paginate.Paginator
	transform transform.Transformer[*model.User, model.UserResource]
	hashCost  int
	log       zerolog.Logger
}

// UserOption tweaks a user service at construction.
type UserOption func(*userService)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) UserOption {
	return func(s *userService) { s.hashCost = cost }
}

func NewUserService(
	users repository.UserRepository,
	tx repository.TxManager,
	pager *paginate.Paginator,
	tr transform.Transformer[*model.User, model.UserResource],
	logger zerolog.Logger,
	opts ...UserOption,
) UserService {
	l := logger.With().Str("module", "service").Str("component", "user").Logger()
	s := &userService{users: users, tx: tx, pager: pager, transform: tr, hashCost: bcrypt.DefaultCost, log: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *userService) ListUsers(ctx context.Context, params paginate.Params) (paginate.Page[model.UserResource], error) {
	start := time.Now()
	if err := s.pager.Check(params); err != nil {
		return paginate.Page[model.UserResource]{}, err
	}

	ferrs := searchFieldErrors(params.SearchFields)
	cols, selErrs := selectColumns(params.SelectFields)
	ferrs = append(ferrs, selErrs...)
	if err := NewInvalidInputError(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("list users validation failed")
		return paginate.Page[model.UserResource]{}, err
	}

	filter := repository.UserFilter{
		Search:       strings.TrimSpace(params.Search),
		SearchFields: params.SearchFields,
		Columns:      cols,
	}

	var (
		rows []model.User
		meta paginate.Meta
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.users.FetchPage(ctx, filter, repository.Page{Limit: params.Limit(), Offset: params.Offset()})
		if err != nil {
			return err
		}
		total := res.Total
		// an empty window past page 1 says nothing about the total; ask for it
		if len(res.Items) == 0 && params.Page > 1 {
			if total, err = s.users.Count(ctx, filter); err != nil {
				return err
			}
		}
		if meta, err = s.pager.Paginate(total, params); err != nil {
			return err
		}
		// the requested page was past the end: serve the clamped last page instead
		if total > 0 && meta.CurrentPage != params.Page {
			res, err = s.users.FetchPage(ctx, filter, repository.Page{Limit: meta.PerPage, Offset: paginate.Offset(meta)})
			if err != nil {
				return err
			}
		}
		rows = res.Items
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("page", params.Page).Int("per_page", params.PerPage).Msg("list users failed")
		return paginate.Page[model.UserResource]{}, err
	}

	entities := make([]*model.User, len(rows))
	for i := range rows {
		entities[i] = &rows[i]
	}
	data, err := s.transform.TransformMany(entities)
	if err != nil {
		return paginate.Page[model.UserResource]{}, fmt.Errorf("project users: %w", err)
	}

	s.log.Debug().
		Dur("took", time.Since(start)).
		Int("page", meta.CurrentPage).
		Int("total", meta.Total).
		Msg("users listed")
	return paginate.NewPage(data, meta), nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (model.UserResource, error) {
	if id <= 0 {
		return model.UserResource{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.UserResource{}, err
	}
	return s.transform.Transform(&u)
}

func (s *userService) Profile(_ context.Context, user *model.User) (model.UserResource, error) {
	if user == nil {
		return model.UserResource{}, ErrUnauthenticated
	}
	return s.transform.Transform(user)
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (model.UserResource, error) {
	start := time.Now()
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	if ferrs := validateStruct(in); len(ferrs) > 0 {
		s.log.Debug().Interface("field_errors", ferrs).Str("email", in.Email).Msg("user validation failed")
		return model.UserResource{}, NewInvalidInputError(ferrs)
	}
	if in.Role == "" {
		in.Role = model.RoleMember
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return model.UserResource{}, fmt.Errorf("hash password: %w", err)
	}

	var out model.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// the unique index still guards the race; this only avoids a failed insert
		if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		created, err := s.users.Create(ctx, model.User{
			Name:         in.Name,
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         in.Role,
		})
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		// repository already surfaces domain errors, do not wrap
		s.log.Error().Err(err).Str("email", in.Email).Msg("create user failed")
		return model.UserResource{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("user_id", out.ID).Msg("user created")
	return s.transform.Transform(&out)
}

func (s *userService) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (model.UserResource, error) {
	if id <= 0 {
		return model.UserResource{}, NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	if in.empty() {
		return model.UserResource{}, NewInvalidInputError([]FieldError{{Field: "body", Message: "at least one field is required"}})
	}
	in.Name = mapPtr(in.Name, strings.TrimSpace)
	in.Username = mapPtr(in.Username, strings.TrimSpace)
	in.Email = mapPtr(in.Email, normalizeEmail)
	in.Role = mapPtr(in.Role, func(r string) string { return strings.ToLower(strings.TrimSpace(r)) })

	if ferrs := validateStruct(in); len(ferrs) > 0 {
		s.log.Debug().Interface("field_errors", ferrs).Int64("user_id", id).Msg("user update validation failed")
		return model.UserResource{}, NewInvalidInputError(ferrs)
	}

	patch := repository.UserPatch{Name: in.Name, Username: in.Username, Email: in.Email, Role: in.Role}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.hashCost)
		if err != nil {
			return model.UserResource{}, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		patch.PasswordHash = &h
	}

	var out model.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if in.Email != nil {
			if other, err := s.users.GetByEmail(ctx, *in.Email); err == nil && other.ID != id {
				return ErrEmailTaken
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		updated, err := s.users.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("update user failed")
		return model.UserResource{}, err
	}
	s.log.Info().Int64("user_id", id).Bool("password_changed", patch.PasswordHash != nil).Msg("user updated")
	return s.transform.Transform(&out)
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.users.SoftDelete(ctx, id)
	})
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("delete user failed")
		return err
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func mapPtr(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}
