// Package contract holds behavior suites every repository implementation must pass.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
)

type UserFactory func(t *testing.T) (repository.UserRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, users repository.UserRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func seedUsers(t *testing.T, repo repository.UserRepository, n int) []model.User {
	t.Helper()
	out := make([]model.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := repo.Create(context.Background(), model.User{
			Name:         fmt.Sprintf("User %c", 'A'+i),
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: "hash",
			Role:         model.RoleMember,
		})
		if err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		out = append(out, u)
	}
	return out
}

func RunUserRepositoryContract(t *testing.T, makeRepo UserFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.User{Name: "John Doe", Username: "jdoe", Email: "John@Example.com", PasswordHash: "h", Role: model.RoleMember})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Email != created.Email || got.PasswordHash != "h" {
			t.Fatalf("mismatch: %+v", got)
		}
		byEmail, err := repo.GetByEmail(ctx, "john@example.com")
		if err != nil {
			t.Fatalf("get by email failed: %v", err)
		}
		if byEmail.ID != created.ID {
			t.Fatalf("get by email mismatch: %+v", byEmail)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("create_duplicate_email_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		u := model.User{Name: "Dup", Username: "dup", Email: "dup@example.com", Role: model.RoleMember}
		if _, err := repo.Create(ctx, u); err != nil {
			t.Fatalf("seed: %v", err)
		}
		u.Username = "dup2"
		if _, err := repo.Create(ctx, u); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("update_partial", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seeded := seedUsers(t, repo, 2)
		name, hash := "Renamed", "newhash"
		got, err := repo.Update(ctx, seeded[0].ID, repository.UserPatch{Name: &name, PasswordHash: &hash})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.Name != name || got.PasswordHash != hash || got.Email != seeded[0].Email || got.Username != seeded[0].Username {
			t.Fatalf("patch not applied partially: %+v", got)
		}
		if got.UpdatedAt.Before(seeded[0].UpdatedAt) {
			t.Fatalf("updated_at moved backwards: %v < %v", got.UpdatedAt, seeded[0].UpdatedAt)
		}
		taken := seeded[1].Email
		if _, err := repo.Update(ctx, seeded[0].ID, repository.UserPatch{Email: &taken}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if _, err := repo.Update(ctx, 999999, repository.UserPatch{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("soft_delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seeded := seedUsers(t, repo, 3)
		id := seeded[1].ID
		if err := repo.SoftDelete(ctx, id); err != nil {
			t.Fatalf("soft delete: %v", err)
		}
		if err := repo.SoftDelete(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("second delete: expected ErrNotFound, got %v", err)
		}
		if err := repo.SoftDelete(ctx, 999999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("missing delete: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.GetByID(ctx, id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("deleted user still readable: %v", err)
		}
		if _, err := repo.GetByEmail(ctx, seeded[1].Email); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("deleted user still readable by email: %v", err)
		}
		name := "Ghost"
		if _, err := repo.Update(ctx, id, repository.UserPatch{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("deleted user still updatable: %v", err)
		}
		res, err := repo.FetchPage(ctx, repository.UserFilter{}, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		count, err := repo.Count(ctx, repository.UserFilter{})
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if res.Total != 2 || len(res.Items) != 2 || count != 2 {
			t.Fatalf("deleted user still listed: total=%d len=%d count=%d", res.Total, len(res.Items), count)
		}
	})

	t.Run("fetch_page_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedUsers(t, repo, 7)
		res, err := repo.FetchPage(ctx, repository.UserFilter{}, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		last, err := repo.FetchPage(ctx, repository.UserFilter{}, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("fetch last: %v", err)
		}
		if len(last.Items) != 1 || last.Total != 7 {
			t.Fatalf("unexpected last page: len=%d total=%d", len(last.Items), last.Total)
		}
		count, err := repo.Count(ctx, repository.UserFilter{})
		if err != nil || count != 7 {
			t.Fatalf("count: %d %v", count, err)
		}
	})

	t.Run("fetch_page_search", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedUsers(t, repo, 5)
		f := repository.UserFilter{Search: "user3@", SearchFields: []string{"email"}}
		res, err := repo.FetchPage(ctx, f, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(res.Items) != 1 || res.Items[0].Username != "user3" {
			t.Fatalf("unexpected search result: %+v", res.Items)
		}
		count, err := repo.Count(ctx, repository.UserFilter{Search: "100%"})
		if err != nil || count != 0 {
			t.Fatalf("wildcards must be literal: count=%d err=%v", count, err)
		}
	})

	t.Run("fetch_page_projection", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seedUsers(t, repo, 2)
		res, err := repo.FetchPage(ctx, repository.UserFilter{Columns: []string{"name"}}, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		for _, u := range res.Items {
			if u.ID == 0 || u.Name == "" || u.Email != "" || u.PasswordHash != "" {
				t.Fatalf("projection not applied: %+v", u)
			}
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, users, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := users.Create(ctx, model.User{Name: "Tx", Username: "txcommit", Email: "commit@example.com", Role: model.RoleMember})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := users.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, users, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := users.Create(ctx, model.User{Name: "Tx", Username: "txrollback", Email: "rollback@example.com", Role: model.RoleMember})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := users.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
