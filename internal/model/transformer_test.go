package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/pkg/transform"
)

func TestUserTransformer_DropsInternalFields(t *testing.T) {
	deleted := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	u := &model.User{
		ID:            1,
		Name:          "John Doe",
		Email:         "a@example.com",
		PasswordHash:  "x",
		IsInternal:    true,
		LoginAttempts: 3,
		DeletedAt:     &deleted,
	}
	got, err := model.UserTransformer{}.Transform(u)
	require.NoError(t, err)
	assert.Equal(t, model.UserResource{ID: 1, Name: "John Doe", Email: "a@example.com"}, got)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"John Doe","email":"a@example.com"}`, string(raw))
	assert.NotContains(t, string(raw), "password")

	assert.Equal(t, "x", u.PasswordHash)
	assert.Equal(t, &deleted, u.DeletedAt)
}

func TestUserTransformer_Nil(t *testing.T) {
	_, err := model.UserTransformer{}.Transform(nil)
	require.ErrorIs(t, err, transform.ErrInvalidInput)
}

func TestUserTransformer_TransformMany(t *testing.T) {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	users := []*model.User{
		{ID: 2, Name: "B", Email: "b@example.com", Role: model.RoleAdmin, CreatedAt: created},
		{ID: 1, Name: "A", Email: "a@example.com", Role: model.RoleMember, PasswordHash: "h"},
	}
	tr := model.UserTransformer{}
	got, err := tr.TransformMany(users)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, u := range users {
		want, err := tr.Transform(u)
		require.NoError(t, err)
		assert.Equal(t, want, got[i])
	}
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, created, got[0].CreatedAt)

	_, err = tr.TransformMany([]*model.User{users[0], nil})
	require.ErrorIs(t, err, transform.ErrInvalidInput)
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	raw, err := json.Marshal(model.User{ID: 9, PasswordHash: "hash", IsInternal: true})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), "internal")
}
