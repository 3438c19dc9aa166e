package model

import "github.com/maxviazov/user-directory-service/pkg/transform"

// UserTransformer projects users to UserResource, dropping secrets and internal flags.
type UserTransformer struct{}

var _ transform.Transformer[*User, UserResource] = UserTransformer{}

func (UserTransformer) Transform(u *User) (UserResource, error) {
	if u == nil {
		return UserResource{}, transform.Invalid("user is nil")
	}
	return UserResource{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (t UserTransformer) TransformMany(users []*User) ([]UserResource, error) {
	return transform.Many(t.Transform, users)
}
