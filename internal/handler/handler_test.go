package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/user-directory-service/internal/handler"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/internal/service"
	"github.com/maxviazov/user-directory-service/pkg/paginate"
	"github.com/maxviazov/user-directory-service/pkg/response"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// stubUserService records the last list params and returns canned results.
type stubUserService struct {
	lastParams paginate.Params
	listErr    error
	get        model.UserResource
	getErr     error
	created    model.UserResource
	createErr  error
	lastCreate service.CreateUserInput
	updated    model.UserResource
	updateErr  error
	lastUpdate service.UpdateUserInput
	lastID     int64
	deleteErr  error
}

func (s *stubUserService) ListUsers(_ context.Context, p paginate.Params) (paginate.Page[model.UserResource], error) {
	s.lastParams = p
	if s.listErr != nil {
		return paginate.Page[model.UserResource]{}, s.listErr
	}
	meta, err := paginate.Paginate(1, p)
	if err != nil {
		return paginate.Page[model.UserResource]{}, err
	}
	return paginate.NewPage([]model.UserResource{{ID: 1, Name: "John Doe"}}, meta), nil
}

func (s *stubUserService) GetUser(context.Context, int64) (model.UserResource, error) {
	return s.get, s.getErr
}

func (s *stubUserService) Profile(_ context.Context, u *model.User) (model.UserResource, error) {
	if u == nil {
		return model.UserResource{}, service.ErrUnauthenticated
	}
	return model.UserResource{ID: u.ID, Name: u.Name}, nil
}

func (s *stubUserService) CreateUser(_ context.Context, in service.CreateUserInput) (model.UserResource, error) {
	s.lastCreate = in
	return s.created, s.createErr
}

func (s *stubUserService) UpdateUser(_ context.Context, id int64, in service.UpdateUserInput) (model.UserResource, error) {
	s.lastID, s.lastUpdate = id, in
	return s.updated, s.updateErr
}

func (s *stubUserService) DeleteUser(_ context.Context, id int64) error {
	s.lastID = id
	return s.deleteErr
}

func newRouter(p handler.Pinger, svc service.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := handler.NewEngine(zerolog.New(io.Discard), []string{"https://app.example.com"})
	handler.Register(r, p, svc, 15)
	return r
}

func do(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, rd))
	return w
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		target string
		want   int
	}{
		{"live", nil, "/live", http.StatusOK},
		{"ready", nil, "/ready", http.StatusOK},
		{"ready down", errors.New("db down"), "/ready", http.StatusServiceUnavailable},
		{"api live", nil, "/api/v1/health/live", http.StatusOK},
		{"api ready down", errors.New("db down"), "/api/v1/health/ready", http.StatusServiceUnavailable},
		{"unknown", nil, "/no-such", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newRouter(stubPinger{err: tc.err}, &stubUserService{}), http.MethodGet, tc.target, nil)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestUsersList_Defaults(t *testing.T) {
	svc := &stubUserService{}
	w := do(newRouter(stubPinger{}, svc), http.MethodGet, "/api/v1/users", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 1, svc.lastParams.Page)
	assert.Equal(t, 15, svc.lastParams.PerPage)
	assert.Equal(t, "/api/v1/users", svc.lastParams.Path)

	var body struct {
		Data []model.UserResource `json:"data"`
		Meta paginate.Meta        `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Meta.Total)
	assert.Equal(t, "/api/v1/users", body.Meta.Path)
}

func TestUsersList_QueryParams(t *testing.T) {
	svc := &stubUserService{}
	w := do(newRouter(stubPinger{}, svc), http.MethodGet,
		"/api/v1/users?page=0&per_page=5&search=john&search_fields=name,email&select=name,-email", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := svc.lastParams
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 5, p.PerPage)
	assert.Equal(t, "john", p.Search)
	assert.Equal(t, []string{"name", "email"}, p.SearchFields)
	assert.Equal(t, []paginate.SelectField{{Field: "name", Value: true}, {Field: "email", Value: false}}, p.SelectFields)
}

func TestUsersList_NonNumericPage(t *testing.T) {
	w := do(newRouter(stubPinger{}, &stubUserService{}), http.MethodGet, "/api/v1/users?page=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body response.ErrorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid_input", body.Error)
	require.Len(t, body.FieldErrors, 1)
	assert.Equal(t, "page", body.FieldErrors[0].Field)
}

func TestUsersList_InvalidRange(t *testing.T) {
	svc := &stubUserService{listErr: &paginate.RangeError{Field: "per_page", Value: 500, Reason: "must be <= 100"}}
	w := do(newRouter(stubPinger{}, svc), http.MethodGet, "/api/v1/users?per_page=500", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_range")
}

func TestUsersGet(t *testing.T) {
	svc := &stubUserService{get: model.UserResource{ID: 7, Name: "Jane"}}
	r := newRouter(stubPinger{}, svc)

	w := do(r, http.MethodGet, "/api/v1/users/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane")

	w = do(r, http.MethodGet, "/api/v1/users/seven", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.getErr = repository.ErrNotFound
	w = do(r, http.MethodGet, "/api/v1/users/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsersCreate(t *testing.T) {
	svc := &stubUserService{created: model.UserResource{ID: 3, Email: "a@example.com"}}
	r := newRouter(stubPinger{}, svc)

	body, _ := json.Marshal(map[string]string{"name": "A", "username": "auser", "email": "a@example.com", "password": "12345678"})
	w := do(r, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "12345678", svc.lastCreate.Password)
	assert.NotContains(t, w.Body.String(), "12345678")

	w = do(r, http.MethodPost, "/api/v1/users", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.createErr = repository.ErrAlreadyExists
	w = do(r, http.MethodPost, "/api/v1/users", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	svc.createErr = service.NewInvalidInputError([]service.FieldError{{Field: "email", Message: "must be a valid email address"}})
	w = do(r, http.MethodPost, "/api/v1/users", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestUsersUpdate(t *testing.T) {
	svc := &stubUserService{updated: model.UserResource{ID: 4, Name: "Renamed"}}
	r := newRouter(stubPinger{}, svc)

	w := do(r, http.MethodPatch, "/api/v1/users/4", []byte(`{"name":"Renamed"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(4), svc.lastID)
	require.NotNil(t, svc.lastUpdate.Name)
	assert.Equal(t, "Renamed", *svc.lastUpdate.Name)
	assert.Nil(t, svc.lastUpdate.Email)
	assert.Nil(t, svc.lastUpdate.Password)
	assert.Contains(t, w.Body.String(), "Renamed")

	w = do(r, http.MethodPatch, "/api/v1/users/four", []byte(`{"name":"x"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPatch, "/api/v1/users/4", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.updateErr = repository.ErrNotFound
	w = do(r, http.MethodPatch, "/api/v1/users/4", []byte(`{"name":"Renamed"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.updateErr = service.ErrEmailTaken
	w = do(r, http.MethodPatch, "/api/v1/users/4", []byte(`{"email":"a@example.com"}`))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUsersDelete(t *testing.T) {
	svc := &stubUserService{}
	r := newRouter(stubPinger{}, svc)

	w := do(r, http.MethodDelete, "/api/v1/users/9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, int64(9), svc.lastID)

	svc.deleteErr = repository.ErrNotFound
	w = do(r, http.MethodDelete, "/api/v1/users/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/users/nine", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			handler.SetCurrentUser(c, &model.User{ID: 5, Name: "Session User", PasswordHash: "secret"})
		}
		c.Next()
	})
	handler.Register(r, stubPinger{}, &stubUserService{}, 15)

	w := do(r, http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("X-Test-User", "1")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Session User")
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestDocs(t *testing.T) {
	r := newRouter(stubPinger{}, &stubUserService{})

	w := do(r, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/users")

	w = do(r, http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
