package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/service"
	"github.com/maxviazov/user-directory-service/pkg/paginate"
	"github.com/maxviazov/user-directory-service/pkg/response"
	"github.com/rs/zerolog/log"
)

// serviceTimeout bounds the count + fetch round trips of a listing.
const serviceTimeout = 5 * time.Second

type UserHandler struct {
	svc            service.UserService
	defaultPerPage int
}

func NewUserHandler(svc service.UserService, defaultPerPage int) *UserHandler {
	return &UserHandler{svc: svc, defaultPerPage: defaultPerPage}
}

func (h *UserHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/users")
	{
		g.POST("", h.create)
		g.GET("/:user_id", h.getByID)
		g.PATCH("/:user_id", h.update)
		g.DELETE("/:user_id", h.remove)
		g.GET("", h.list)
	}
	r.GET("/me", h.me)
}

// SetCurrentUser stores the user resolved by the session layer for this request.
func SetCurrentUser(c *gin.Context, u *model.User) {
	c.Set(ctxCurrentUser, u)
}

// CurrentUser returns the session user, or nil when the request is anonymous.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

func (h *UserHandler) create(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "must be a valid JSON object"}}))
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, user)
}

// userID parses the :user_id path parameter, writing a 400 when it is not an integer.
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: "must be an integer"}}))
		return 0, false
	}
	return id, true
}

func (h *UserHandler) update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "must be a valid JSON object"}}))
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, user)
}

func (h *UserHandler) remove(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) getByID(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, user)
}

func (h *UserHandler) me(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), CurrentUser(c))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, user)
}

func (h *UserHandler) list(c *gin.Context) {
	params, err := h.pageParams(c)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), serviceTimeout)
	defer cancel()

	page, err := h.svc.ListUsers(ctx, params)

	logger := log.With().
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Int("page", params.Page).
		Int("per_page", params.PerPage).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		status, _ := response.MapError(err)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", status).Msg("failed to list users")
		}
		response.WriteError(c, err)
		return
	}

	logger.Debug().Int("total", page.Meta.Total).Msg("users listed")
	response.WriteData(c, http.StatusOK, page)
}

// pageParams reads the listing query. Absent or non-positive page and per_page fall
// back to defaults; out-of-range values are left for the paginator to reject.
func (h *UserHandler) pageParams(c *gin.Context) (paginate.Params, error) {
	var ferrs []service.FieldError
	page, ok := queryInt(c, "page")
	if !ok {
		ferrs = append(ferrs, service.FieldError{Field: "page", Message: "must be an integer"})
	}
	perPage, ok := queryInt(c, "per_page")
	if !ok {
		ferrs = append(ferrs, service.FieldError{Field: "per_page", Message: "must be an integer"})
	}
	if err := service.NewInvalidInputError(ferrs); err != nil {
		return paginate.Params{}, err
	}

	return paginate.Params{
		Page:         page,
		PerPage:      perPage,
		Path:         c.Request.URL.Path,
		Search:       c.Query("search"),
		SearchFields: paginate.ParseList(c.Query("search_fields")),
		SelectFields: paginate.ParseSelect(c.Query("select")),
	}.WithDefaults(h.defaultPerPage), nil
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
