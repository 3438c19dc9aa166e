package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/user-directory-service/internal/service"
)

// Register mounts all public routes on the given engine.
// defaultPerPage is used when a listing request omits per_page.
func Register(r *gin.Engine, repo Pinger, userSvc service.UserService, defaultPerPage int) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewUserHandler(userSvc, defaultPerPage).Register(api)
	}
}
