package request

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "request", "read"), handler.GetAll)
		requests.GET("/stats", middleware.RBACAuthorize(rbacService, "request", "read"), handler.Stats)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "request", "read"), handler.GetByID)
		requests.POST("",
			middleware.RBACAuthorize(rbacService, "request", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		requests.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, "request", "approve"), handler.Transition)
		requests.DELETE("/:id", middleware.RBACAuthorize(rbacService, "request", "delete"), handler.Delete)
	}
}
