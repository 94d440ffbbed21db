package user

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	profile := r.Group("/profile")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.GET("", middleware.RBACAuthorize(rbacService, "profile", "read"), handler.Profile)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("", middleware.RBACAuthorize(rbacService, "user", "manage"), handler.GetAll)
		users.POST("", middleware.RBACAuthorize(rbacService, "user", "manage"), handler.Create)
		users.DELETE("/:id", middleware.RBACAuthorize(rbacService, "user", "manage"), handler.Delete)
	}
}
