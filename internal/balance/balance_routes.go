package balance

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
	b := r.Group("/balance")
	b.Use(middleware.AuthMiddleware())
	{
		b.GET("", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetMine)
		b.GET("/history", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetMyHistory)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.PUT("/:id/balance", middleware.RBACAuthorize(rbacService, "balance", "adjust"), handler.Adjust)
		users.GET("/:id/balance/history", middleware.RBACAuthorize(rbacService, "balance", "adjust"), handler.GetUserHistory)
	}
}
