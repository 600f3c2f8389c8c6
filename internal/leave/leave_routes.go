package leave

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteOptions struct {
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	opts RouteOptions,
) {
	auth := []gin.HandlerFunc{middleware.AuthMiddleware(opts.JWTSecret)}
	if opts.RateLimitRPS > 0 {
		auth = append(auth, middleware.RateLimitByUser(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst))
	}

	leaves := r.Group("/leaves")
	leaves.Use(auth...)
	{
		create := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, "leave", "create")}
		if rdb != nil {
			create = append(create, middleware.Idempotency(rdb))
		}
		create = append(create, handler.Create)

		leaves.POST("", create...)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)
		leaves.POST("/:id/decision", middleware.RBACAuthorize(rbacService, "leave", "decide"), handler.Decide)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave", "cancel"), handler.Cancel)
	}

	balances := r.Group("/leave-balances")
	balances.Use(auth...)
	{
		balances.GET("/:employee_id", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetBalance)
		balances.PUT("/:employee_id", middleware.RBACAuthorize(rbacService, "balance", "write"), handler.SetBalance)
	}
}
