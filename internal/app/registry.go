package app

import (
	"go-leave/internal/balance"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/notification"
	"go-leave/internal/rbac"
	"go-leave/internal/request"
	"go-leave/internal/user"
	"go-leave/internal/workday"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
	calendar workday.Calendar,
) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	balanceRepo := balance.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService(zap.L())
	if err != nil {
		return err
	}

	// --- Services ---
	ledger := balance.NewLedger(balanceRepo)
	sink := notification.NewOutboxSink(outboxRepo)
	balanceService := balance.NewService(gormDB, ledger)
	requestService := request.NewService(gormDB, requestRepo, ledger, calendar, sink, rdb)
	userService := user.NewService(userRepo)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService)
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)
	userHandler := user.NewHandler(userService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RequestID())
	api.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	{
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		request.RegisterRoutes(api, requestHandler, rbacService, rdb)
		user.RegisterRoutes(api, userHandler, rbacService)
	}

	return nil
}
