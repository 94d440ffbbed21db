package app

import (
	"os"

	"go-leave/internal/balance"
	"go-leave/internal/request"
	"go-leave/internal/shared/connection"
	"go-leave/internal/user"
	"go-leave/internal/workday"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const outboxTableDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id UUID PRIMARY KEY,
	request_id TEXT,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	topic TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	next_retry_at TIMESTAMPTZ,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := gormDB.AutoMigrate(
		&user.User{},
		&request.LeaveRequest{},
		&balance.BalanceAdjustment{},
	); err != nil {
		return err
	}
	if err := gormDB.Exec(outboxTableDDL).Error; err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	// Company holiday calendar, comma-separated YYYY-MM-DD dates.
	calendar, err := workday.ParseCalendar(os.Getenv("HOLIDAYS"))
	if err != nil {
		return err
	}

	// 2. Register Modules & Routes
	return registerModules(router, gormDB, redisClient, calendar)
}
