package request_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-leave/internal/request"
	"go-leave/internal/workday"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCachedServiceTest(t *testing.T) (*requestServiceDeps, redismock.ClientMock) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()

	repo := &fakeRequestRepository{}
	ledger := &fakeLedger{available: 26}
	sink := &recordingSink{}
	svc := request.NewService(gormDB, repo, ledger, workday.Calendar{}, sink, rdb)

	return &requestServiceDeps{
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		ledger:  ledger,
		sink:    sink,
		closeFn: db.Close,
	}, redisMock
}

func TestRequestService_StatsCaching(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("miss counts and fills the cache", func(t *testing.T) {
		deps, redisMock := setupCachedServiceTest(t)
		defer deps.closeFn()

		expected := request.StatsResponse{Total: 5, Pending: 2, Approved: 3}
		payload, err := json.Marshal(expected)
		assert.NoError(t, err)

		redisMock.ExpectGet("requests:stats:all").RedisNil()
		redisMock.ExpectSet("requests:stats:all", payload, 30*time.Second).SetVal("OK")

		deps.repo.countByStatusFn = func(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
			return 5, 2, 3, nil
		}

		resp, err := deps.service.Stats(ctx, actorID, true)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("hit skips the repository", func(t *testing.T) {
		deps, redisMock := setupCachedServiceTest(t)
		defer deps.closeFn()

		cached := request.StatsResponse{Total: 9, Pending: 1, Approved: 7}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)

		key := "requests:stats:user:" + actorID
		redisMock.ExpectGet(key).SetVal(string(payload))

		deps.repo.countByStatusFn = func(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
			t.Fatal("cache hit must not reach the repository")
			return 0, 0, 0, nil
		}

		resp, err := deps.service.Stats(ctx, actorID, false)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("transition invalidates both stat keys", func(t *testing.T) {
		deps, redisMock := setupCachedServiceTest(t)
		defer deps.closeFn()

		id := uuid.New().String()
		requesterID := uuid.New().String()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}

		redisMock.ExpectDel("requests:stats:all", "requests:stats:user:"+requesterID).SetVal(2)

		_, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.NoError(t, err)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
