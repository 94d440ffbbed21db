package request_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/events"
	requesterrors "go-leave/internal/request/errors"
	"go-leave/internal/workday"

	"go-leave/internal/request"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeRequestRepository struct {
	withTxFn            func(tx *gorm.DB) request.Repository
	createFn            func(ctx context.Context, r *request.LeaveRequest) error
	findByIDFn          func(ctx context.Context, id string) (*request.LeaveRequest, error)
	findByIDForUpdateFn func(ctx context.Context, id string) (*request.LeaveRequest, error)
	findAllFn           func(ctx context.Context) ([]request.LeaveRequest, error)
	findAllByRequester  func(ctx context.Context, requesterID string) ([]request.LeaveRequest, error)
	updateFn            func(ctx context.Context, r *request.LeaveRequest) error
	deleteFn            func(ctx context.Context, id string) error
	countByStatusFn     func(ctx context.Context, requesterID *string) (int64, int64, int64, error)
}

func (f *fakeRequestRepository) WithTx(tx *gorm.DB) request.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Create(ctx context.Context, r *request.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*request.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) FindByIDForUpdate(ctx context.Context, id string) (*request.LeaveRequest, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) FindAll(ctx context.Context) ([]request.LeaveRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindAllByRequester(ctx context.Context, requesterID string) ([]request.LeaveRequest, error) {
	if f.findAllByRequester != nil {
		return f.findAllByRequester(ctx, requesterID)
	}
	return nil, nil
}

func (f *fakeRequestRepository) Update(ctx context.Context, r *request.LeaveRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeRequestRepository) CountByStatus(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx, requesterID)
	}
	return 0, 0, 0, nil
}

type ledgerCall struct {
	op        string
	userID    string
	amount    int
	requestID *string
	actorID   string
}

type fakeLedger struct {
	available    int
	availableErr error
	reserveErr   error
	releaseErr   error
	setTotalErr  error
	calls        []ledgerCall
}

func (f *fakeLedger) WithTx(tx *gorm.DB) balance.Ledger { return f }

func (f *fakeLedger) Snapshot(ctx context.Context, userID string) (balance.Balance, error) {
	return balance.Balance{}, nil
}

func (f *fakeLedger) GetAvailable(ctx context.Context, userID string) (int, error) {
	return f.available, f.availableErr
}

func (f *fakeLedger) Reserve(ctx context.Context, userID string, amount int, requestID *string, actorID string) error {
	f.calls = append(f.calls, ledgerCall{op: "reserve", userID: userID, amount: amount, requestID: requestID, actorID: actorID})
	return f.reserveErr
}

func (f *fakeLedger) Release(ctx context.Context, userID string, amount int, requestID *string, actorID string) error {
	f.calls = append(f.calls, ledgerCall{op: "release", userID: userID, amount: amount, requestID: requestID, actorID: actorID})
	return f.releaseErr
}

func (f *fakeLedger) SetTotalDays(ctx context.Context, userID string, newTotal int, actorID string) error {
	f.calls = append(f.calls, ledgerCall{op: "set_total", userID: userID, amount: newTotal, actorID: actorID})
	return f.setTotalErr
}

func (f *fakeLedger) History(ctx context.Context, userID string) ([]balance.BalanceAdjustment, error) {
	return nil, nil
}

type recordingSink struct {
	events []events.RequestStatusChangedEvent
	err    error
}

func (s *recordingSink) StatusChanged(ctx context.Context, ev events.RequestStatusChangedEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

type requestServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	service request.Service
	repo    *fakeRequestRepository
	ledger  *fakeLedger
	sink    *recordingSink
	closeFn func() error
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	ledger := &fakeLedger{available: 26}
	sink := &recordingSink{}
	svc := request.NewService(gormDB, repo, ledger, workday.Calendar{}, sink, nil)

	return &requestServiceDeps{
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		ledger:  ledger,
		sink:    sink,
		closeFn: db.Close,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()
	requesterID := uuid.New().String()

	t.Run("success paid leave full week", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.createFn = func(ctx context.Context, r *request.LeaveRequest) error {
			assert.Equal(t, uuid.MustParse(requesterID), r.RequesterID)
			assert.Equal(t, request.TypePaidLeave, r.Type)
			assert.Equal(t, 5, r.WorkingDays)
			assert.Equal(t, request.StatusPending, r.Status)
			return nil
		}

		// 2026-03-02 is a Monday.
		resp, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      request.TypePaidLeave,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
			Reason:    "Family trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.WorkingDays)
		assert.Equal(t, request.StatusPending, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("weekend only span still costs one day", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.createFn = func(ctx context.Context, r *request.LeaveRequest) error {
			assert.Equal(t, 1, r.WorkingDays)
			return nil
		}

		// Saturday through Sunday.
		resp, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      request.TypePaidLeave,
			StartDate: "2026-03-07",
			EndDate:   "2026-03-08",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.WorkingDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance pre-check", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, false)
		deps.ledger.available = 3

		_, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      request.TypePaidLeave,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		var insufficient *balanceerrors.InsufficientBalanceError
		assert.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 3, insufficient.Available)
		assert.Equal(t, 5, insufficient.Requested)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("sick leave skips balance check", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.ledger.available = 0
		deps.ledger.availableErr = errors.New("should not be called")

		resp, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      request.TypeSick,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, 5, resp.WorkingDays)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative end before start", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		_, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      request.TypePaidLeave,
			StartDate: "2026-03-06",
			EndDate:   "2026-03-02",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateRange)
	})

	t.Run("negative bad date format", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		_, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      request.TypePaidLeave,
			StartDate: "03/02/2026",
			EndDate:   "2026-03-06",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateFormat)
	})

	t.Run("negative unknown type", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		_, err := deps.service.Create(ctx, requesterID, request.CreateRequest{
			Type:      "SABBATICAL",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidType)
	})

	t.Run("negative bad requester id", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		_, err := deps.service.Create(ctx, "not-a-uuid", request.CreateRequest{
			Type:      request.TypePaidLeave,
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidRequesterID)
	})
}

func pendingPaidLeave(id, requesterID string, days int) *request.LeaveRequest {
	return &request.LeaveRequest{
		ID:          uuid.MustParse(id),
		RequesterID: uuid.MustParse(requesterID),
		Type:        request.TypePaidLeave,
		StartDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		WorkingDays: days,
		Status:      request.StatusPending,
	}
}

func TestRequestService_Transition(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()
	requesterID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("approve reserves days and notifies", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}
		var updated *request.LeaveRequest
		deps.repo.updateFn = func(ctx context.Context, r *request.LeaveRequest) error {
			updated = r
			return nil
		}

		resp, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.NotNil(t, updated.ApproverID)
		assert.NotNil(t, updated.ApprovedAt)

		assert.Len(t, deps.ledger.calls, 1)
		assert.Equal(t, "reserve", deps.ledger.calls[0].op)
		assert.Equal(t, requesterID, deps.ledger.calls[0].userID)
		assert.Equal(t, 5, deps.ledger.calls[0].amount)
		assert.Equal(t, actorID, deps.ledger.calls[0].actorID)

		assert.Len(t, deps.sink.events, 1)
		assert.Equal(t, request.StatusPending, deps.sink.events[0].OldStatus)
		assert.Equal(t, request.StatusApproved, deps.sink.events[0].NewStatus)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repeat approval is a no-op", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			l := pendingPaidLeave(targetID, requesterID, 5)
			l.Status = request.StatusApproved
			return l, nil
		}

		resp, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.Empty(t, deps.ledger.calls)
		assert.Empty(t, deps.sink.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject pending has no ledger effect", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}

		resp, err := deps.service.Transition(ctx, id, request.StatusRejected, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusRejected, resp.Status)
		assert.Nil(t, resp.ApproverID)
		assert.Empty(t, deps.ledger.calls)
		assert.Len(t, deps.sink.events, 1)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject approved releases days", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			l := pendingPaidLeave(targetID, requesterID, 5)
			l.Status = request.StatusApproved
			return l, nil
		}

		resp, err := deps.service.Transition(ctx, id, request.StatusRejected, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusRejected, resp.Status)
		assert.Len(t, deps.ledger.calls, 1)
		assert.Equal(t, "release", deps.ledger.calls[0].op)
		assert.Equal(t, 5, deps.ledger.calls[0].amount)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("sick leave transitions never touch the ledger", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			l := pendingPaidLeave(targetID, requesterID, 5)
			l.Type = request.TypeSick
			return l, nil
		}

		resp, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.Empty(t, deps.ledger.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative approve with insufficient balance keeps status", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 22), nil
		}
		deps.ledger.reserveErr = &balanceerrors.InsufficientBalanceError{Available: 21, Requested: 22}
		deps.repo.updateFn = func(ctx context.Context, r *request.LeaveRequest) error {
			t.Fatal("status must not be written when the reservation fails")
			return nil
		}

		_, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		var insufficient *balanceerrors.InsufficientBalanceError
		assert.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 21, insufficient.Available)
		assert.Equal(t, 22, insufficient.Requested)
		assert.Empty(t, deps.sink.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("serialization conflict retries once", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}
		attempts := 0
		deps.repo.updateFn = func(ctx context.Context, r *request.LeaveRequest) error {
			attempts++
			if attempts == 1 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		}

		resp, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.Equal(t, 2, attempts)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative persistent conflict surfaces as conflict error", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}
		deps.repo.updateFn = func(ctx context.Context, r *request.LeaveRequest) error {
			return &pgconn.PgError{Code: "40001"}
		}

		_, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.ErrorIs(t, err, requesterrors.ErrTransitionConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
	})

	t.Run("negative unknown status", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		_, err := deps.service.Transition(ctx, id, "ESCALATED", actorID)

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatus)
	})

	t.Run("sink failure does not undo the transition", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}
		deps.sink.err = errors.New("broker unreachable")

		resp, err := deps.service.Transition(ctx, id, request.StatusApproved, actorID)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRequestService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()
	requesterID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("approved paid leave releases days before delete", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			l := pendingPaidLeave(targetID, requesterID, 5)
			l.Status = request.StatusApproved
			return l, nil
		}
		deleted := false
		deps.repo.deleteFn = func(ctx context.Context, targetID string) error {
			deleted = true
			return nil
		}

		err := deps.service.Delete(ctx, id, actorID)

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.Len(t, deps.ledger.calls, 1)
		assert.Equal(t, "release", deps.ledger.calls[0].op)
		assert.Equal(t, 5, deps.ledger.calls[0].amount)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("pending delete skips the ledger", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return pendingPaidLeave(targetID, requesterID, 5), nil
		}

		err := deps.service.Delete(ctx, id, actorID)

		assert.NoError(t, err)
		assert.Empty(t, deps.ledger.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, targetID string) (*request.LeaveRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, id, actorID)

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
	})
}

func TestRequestService_GetAll(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("scoped to requester for regular users", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.repo.findAllByRequester = func(ctx context.Context, requesterID string) ([]request.LeaveRequest, error) {
			assert.Equal(t, actorID, requesterID)
			return []request.LeaveRequest{*pendingPaidLeave(uuid.New().String(), actorID, 3)}, nil
		}

		resp, err := deps.service.GetAll(ctx, actorID, false)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, actorID, resp[0].RequesterID)
	})

	t.Run("see all for reviewers", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.repo.findAllFn = func(ctx context.Context) ([]request.LeaveRequest, error) {
			return []request.LeaveRequest{
				*pendingPaidLeave(uuid.New().String(), uuid.New().String(), 2),
				*pendingPaidLeave(uuid.New().String(), uuid.New().String(), 4),
			}, nil
		}

		resp, err := deps.service.GetAll(ctx, actorID, true)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
	})
}

func TestRequestService_Stats(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	t.Run("scoped stats pass the requester filter", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.repo.countByStatusFn = func(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
			assert.NotNil(t, requesterID)
			assert.Equal(t, actorID, *requesterID)
			return 4, 1, 2, nil
		}

		resp, err := deps.service.Stats(ctx, actorID, false)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), resp.Total)
		assert.Equal(t, int64(1), resp.Pending)
		assert.Equal(t, int64(2), resp.Approved)
	})

	t.Run("global stats have no filter", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.repo.countByStatusFn = func(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
			assert.Nil(t, requesterID)
			return 10, 3, 6, nil
		}

		resp, err := deps.service.Stats(ctx, actorID, true)

		assert.NoError(t, err)
		assert.Equal(t, int64(10), resp.Total)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.closeFn()

		deps.repo.countByStatusFn = func(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
			return 0, 0, 0, errors.New("db error")
		}

		_, err := deps.service.Stats(ctx, actorID, true)

		assert.Error(t, err)
	})
}
