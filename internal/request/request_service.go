package request

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/events"
	"go-leave/internal/notification"
	requesterrors "go-leave/internal/request/errors"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/workday"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	statsAllKey        = "requests:stats:all"
	statsUserKeyPrefix = "requests:stats:user:"
	statsCacheTTL      = 30 * time.Second
)

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, requesterID string, req CreateRequest) (RequestResponse, error)
	GetAll(ctx context.Context, actorID string, seeAll bool) ([]RequestResponse, error)
	GetByID(ctx context.Context, id string) (RequestResponse, error)
	Transition(ctx context.Context, id, newStatus, actorID string) (RequestResponse, error)
	Delete(ctx context.Context, id, actorID string) error
	Stats(ctx context.Context, actorID string, seeAll bool) (StatsResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	ledger balance.Ledger
	cal    workday.Calendar
	sink   notification.Sink
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	ledger balance.Ledger,
	cal workday.Calendar,
	sink notification.Sink,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	if sink == nil {
		sink = notification.Noop{}
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		cal:    cal,
		sink:   sink,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, requesterID string, req CreateRequest) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave request",
		zap.String("request_id", rid),
		zap.String("requester_id", requesterID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	requesterUUID, err := uuid.Parse(requesterID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequesterID
	}
	if !IsValidType(req.Type) {
		return RequestResponse{}, requesterrors.ErrInvalidType
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return RequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	days, err := workday.Count(startDate, endDate, s.cal)
	if err != nil {
		s.logger.Warn("create leave request invalid range",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return RequestResponse{}, requesterrors.ErrInvalidDateRange
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create leave request begin tx failed", zap.Error(tx.Error))
		return RequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if req.Type == TypePaidLeave {
		// Pre-check only: days are debited at approval time, so two pending
		// requests may together exceed the balance. Enforcement happens when
		// the second one is approved.
		available, err := s.ledger.WithTx(tx).GetAvailable(ctx, requesterID)
		if err != nil {
			return RequestResponse{}, err
		}
		if days > available {
			s.logger.Warn("create leave request insufficient balance",
				zap.String("requester_id", requesterID),
				zap.Int("available", available),
				zap.Int("requested", days),
			)
			return RequestResponse{}, &balanceerrors.InsufficientBalanceError{Available: available, Requested: days}
		}
	}

	l := &LeaveRequest{
		ID:          uuid.New(),
		RequesterID: requesterUUID,
		Type:        req.Type,
		StartDate:   startDate,
		EndDate:     endDate,
		WorkingDays: days,
		Reason:      req.Reason,
		Status:      StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave request persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create leave request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.invalidateStats(ctx, requesterID)
	s.logger.Info("leave request created",
		zap.String("request_id", rid),
		zap.String("leave_request_id", l.ID.String()),
		zap.Int("working_days", days),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actorID string, seeAll bool) ([]RequestResponse, error) {
	var (
		reqs []LeaveRequest
		err  error
	)
	if seeAll {
		reqs, err = s.repo.FindAll(ctx)
	} else {
		reqs, err = s.repo.FindAllByRequester(ctx, actorID)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(reqs), nil
}

func (s *service) GetByID(ctx context.Context, id string) (RequestResponse, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	return mapToResponse(*req), nil
}

// Transition moves a request between PENDING, APPROVED and REJECTED and keeps
// the day ledger consistent with the move. The status write and the ledger
// mutation commit as one transaction; a failed reservation aborts the whole
// transition and the request keeps its prior status. Repeating the current
// status is an idempotent no-op.
func (s *service) Transition(ctx context.Context, id, newStatus, actorID string) (RequestResponse, error) {
	s.logger.Debug("transition requested",
		zap.String("leave_request_id", id),
		zap.String("target_status", newStatus),
		zap.String("actor_id", actorID),
	)

	if !IsValidStatus(newStatus) {
		return RequestResponse{}, requesterrors.ErrInvalidStatus
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidActorID
	}

	var (
		resp RequestResponse
		ev   *events.RequestStatusChangedEvent
		err  error
	)
	for attempt := 1; ; attempt++ {
		resp, ev, err = s.transitionOnce(ctx, id, newStatus, actorID)
		if err != nil && isSerializationFailure(err) && attempt == 1 {
			s.logger.Warn("transition serialization conflict, retrying",
				zap.String("leave_request_id", id),
			)
			continue
		}
		break
	}
	if err != nil {
		if isSerializationFailure(err) {
			return RequestResponse{}, requesterrors.ErrTransitionConflict
		}
		return RequestResponse{}, err
	}

	if ev != nil {
		// Fire-and-forget: a failing sink never undoes the transition.
		if nerr := s.sink.StatusChanged(ctx, *ev); nerr != nil {
			s.logger.Error("status change notification failed",
				zap.String("leave_request_id", id),
				zap.Error(nerr),
			)
		}
		s.invalidateStats(ctx, ev.RequesterID)
		s.logger.Info("transition success",
			zap.String("leave_request_id", id),
			zap.String("from_status", ev.OldStatus),
			zap.String("to_status", ev.NewStatus),
		)
	}

	return resp, nil
}

func (s *service) transitionOnce(ctx context.Context, id, newStatus, actorID string) (RequestResponse, *events.RequestStatusChangedEvent, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("transition begin tx failed", zap.Error(tx.Error))
		return RequestResponse{}, nil, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	req, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, nil, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, nil, err
	}

	if req.Status == newStatus {
		// Repeated approvals and rejections happen on double-clicked UI
		// buttons; treat them as success with no ledger effect.
		return mapToResponse(*req), nil, nil
	}

	oldStatus := req.Status
	if req.Type == TypePaidLeave {
		ledger := s.ledger.WithTx(tx)
		switch {
		case newStatus == StatusApproved:
			if err := ledger.Reserve(ctx, req.RequesterID.String(), req.WorkingDays, &id, actorID); err != nil {
				return RequestResponse{}, nil, err
			}
		case oldStatus == StatusApproved:
			if err := ledger.Release(ctx, req.RequesterID.String(), req.WorkingDays, &id, actorID); err != nil {
				return RequestResponse{}, nil, err
			}
		}
	}

	req.Status = newStatus
	if newStatus == StatusApproved {
		actorUUID := uuid.MustParse(actorID)
		now := time.Now().UTC()
		req.ApproverID = &actorUUID
		req.ApprovedAt = &now
	} else {
		req.ApproverID = nil
		req.ApprovedAt = nil
	}

	if err := qtx.Update(ctx, req); err != nil {
		s.logger.Error("transition persist failed",
			zap.String("leave_request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, nil, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("transition commit failed",
			zap.String("leave_request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, nil, err
	}

	ev := &events.RequestStatusChangedEvent{
		EventType:   "leave_request_status_changed",
		RequestID:   req.ID.String(),
		RequesterID: req.RequesterID.String(),
		LeaveType:   req.Type,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		WorkingDays: req.WorkingDays,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
	return mapToResponse(*req), ev, nil
}

// Delete removes a request outright. An approved paid-leave request first
// credits its days back, in the same transaction as the delete.
func (s *service) Delete(ctx context.Context, id, actorID string) error {
	s.logger.Debug("delete leave request",
		zap.String("leave_request_id", id),
		zap.String("actor_id", actorID),
	)

	if _, err := uuid.Parse(actorID); err != nil {
		return requesterrors.ErrInvalidActorID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	req, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return requesterrors.ErrRequestNotFound
		}
		return err
	}

	if req.Status == StatusApproved && req.Type == TypePaidLeave {
		if err := s.ledger.WithTx(tx).Release(ctx, req.RequesterID.String(), req.WorkingDays, &id, actorID); err != nil {
			return err
		}
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete persist failed", zap.String("leave_request_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete commit failed", zap.String("leave_request_id", id), zap.Error(err))
		return err
	}

	s.invalidateStats(ctx, req.RequesterID.String())
	s.logger.Info("leave request deleted",
		zap.String("leave_request_id", id),
		zap.String("status_at_delete", req.Status),
	)
	return nil
}

func (s *service) Stats(ctx context.Context, actorID string, seeAll bool) (StatsResponse, error) {
	key := statsAllKey
	var scope *string
	if !seeAll {
		key = statsUserKeyPrefix + actorID
		scope = &actorID
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp StatsResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		total, pending, approved, err := s.repo.CountByStatus(ctx, scope)
		if err != nil {
			return nil, err
		}

		resp := StatsResponse{Total: total, Pending: pending, Approved: approved}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, key, jsonData, statsCacheTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return StatsResponse{}, err
	}

	return v.(StatsResponse), nil
}

func (s *service) invalidateStats(ctx context.Context, requesterID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, statsAllKey, statsUserKeyPrefix+requesterID).Err(); err != nil {
		s.logger.Error("invalidate stats cache failed",
			zap.String("requester_id", requesterID),
			zap.Error(err),
		)
	}
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure and deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) RequestResponse {
	resp := RequestResponse{
		ID:          l.ID.String(),
		RequesterID: l.RequesterID.String(),
		Type:        l.Type,
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		WorkingDays: l.WorkingDays,
		Reason:      l.Reason,
		Status:      l.Status,
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(reqs []LeaveRequest) []RequestResponse {
	resp := make([]RequestResponse, len(reqs))
	for i, l := range reqs {
		resp[i] = mapToResponse(l)
	}
	return resp
}
