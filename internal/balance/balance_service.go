package balance

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, userID string) (BalanceResponse, error)
	Adjust(ctx context.Context, userID string, newTotal int, actorID string) (BalanceResponse, error)
	History(ctx context.Context, userID string) ([]AdjustmentResponse, error)
}

type service struct {
	db     *gorm.DB
	ledger Ledger
	logger *zap.Logger
}

func NewService(db *gorm.DB, ledger Ledger, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, ledger: ledger, logger: l}
}

func (s *service) GetBalance(ctx context.Context, userID string) (BalanceResponse, error) {
	b, err := s.ledger.Snapshot(ctx, userID)
	if err != nil {
		return BalanceResponse{}, err
	}
	return mapBalanceToResponse(b), nil
}

func (s *service) Adjust(ctx context.Context, userID string, newTotal int, actorID string) (BalanceResponse, error) {
	s.logger.Debug("manual balance adjust requested",
		zap.String("user_id", userID),
		zap.Int("total_days", newTotal),
		zap.String("actor_id", actorID),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("adjust begin tx failed", zap.Error(tx.Error))
		return BalanceResponse{}, tx.Error
	}
	defer tx.Rollback()

	if err := s.ledger.WithTx(tx).SetTotalDays(ctx, userID, newTotal, actorID); err != nil {
		s.logger.Warn("manual balance adjust failed", zap.String("user_id", userID), zap.Error(err))
		return BalanceResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("adjust commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	return s.GetBalance(ctx, userID)
}

func (s *service) History(ctx context.Context, userID string) ([]AdjustmentResponse, error) {
	entries, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]AdjustmentResponse, len(entries))
	for i, e := range entries {
		resp[i] = mapAdjustmentToResponse(e)
	}
	return resp, nil
}

func mapBalanceToResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		UserID:    b.UserID.String(),
		TotalDays: b.TotalDays,
		UsedDays:  b.UsedDays,
		Available: b.Available(),
	}
}

func mapAdjustmentToResponse(e BalanceAdjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:            e.ID.String(),
		UserID:        e.UserID.String(),
		Action:        e.Action,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		ActingUserID:  e.ActingUserID.String(),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.RequestID != nil {
		v := e.RequestID.String()
		resp.RequestID = &v
	}
	return resp
}
