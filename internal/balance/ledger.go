package balance

import (
	"context"
	"errors"
	"time"

	balanceerrors "go-leave/internal/balance/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger owns the total/used day counters and their audit trail. Mutating
// operations lock the user's balance row, so two concurrent reservations for
// the same user serialize instead of racing the check-then-increment. Bind
// the ledger to the caller's transaction with WithTx before mutating.
//
//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Snapshot(ctx context.Context, userID string) (Balance, error)
	GetAvailable(ctx context.Context, userID string) (int, error)
	Reserve(ctx context.Context, userID string, amount int, requestID *string, actorID string) error
	Release(ctx context.Context, userID string, amount int, requestID *string, actorID string) error
	SetTotalDays(ctx context.Context, userID string, newTotal int, actorID string) error
	History(ctx context.Context, userID string) ([]BalanceAdjustment, error)
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) WithTx(tx *gorm.DB) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), logger: l.logger}
}

func (l *ledger) Snapshot(ctx context.Context, userID string) (Balance, error) {
	b, err := l.repo.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Balance{}, balanceerrors.ErrUserNotFound
		}
		return Balance{}, err
	}
	return *b, nil
}

func (l *ledger) GetAvailable(ctx context.Context, userID string) (int, error) {
	b, err := l.Snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	return b.Available(), nil
}

func (l *ledger) Reserve(ctx context.Context, userID string, amount int, requestID *string, actorID string) error {
	if amount <= 0 {
		return balanceerrors.ErrInvalidAmount
	}

	b, actorUUID, err := l.lockBalance(ctx, userID, actorID)
	if err != nil {
		return err
	}

	available := b.Available()
	if amount > available {
		l.logger.Warn("reserve rejected",
			zap.String("user_id", userID),
			zap.Int("available", available),
			zap.Int("requested", amount),
		)
		return &balanceerrors.InsufficientBalanceError{Available: available, Requested: amount}
	}

	b.UsedDays += amount
	if err := l.repo.SaveBalance(ctx, b); err != nil {
		l.logger.Error("reserve persist failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if err := l.appendEntry(ctx, b, ActionDebit, amount, available, requestID, actorUUID); err != nil {
		return err
	}

	l.logger.Info("days reserved",
		zap.String("user_id", userID),
		zap.Int("amount", amount),
		zap.Int("used_days", b.UsedDays),
	)
	return nil
}

func (l *ledger) Release(ctx context.Context, userID string, amount int, requestID *string, actorID string) error {
	if amount <= 0 {
		return balanceerrors.ErrInvalidAmount
	}

	b, actorUUID, err := l.lockBalance(ctx, userID, actorID)
	if err != nil {
		return err
	}

	// used_days never goes negative, even when callers release more than
	// was ever reserved.
	before := b.Available()
	b.UsedDays -= amount
	if b.UsedDays < 0 {
		b.UsedDays = 0
	}
	if err := l.repo.SaveBalance(ctx, b); err != nil {
		l.logger.Error("release persist failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if err := l.appendEntry(ctx, b, ActionCredit, amount, before, requestID, actorUUID); err != nil {
		return err
	}

	l.logger.Info("days released",
		zap.String("user_id", userID),
		zap.Int("amount", amount),
		zap.Int("used_days", b.UsedDays),
	)
	return nil
}

func (l *ledger) SetTotalDays(ctx context.Context, userID string, newTotal int, actorID string) error {
	if newTotal < 0 {
		return balanceerrors.ErrInvalidTotalDays
	}

	b, actorUUID, err := l.lockBalance(ctx, userID, actorID)
	if err != nil {
		return err
	}

	// Lowering the allotment below used_days is allowed; the shortfall only
	// surfaces when the next reservation is checked.
	before := b.Available()
	delta := newTotal - b.TotalDays
	b.TotalDays = newTotal
	if err := l.repo.SaveBalance(ctx, b); err != nil {
		l.logger.Error("manual adjust persist failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if err := l.appendEntry(ctx, b, ActionManualSet, delta, before, nil, actorUUID); err != nil {
		return err
	}

	l.logger.Info("total days adjusted",
		zap.String("user_id", userID),
		zap.Int("total_days", newTotal),
		zap.Int("delta", delta),
	)
	return nil
}

func (l *ledger) History(ctx context.Context, userID string) ([]BalanceAdjustment, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}
	return l.repo.FindAdjustmentsByUser(ctx, userID)
}

func (l *ledger) lockBalance(ctx context.Context, userID, actorID string) (*Balance, uuid.UUID, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, uuid.Nil, balanceerrors.ErrInvalidUserID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, uuid.Nil, balanceerrors.ErrInvalidActorID
	}

	b, err := l.repo.GetBalanceForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, balanceerrors.ErrUserNotFound
		}
		return nil, uuid.Nil, err
	}
	return b, actorUUID, nil
}

func (l *ledger) appendEntry(
	ctx context.Context,
	b *Balance,
	action string,
	amount int,
	before int,
	requestID *string,
	actorUUID uuid.UUID,
) error {
	entry := &BalanceAdjustment{
		ID:            uuid.New(),
		UserID:        b.UserID,
		Action:        action,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  b.Available(),
		ActingUserID:  actorUUID,
		CreatedAt:     time.Now().UTC(),
	}
	if requestID != nil {
		reqUUID, err := uuid.Parse(*requestID)
		if err == nil {
			entry.RequestID = &reqUUID
		}
	}

	if err := l.repo.AppendAdjustment(ctx, entry); err != nil {
		l.logger.Error("append adjustment failed",
			zap.String("user_id", b.UserID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}
	return nil
}
