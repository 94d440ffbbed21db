package balance

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	GetBalanceForUpdate(ctx context.Context, userID string) (*Balance, error)
	SaveBalance(ctx context.Context, b *Balance) error
	AppendAdjustment(ctx context.Context, entry *BalanceAdjustment) error
	FindAdjustmentsByUser(ctx context.Context, userID string) ([]BalanceAdjustment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetBalance(ctx context.Context, userID string) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).First(&b, "id = ?", userID).Error
	return &b, err
}

// GetBalanceForUpdate takes a row lock on the user's counters. Only
// meaningful when the repository is bound to a transaction via WithTx.
func (r *repository) GetBalanceForUpdate(ctx context.Context, userID string) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", userID).Error
	return &b, err
}

func (r *repository) SaveBalance(ctx context.Context, b *Balance) error {
	return r.db.WithContext(ctx).
		Model(&Balance{}).
		Where("id = ?", b.UserID).
		Updates(map[string]interface{}{
			"total_days": b.TotalDays,
			"used_days":  b.UsedDays,
		}).Error
}

func (r *repository) AppendAdjustment(ctx context.Context, entry *BalanceAdjustment) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindAdjustmentsByUser(ctx context.Context, userID string) ([]BalanceAdjustment, error) {
	var entries []BalanceAdjustment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
