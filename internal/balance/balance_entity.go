package balance

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionDebit     = "DEBIT"
	ActionCredit    = "CREDIT"
	ActionManualSet = "MANUAL_SET"
)

// Balance is the per-user day counter pair. It maps onto the users table so
// the ledger can lock and mutate the counters without owning the whole user
// record.
type Balance struct {
	UserID    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TotalDays int       `gorm:"type:int;not null;default:26"`
	UsedDays  int       `gorm:"type:int;not null;default:0"`
}

func (Balance) TableName() string { return "users" }

func (b Balance) Available() int { return b.TotalDays - b.UsedDays }

// BalanceAdjustment is one append-only audit row. Entries are never updated
// or deleted; every ledger mutation writes exactly one.
type BalanceAdjustment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_balance_adjustments_user"`
	RequestID     *uuid.UUID `gorm:"type:uuid"`
	Action        string     `gorm:"type:varchar(20);not null"`
	Amount        int        `gorm:"type:int;not null"`
	BalanceBefore int        `gorm:"type:int;not null"`
	BalanceAfter  int        `gorm:"type:int;not null"`
	ActingUserID  uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

func (BalanceAdjustment) TableName() string { return "balance_adjustments" }
