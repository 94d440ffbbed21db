package request

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	// TypePaidLeave is the only type charged against the day balance.
	TypePaidLeave = "PAID_LEAVE"
	TypePermit    = "PERMIT"
	TypeSick      = "SICK"
)

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_requester"`

	Type      string    `gorm:"type:varchar(30);not null;default:'PAID_LEAVE'"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	// WorkingDays is fixed at creation and never recomputed.
	WorkingDays int    `gorm:"type:int;not null;default:1"`
	Reason      string `gorm:"type:text"`

	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_status"`
	ApproverID *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string { return "leave_requests" }

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func IsValidType(t string) bool {
	switch t {
	case TypePaidLeave, TypePermit, TypeSick:
		return true
	}
	return false
}
