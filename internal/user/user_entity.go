package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// DefaultTotalDays is the annual paid-leave allotment assigned at onboarding.
const DefaultTotalDays = 26

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	Name     string    `gorm:"type:varchar(120);not null"`
	Email    string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role     string    `gorm:"type:varchar(20);not null;default:'employee'"`

	TotalDays int `gorm:"type:int;not null;default:26"`
	UsedDays  int `gorm:"type:int;not null;default:0"`

	PasswordHash string `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func IsValidRole(r string) bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}
