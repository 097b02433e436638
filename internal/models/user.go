package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleSalesManager UserRole = "SALES_MANAGER"
	RoleSales        UserRole = "SALES"
)

// ValidRole reports whether r is one of the three portal roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleSalesManager, RoleSales:
		return true
	}
	return false
}

type User struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Name  string   `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Role  UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,oneof=ADMIN SALES_MANAGER SALES"`

	// PasswordHash never leaves the auth boundary.
	PasswordHash string `json:"-" gorm:"not null;size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
