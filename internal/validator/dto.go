package validator

import (
	"github.com/BMS-2026/crm-service/internal/models"
)

// LoginRequest represents the request structure for authentication
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UserCreateRequest represents the request structure for creating portal users
type UserCreateRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
}

// UserUpdateRequest represents the request structure for updating portal users
type UserUpdateRequest struct {
	Email    *string          `json:"email" validate:"omitempty,email"`
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Role     *models.UserRole `json:"role" validate:"omitempty,user_role"`
	Password *string          `json:"password" validate:"omitempty,min=8,max=72"`
}

// CustomerCreateRequest represents the request structure for creating customer records
type CustomerCreateRequest struct {
	OriginalID      uint     `json:"original_id" validate:"required,min=1"`
	Name            *string  `json:"name" validate:"omitempty,max=200"`
	PhoneNumber     *string  `json:"phone_number" validate:"omitempty,phone_number"`
	Age             int      `json:"age" validate:"required,customer_age"`
	Job             string   `json:"job" validate:"required,max=100"`
	Marital         string   `json:"marital" validate:"required,max=50"`
	Education       string   `json:"education" validate:"required,max=100"`
	Housing         bool     `json:"housing"`
	Loan            bool     `json:"loan"`
	Contact         string   `json:"contact" validate:"omitempty,max=50"`
	Month           string   `json:"month" validate:"omitempty,max=20"`
	Duration        int      `json:"duration" validate:"omitempty,min=0"`
	Campaign        int      `json:"campaign" validate:"omitempty,min=0"`
	PDays           int      `json:"pdays"`
	Previous        int      `json:"previous" validate:"omitempty,min=0"`
	PreviousOutcome string   `json:"previous_outcome" validate:"omitempty,max=50"`
	Score           *float64 `json:"score" validate:"omitempty,propensity_score"`
}

// CustomerUpdateRequest represents the request structure for updating customer records
type CustomerUpdateRequest struct {
	Name            *string  `json:"name" validate:"omitempty,max=200"`
	PhoneNumber     *string  `json:"phone_number" validate:"omitempty,phone_number"`
	Age             *int     `json:"age" validate:"omitempty,customer_age"`
	Job             *string  `json:"job" validate:"omitempty,max=100"`
	Marital         *string  `json:"marital" validate:"omitempty,max=50"`
	Education       *string  `json:"education" validate:"omitempty,max=100"`
	Housing         *bool    `json:"housing"`
	Loan            *bool    `json:"loan"`
	Contact         *string  `json:"contact" validate:"omitempty,max=50"`
	Month           *string  `json:"month" validate:"omitempty,max=20"`
	Duration        *int     `json:"duration" validate:"omitempty,min=0"`
	Campaign        *int     `json:"campaign" validate:"omitempty,min=0"`
	PDays           *int     `json:"pdays"`
	Previous        *int     `json:"previous" validate:"omitempty,min=0"`
	PreviousOutcome *string  `json:"previous_outcome" validate:"omitempty,max=50"`
	Score           *float64 `json:"score" validate:"omitempty,propensity_score"`
}

// AssignRequest represents the request structure for assigning one customer
type AssignRequest struct {
	SalesID uint `json:"sales_id" validate:"required,min=1"`
}

// BulkAssignRequest represents the request structure for bulk assignment
type BulkAssignRequest struct {
	CustomerIDs []uint `json:"customer_ids" validate:"required,min=1,max=1000,dive,min=1"`
	SalesID     uint   `json:"sales_id" validate:"required,min=1"`
}

// BulkUnassignRequest represents the request structure for bulk unassignment
type BulkUnassignRequest struct {
	CustomerIDs []uint `json:"customer_ids" validate:"required,min=1,max=1000,dive,min=1"`
}

// CallLogCreateRequest represents the request structure for recording a call
type CallLogCreateRequest struct {
	CustomerID uint              `json:"customer_id" validate:"required,min=1"`
	Status     models.CallStatus `json:"status" validate:"required,call_status"`
	Notes      *string           `json:"notes" validate:"omitempty,max=2000"`
}

// CallLogUpdateRequest represents the request structure for updating a call record
type CallLogUpdateRequest struct {
	Status *models.CallStatus `json:"status" validate:"omitempty,call_status"`
	Notes  *string            `json:"notes" validate:"omitempty,max=2000"`
}
