package services

import (
	"errors"
	"fmt"

	"github.com/BMS-2026/crm-service/internal/validator"
)

// Sentinel errors returned by the service layer. Handlers map these to
// HTTP status codes; nothing below this layer knows about HTTP.
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCallLogNotFound     = errors.New("call record not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateOriginalID = errors.New("customer with this original_id already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)

// PermissionError carries enough context to log who was denied what.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// NewPermissionError creates a permission error with context
func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// NewValidationError creates a single-field validation error
func NewValidationError(field, message string, value interface{}) *validator.ValidationError {
	return &validator.ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}
}

// IsPermissionError reports whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err carries field validation failures
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *validator.ValidationError
	return errors.As(err, &single)
}

// IsNotFoundError reports whether err is one of the not-found sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCallLogNotFound)
}

// IsConflictError reports whether err is a uniqueness conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateOriginalID)
}
