// Package authz holds the canonical role capability predicates and the
// customer/call-log authorization decision tables. Decisions are pure; the
// services decide error ordering (existence before ownership) around them.
package authz

import (
	"github.com/BMS-2026/crm-service/internal/models"
)

// Operation is a single-record customer operation.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpAssign Operation = "assign"
)

// Decision is the authorization outcome. A denied decision always carries a
// reason so callers can surface a distinguishable authorization error.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// ===== CAPABILITY PREDICATES =====

func CanCreateCustomer(role models.UserRole) bool {
	return role == models.RoleAdmin || role == models.RoleSalesManager
}

func CanDeleteCustomer(role models.UserRole) bool {
	return role == models.RoleAdmin
}

func CanAssignCustomers(role models.UserRole) bool {
	return role == models.RoleAdmin || role == models.RoleSalesManager
}

func CanSeeAllCustomers(role models.UserRole) bool {
	return role == models.RoleAdmin || role == models.RoleSalesManager
}

func CanManageUsers(role models.UserRole) bool {
	return role == models.RoleAdmin
}

// ===== CUSTOMER DECISION TABLE =====

// AuthorizeCustomer evaluates the operation/role decision table for a single
// customer record. The customer must already be known to exist; the read path
// in the service checks existence first so absent records surface as not
// found rather than forbidden.
func AuthorizeCustomer(op Operation, role models.UserRole, callerID uint, customer *models.Customer) Decision {
	switch op {
	case OpRead:
		if CanSeeAllCustomers(role) {
			return allow()
		}
		if ownsOrUnassigned(callerID, customer) {
			return allow()
		}
		return deny("customer is assigned to another representative")

	case OpCreate:
		if CanCreateCustomer(role) {
			return allow()
		}
		return deny("role cannot create customers")

	case OpUpdate:
		if role == models.RoleAdmin || role == models.RoleSalesManager {
			return allow()
		}
		if customer != nil && customer.SalesID != nil && *customer.SalesID == callerID {
			return allow()
		}
		return deny("customer is not in the caller's book")

	case OpDelete:
		if CanDeleteCustomer(role) {
			return allow()
		}
		return deny("only administrators can delete customers")

	case OpAssign:
		if CanAssignCustomers(role) {
			return allow()
		}
		return deny("role cannot assign customers")
	}

	return deny("unknown operation")
}

func ownsOrUnassigned(callerID uint, customer *models.Customer) bool {
	if customer == nil {
		return false
	}
	return customer.SalesID == nil || *customer.SalesID == callerID
}
