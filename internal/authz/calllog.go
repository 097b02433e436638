package authz

import (
	"github.com/BMS-2026/crm-service/internal/models"
)

// CallLogOperation covers every call-log surface, including list/statistics.
type CallLogOperation string

const (
	CallLogCreate CallLogOperation = "create"
	CallLogRead   CallLogOperation = "read"
	CallLogUpdate CallLogOperation = "update"
	CallLogDelete CallLogOperation = "delete"
	CallLogList   CallLogOperation = "list"
	CallLogStats  CallLogOperation = "stats"
)

// CanAccessCallLogs reports whether the role may touch call logs at all.
// Administrators are blocked from every call-log operation; the check is
// independent of any record, so callers can evaluate it before a lookup.
func CanAccessCallLogs(role models.UserRole) bool {
	return role != models.RoleAdmin
}

func CanSeeAllCallLogs(role models.UserRole) bool {
	return role == models.RoleSalesManager
}

func CanDeleteCallLog(role models.UserRole) bool {
	return role == models.RoleSalesManager
}

// AuthorizeCallLog evaluates the call-log decision table. The ADMIN block is
// unconditional and checked before anything else: administrators are denied
// every call-log operation regardless of record state.
func AuthorizeCallLog(op CallLogOperation, role models.UserRole, callerID uint, log *models.CallLog) Decision {
	if !CanAccessCallLogs(role) {
		return deny("administrators cannot access call logs")
	}

	switch op {
	case CallLogCreate, CallLogList, CallLogStats:
		// Creation ownership of the target customer and implicit list
		// scoping are enforced by the service with CanLogCallFor and
		// CallLogScope.
		return allow()

	case CallLogRead, CallLogUpdate:
		if CanSeeAllCallLogs(role) {
			return allow()
		}
		if log != nil && log.UserID == callerID {
			return allow()
		}
		return deny("call log belongs to another user")

	case CallLogDelete:
		if CanDeleteCallLog(role) {
			return allow()
		}
		return deny("only sales managers can delete call logs")
	}

	return deny("unknown operation")
}

// CanLogCallFor reports whether the caller may create a call log against the
// given customer. SALES users may only log calls on their own book.
func CanLogCallFor(role models.UserRole, callerID uint, customer *models.Customer) Decision {
	if !CanAccessCallLogs(role) {
		return deny("administrators cannot access call logs")
	}
	if role == models.RoleSales {
		if customer == nil || customer.SalesID == nil || *customer.SalesID != callerID {
			return deny("customer is not assigned to the caller")
		}
	}
	return allow()
}

// CallLogScope returns the user id a list/statistics query must be filtered
// by, or nil when the role sees all logs. The filter is injected, never
// optional, for SALES callers.
func CallLogScope(role models.UserRole, callerID uint) *uint {
	if role == models.RoleSales {
		id := callerID
		return &id
	}
	return nil
}
