package repositories

import (
	"context"
	"time"

	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
)

// ===== SHARED FILTER STRUCTS =====

type CallLogFilters struct {
	UserID     *uint              `json:"user_id"`
	CustomerID *uint              `json:"customer_id"`
	Status     *models.CallStatus `json:"status"`
	DateFrom   *time.Time         `json:"date_from"`
	DateTo     *time.Time         `json:"date_to"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Search string           `json:"search"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type SalesBookCount struct {
	SalesID   uint   `json:"sales_id"`
	SalesName string `json:"sales_name"`
	Count     int64  `json:"count"`
}

type ScoreBandCount struct {
	Band  string `json:"band"`
	Count int64  `json:"count"`
}

// ===== REPOSITORY INTERFACES =====

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByOriginalID(ctx context.Context, originalID uint) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uint) error

	// List interprets the predicate tree, ordering and page window built
	// by the query package.
	List(ctx context.Context, filter query.Expr, order query.OrderSpec, page query.Page) ([]*models.Customer, int64, error)

	// SetSales updates the assignment column only; a nil salesID
	// unassigns. Returns the number of rows affected.
	SetSales(ctx context.Context, id uint, salesID *uint) (int64, error)
	BulkSetSales(ctx context.Context, ids []uint, salesID *uint) (int64, error)

	// UnassignBySales returns every customer in the given user's book to
	// the unassigned pool. Used when a user stops being a sales rep, so
	// sales_id never points at a non-SALES user.
	UnassignBySales(ctx context.Context, salesID uint) (int64, error)

	CountBySales(ctx context.Context) ([]SalesBookCount, error)
	ScoreBands(ctx context.Context, visibility query.Expr) ([]ScoreBandCount, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type CallLogRepository interface {
	Create(ctx context.Context, log *models.CallLog) error
	GetByID(ctx context.Context, id uint) (*models.CallLog, error)
	Update(ctx context.Context, log *models.CallLog) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters CallLogFilters) ([]*models.CallLog, int64, error)

	// StatusCounts aggregates log counts per status under the same
	// filters the list path uses (scoped user, customer, date range).
	StatusCounts(ctx context.Context, filters CallLogFilters) (map[models.CallStatus]int64, error)
}
