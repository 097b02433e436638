package services

import (
	"context"
	"io"
	"time"

	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type LoginRequest = validator.LoginRequest
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type CreateCustomerRequest = validator.CustomerCreateRequest
type UpdateCustomerRequest = validator.CustomerUpdateRequest
type AssignRequest = validator.AssignRequest
type BulkAssignRequest = validator.BulkAssignRequest
type BulkUnassignRequest = validator.BulkUnassignRequest
type CreateCallLogRequest = validator.CallLogCreateRequest
type UpdateCallLogRequest = validator.CallLogUpdateRequest

// ListCustomersRequest carries the full query surface of the customer list
// endpoint: free-text search, field filters, sorting and pagination.
type ListCustomersRequest struct {
	Search    string   `json:"search"`
	MinScore  *float64 `json:"min_score"`
	MaxScore  *float64 `json:"max_score"`
	Job       string   `json:"job"`
	Marital   string   `json:"marital"`
	Education string   `json:"education"`
	Housing   *bool    `json:"housing"`
	SortBy    string   `json:"sort_by"`
	SortOrder string   `json:"sort_order"`
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
}

type CustomerResponse struct {
	*models.Customer
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanAssign bool `json:"can_assign"`
}

type CustomerListResponse struct {
	Customers []*CustomerResponse `json:"customers"`
	Meta      query.PageMeta      `json:"meta"`
}

// BulkResult reports only the aggregate outcome of a bulk operation.
type BulkResult struct {
	Requested int   `json:"requested"`
	Updated   int64 `json:"updated"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type CallLogResponse struct {
	*models.CallLog
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type CallLogListResponse struct {
	CallLogs []*CallLogResponse `json:"call_logs"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

type CallStatsResponse struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	SuccessRate float64          `json:"success_rate"`
	PeriodStart *time.Time       `json:"period_start,omitempty"`
	PeriodEnd   *time.Time       `json:"period_end,omitempty"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

// GuideRequest asks for a conversation guide for one customer.
type GuideRequest struct {
	CustomerID uint `json:"customer_id" validate:"required,min=1"`
}

type GuideResponse struct {
	CustomerID    uint     `json:"customer_id"`
	Opening       string   `json:"opening"`
	TalkingPoints []string `json:"talking_points"`
	Objections    []string `json:"objection_handling"`
	Closing       string   `json:"closing"`
	Source        string   `json:"source"` // "generated" or "rules"
}

type DashboardResponse struct {
	TotalCustomers    int64                         `json:"total_customers"`
	AssignedCustomers int64                         `json:"assigned_customers"`
	TotalCalls        int64                         `json:"total_calls"`
	CallsByStatus     map[string]int64              `json:"calls_by_status"`
	ScoreBands        []repositories.ScoreBandCount `json:"score_bands"`
	SalesBooks        []repositories.SalesBookCount `json:"sales_books,omitempty"`
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Rows    int `json:"rows"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	GetCurrentUser(ctx context.Context, userID uint) (*models.User, error)
}

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest, actor *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.User, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*models.User, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error)
}

type CustomerService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateCustomerRequest, actor *models.User) (*CustomerResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*CustomerResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCustomerRequest, actor *models.User) (*CustomerResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	// List and search
	List(ctx context.Context, req *ListCustomersRequest, actor *models.User) (*CustomerListResponse, error)

	// Assignment operations
	Assign(ctx context.Context, customerID uint, req *AssignRequest, actor *models.User) (*CustomerResponse, error)
	Unassign(ctx context.Context, customerID uint, actor *models.User) (*CustomerResponse, error)
	BulkAssign(ctx context.Context, req *BulkAssignRequest, actor *models.User) (*BulkResult, error)
	BulkUnassign(ctx context.Context, req *BulkUnassignRequest, actor *models.User) (*BulkResult, error)
}

type CallLogService interface {
	Create(ctx context.Context, req *CreateCallLogRequest, actor *models.User) (*CallLogResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*CallLogResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCallLogRequest, actor *models.User) (*CallLogResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	List(ctx context.Context, filters repositories.CallLogFilters, actor *models.User) (*CallLogListResponse, error)
	GetByCustomer(ctx context.Context, customerID uint, actor *models.User) (*CallLogListResponse, error)
	Stats(ctx context.Context, filters repositories.CallLogFilters, actor *models.User) (*CallStatsResponse, error)
}

type GuideService interface {
	Generate(ctx context.Context, customerID uint, actor *models.User) (*GuideResponse, error)
}

type DashboardService interface {
	Overview(ctx context.Context, actor *models.User) (*DashboardResponse, error)
}

type ImportService interface {
	ImportXLSX(ctx context.Context, r io.Reader, actor *models.User) (*ImportResult, error)
}
