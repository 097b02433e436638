package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BMS-2026/crm-service/internal/authz"
	"github.com/BMS-2026/crm-service/internal/events"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/validator"
)

type customerService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
	maxLimit  int
}

func NewCustomerService(repo repositories.Repository, logger *slog.Logger, bv *validator.BusinessValidator, publisher events.EventPublisher, maxLimit int) CustomerService {
	return &customerService{
		repo:      repo,
		logger:    logger,
		validator: bv,
		publisher: publisher,
		maxLimit:  maxLimit,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *customerService) Create(ctx context.Context, req *CreateCustomerRequest, actor *models.User) (*CustomerResponse, error) {
	if errs := s.validator.ValidateCustomerCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if !authz.CanCreateCustomer(actor.Role) {
		return nil, NewPermissionError(actor.ID, 0, "customer", "create", "insufficient role permissions")
	}

	if existing, err := s.repo.Customer().GetByOriginalID(ctx, req.OriginalID); err == nil && existing != nil {
		return nil, ErrDuplicateOriginalID
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check original_id: %w", err)
	}

	customer := &models.Customer{
		OriginalID:      req.OriginalID,
		Name:            req.Name,
		PhoneNumber:     req.PhoneNumber,
		Age:             req.Age,
		Job:             req.Job,
		Marital:         req.Marital,
		Education:       req.Education,
		Housing:         req.Housing,
		Loan:            req.Loan,
		Contact:         req.Contact,
		Month:           req.Month,
		Duration:        req.Duration,
		Campaign:        req.Campaign,
		PDays:           req.PDays,
		Previous:        req.Previous,
		PreviousOutcome: req.PreviousOutcome,
		Score:           req.Score,
	}

	if err := s.repo.Customer().Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("Customer created", "customer_id", customer.ID, "original_id", customer.OriginalID, "actor_id", actor.ID)

	return s.buildResponse(customer, actor), nil
}

// GetByID resolves existence before access: a caller probing an id it
// cannot see learns only whether the record exists, not who owns it —
// and a missing record is always reported as missing, never as denied.
func (s *customerService) GetByID(ctx context.Context, id uint, actor *models.User) (*CustomerResponse, error) {
	customer, err := s.repo.Customer().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpRead, actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, id, "customer", "read", d.Reason)
	}

	return s.buildResponse(customer, actor), nil
}

func (s *customerService) Update(ctx context.Context, id uint, req *UpdateCustomerRequest, actor *models.User) (*CustomerResponse, error) {
	if errs := s.validator.ValidateCustomerUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	customer, err := s.repo.Customer().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpUpdate, actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, id, "customer", "update", d.Reason)
	}

	s.applyUpdate(customer, req)

	if err := s.repo.Customer().Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.logger.Info("Customer updated", "customer_id", id, "actor_id", actor.ID)

	return s.buildResponse(customer, actor), nil
}

func (s *customerService) Delete(ctx context.Context, id uint, actor *models.User) error {
	customer, err := s.repo.Customer().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpDelete, actor.Role, actor.ID, customer); !d.Allowed {
		return NewPermissionError(actor.ID, id, "customer", "delete", d.Reason)
	}

	if err := s.repo.Customer().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.logger.Info("Customer deleted", "customer_id", id, "actor_id", actor.ID)

	return nil
}

// ===== LIST AND SEARCH =====

func (s *customerService) List(ctx context.Context, req *ListCustomersRequest, actor *models.User) (*CustomerListResponse, error) {
	params := query.CustomerParams{
		Search:    req.Search,
		MinScore:  req.MinScore,
		MaxScore:  req.MaxScore,
		Job:       req.Job,
		Marital:   req.Marital,
		Education: req.Education,
		Housing:   req.Housing,
	}

	filter := query.BuildCustomerFilter(actor.Role, actor.ID, params)
	order := query.ResolveOrdering(req.SortBy, req.SortOrder)
	page := query.ResolvePage(req.Page, req.Limit, s.maxLimit)

	customers, total, err := s.repo.Customer().List(ctx, filter, order, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	responses := make([]*CustomerResponse, 0, len(customers))
	for _, c := range customers {
		responses = append(responses, s.buildResponse(c, actor))
	}

	return &CustomerListResponse{
		Customers: responses,
		Meta:      query.ResolvePageMeta(page, total),
	}, nil
}

// ===== ASSIGNMENT OPERATIONS =====

func (s *customerService) Assign(ctx context.Context, customerID uint, req *AssignRequest, actor *models.User) (*CustomerResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	customer, err := s.repo.Customer().GetByID(ctx, customerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpAssign, actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, customerID, "customer", "assign", d.Reason)
	}

	if err := s.checkAssignTarget(ctx, req.SalesID); err != nil {
		return nil, err
	}

	salesID := req.SalesID
	if _, err := s.repo.Customer().SetSales(ctx, customerID, &salesID); err != nil {
		return nil, fmt.Errorf("failed to assign customer: %w", err)
	}
	customer.SalesID = &salesID
	customer.Sales = nil

	s.logger.Info("Customer assigned", "customer_id", customerID, "sales_id", salesID, "actor_id", actor.ID)
	s.publishAssignment(ctx, events.CustomerAssigned, actor.ID, []uint{customerID}, &salesID, 1)

	return s.buildResponse(customer, actor), nil
}

func (s *customerService) Unassign(ctx context.Context, customerID uint, actor *models.User) (*CustomerResponse, error) {
	customer, err := s.repo.Customer().GetByID(ctx, customerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpAssign, actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, customerID, "customer", "unassign", d.Reason)
	}

	// Unassigning an already-unassigned customer is a no-op, not an error.
	if _, err := s.repo.Customer().SetSales(ctx, customerID, nil); err != nil {
		return nil, fmt.Errorf("failed to unassign customer: %w", err)
	}
	customer.SalesID = nil
	customer.Sales = nil

	s.logger.Info("Customer unassigned", "customer_id", customerID, "actor_id", actor.ID)
	s.publishAssignment(ctx, events.CustomerUnassigned, actor.ID, []uint{customerID}, nil, 1)

	return s.buildResponse(customer, actor), nil
}

// BulkAssign updates every requested id that exists and reports only the
// aggregate affected count; ids that match no row are silently skipped.
func (s *customerService) BulkAssign(ctx context.Context, req *BulkAssignRequest, actor *models.User) (*BulkResult, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if !authz.CanAssignCustomers(actor.Role) {
		return nil, NewPermissionError(actor.ID, 0, "customer", "bulk_assign", "insufficient role permissions")
	}

	if err := s.checkAssignTarget(ctx, req.SalesID); err != nil {
		return nil, err
	}

	salesID := req.SalesID
	affected, err := s.repo.Customer().BulkSetSales(ctx, req.CustomerIDs, &salesID)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk assign: %w", err)
	}

	s.logger.Info("Customers bulk assigned",
		"requested", len(req.CustomerIDs), "affected", affected, "sales_id", salesID, "actor_id", actor.ID)
	s.publishAssignment(ctx, events.CustomerAssigned, actor.ID, req.CustomerIDs, &salesID, affected)

	return &BulkResult{Requested: len(req.CustomerIDs), Updated: affected}, nil
}

func (s *customerService) BulkUnassign(ctx context.Context, req *BulkUnassignRequest, actor *models.User) (*BulkResult, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if !authz.CanAssignCustomers(actor.Role) {
		return nil, NewPermissionError(actor.ID, 0, "customer", "bulk_unassign", "insufficient role permissions")
	}

	affected, err := s.repo.Customer().BulkSetSales(ctx, req.CustomerIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk unassign: %w", err)
	}

	s.logger.Info("Customers bulk unassigned",
		"requested", len(req.CustomerIDs), "affected", affected, "actor_id", actor.ID)
	s.publishAssignment(ctx, events.CustomerUnassigned, actor.ID, req.CustomerIDs, nil, affected)

	return &BulkResult{Requested: len(req.CustomerIDs), Updated: affected}, nil
}

// ===== HELPERS =====

// checkAssignTarget rejects assignment to anyone who is not an active
// SALES user. Managers and admins do not hold books of their own.
func (s *customerService) checkAssignTarget(ctx context.Context, salesID uint) error {
	target, err := s.repo.User().GetByID(ctx, salesID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return validator.ValidationErrors{*NewValidationError("sales_id", "user does not exist", salesID)}
		}
		return fmt.Errorf("failed to resolve assignment target: %w", err)
	}
	if target.Role != models.RoleSales {
		return validator.ValidationErrors{*NewValidationError("sales_id", "user is not a sales representative", salesID)}
	}
	return nil
}

func (s *customerService) applyUpdate(customer *models.Customer, req *UpdateCustomerRequest) {
	if req.Name != nil {
		customer.Name = req.Name
	}
	if req.PhoneNumber != nil {
		customer.PhoneNumber = req.PhoneNumber
	}
	if req.Age != nil {
		customer.Age = *req.Age
	}
	if req.Job != nil {
		customer.Job = *req.Job
	}
	if req.Marital != nil {
		customer.Marital = *req.Marital
	}
	if req.Education != nil {
		customer.Education = *req.Education
	}
	if req.Housing != nil {
		customer.Housing = *req.Housing
	}
	if req.Loan != nil {
		customer.Loan = *req.Loan
	}
	if req.Contact != nil {
		customer.Contact = *req.Contact
	}
	if req.Month != nil {
		customer.Month = *req.Month
	}
	if req.Duration != nil {
		customer.Duration = *req.Duration
	}
	if req.Campaign != nil {
		customer.Campaign = *req.Campaign
	}
	if req.PDays != nil {
		customer.PDays = *req.PDays
	}
	if req.Previous != nil {
		customer.Previous = *req.Previous
	}
	if req.PreviousOutcome != nil {
		customer.PreviousOutcome = *req.PreviousOutcome
	}
	if req.Score != nil {
		customer.Score = req.Score
	}
}

func (s *customerService) buildResponse(customer *models.Customer, actor *models.User) *CustomerResponse {
	return &CustomerResponse{
		Customer:  customer,
		CanEdit:   authz.AuthorizeCustomer(authz.OpUpdate, actor.Role, actor.ID, customer).Allowed,
		CanDelete: authz.AuthorizeCustomer(authz.OpDelete, actor.Role, actor.ID, customer).Allowed,
		CanAssign: authz.AuthorizeCustomer(authz.OpAssign, actor.Role, actor.ID, customer).Allowed,
	}
}

func (s *customerService) publishAssignment(ctx context.Context, t events.EventType, actorID uint, ids []uint, salesID *uint, affected int64) {
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload: events.AssignmentPayload{
			CustomerIDs: ids,
			SalesID:     salesID,
			Affected:    affected,
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish assignment event", "type", t, "error", err)
	}
}
