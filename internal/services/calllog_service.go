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

type callLogService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
	maxLimit  int
}

func NewCallLogService(repo repositories.Repository, logger *slog.Logger, bv *validator.BusinessValidator, publisher events.EventPublisher, maxLimit int) CallLogService {
	return &callLogService{
		repo:      repo,
		logger:    logger,
		validator: bv,
		publisher: publisher,
		maxLimit:  maxLimit,
	}
}

// resolveWindow bounds the list window the same way the customer list does:
// the limit is clamped to [1, maxLimit] regardless of client input, and a
// negative offset floors at zero.
func (s *callLogService) resolveWindow(filters repositories.CallLogFilters) repositories.CallLogFilters {
	filters.Limit = query.ResolvePage(1, filters.Limit, s.maxLimit).Limit
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return filters
}

// Create records a call outcome. The call date is always server-assigned;
// clients cannot backdate outreach activity.
func (s *callLogService) Create(ctx context.Context, req *CreateCallLogRequest, actor *models.User) (*CallLogResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if d := authz.AuthorizeCallLog(authz.CallLogCreate, actor.Role, actor.ID, nil); !d.Allowed {
		return nil, NewPermissionError(actor.ID, 0, "call_log", "create", d.Reason)
	}

	customer, err := s.repo.Customer().GetByID(ctx, req.CustomerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.CanLogCallFor(actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, req.CustomerID, "call_log", "create", d.Reason)
	}

	log := &models.CallLog{
		CustomerID: req.CustomerID,
		UserID:     actor.ID,
		Status:     req.Status,
		Notes:      req.Notes,
		CallDate:   time.Now().UTC(),
	}

	if err := s.repo.CallLog().Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create call record: %w", err)
	}

	s.logger.Info("Call recorded", "call_log_id", log.ID, "customer_id", log.CustomerID, "status", log.Status, "actor_id", actor.ID)
	s.publishCreated(ctx, actor.ID, log)

	return s.buildResponse(log, actor), nil
}

func (s *callLogService) GetByID(ctx context.Context, id uint, actor *models.User) (*CallLogResponse, error) {
	// The ADMIN block comes before the lookup: the denial must not depend
	// on whether the record exists.
	if !authz.CanAccessCallLogs(actor.Role) {
		return nil, NewPermissionError(actor.ID, id, "call_log", "read", "administrators cannot access call logs")
	}

	log, err := s.getLog(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := authz.AuthorizeCallLog(authz.CallLogRead, actor.Role, actor.ID, log); !d.Allowed {
		return nil, NewPermissionError(actor.ID, id, "call_log", "read", d.Reason)
	}

	return s.buildResponse(log, actor), nil
}

func (s *callLogService) Update(ctx context.Context, id uint, req *UpdateCallLogRequest, actor *models.User) (*CallLogResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if !authz.CanAccessCallLogs(actor.Role) {
		return nil, NewPermissionError(actor.ID, id, "call_log", "update", "administrators cannot access call logs")
	}

	log, err := s.getLog(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := authz.AuthorizeCallLog(authz.CallLogUpdate, actor.Role, actor.ID, log); !d.Allowed {
		return nil, NewPermissionError(actor.ID, id, "call_log", "update", d.Reason)
	}

	if req.Status != nil {
		log.Status = *req.Status
	}
	if req.Notes != nil {
		log.Notes = req.Notes
	}

	if err := s.repo.CallLog().Update(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to update call record: %w", err)
	}

	s.logger.Info("Call record updated", "call_log_id", id, "actor_id", actor.ID)

	return s.buildResponse(log, actor), nil
}

func (s *callLogService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if !authz.CanAccessCallLogs(actor.Role) {
		return NewPermissionError(actor.ID, id, "call_log", "delete", "administrators cannot access call logs")
	}

	log, err := s.getLog(ctx, id)
	if err != nil {
		return err
	}

	if d := authz.AuthorizeCallLog(authz.CallLogDelete, actor.Role, actor.ID, log); !d.Allowed {
		return NewPermissionError(actor.ID, id, "call_log", "delete", d.Reason)
	}

	if err := s.repo.CallLog().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCallLogNotFound
		}
		return fmt.Errorf("failed to delete call record: %w", err)
	}

	s.logger.Info("Call record deleted", "call_log_id", id, "actor_id", actor.ID)

	return nil
}

func (s *callLogService) List(ctx context.Context, filters repositories.CallLogFilters, actor *models.User) (*CallLogListResponse, error) {
	if d := authz.AuthorizeCallLog(authz.CallLogList, actor.Role, actor.ID, nil); !d.Allowed {
		return nil, NewPermissionError(actor.ID, 0, "call_log", "list", d.Reason)
	}

	// SALES callers see only their own activity regardless of requested
	// filters; managers may scope by any rep.
	if scope := authz.CallLogScope(actor.Role, actor.ID); scope != nil {
		filters.UserID = scope
	}
	filters = s.resolveWindow(filters)

	logs, total, err := s.repo.CallLog().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list call records: %w", err)
	}

	responses := make([]*CallLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, s.buildResponse(log, actor))
	}

	return &CallLogListResponse{
		CallLogs: responses,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

func (s *callLogService) GetByCustomer(ctx context.Context, customerID uint, actor *models.User) (*CallLogListResponse, error) {
	if d := authz.AuthorizeCallLog(authz.CallLogList, actor.Role, actor.ID, nil); !d.Allowed {
		return nil, NewPermissionError(actor.ID, customerID, "call_log", "list", d.Reason)
	}

	customer, err := s.repo.Customer().GetByID(ctx, customerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if d := authz.AuthorizeCustomer(authz.OpRead, actor.Role, actor.ID, customer); !d.Allowed {
		return nil, NewPermissionError(actor.ID, customerID, "customer", "read", d.Reason)
	}

	filters := repositories.CallLogFilters{CustomerID: &customerID}
	if scope := authz.CallLogScope(actor.Role, actor.ID); scope != nil {
		filters.UserID = scope
	}
	filters = s.resolveWindow(filters)

	logs, total, err := s.repo.CallLog().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list call records: %w", err)
	}

	responses := make([]*CallLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, s.buildResponse(log, actor))
	}

	return &CallLogListResponse{CallLogs: responses, Total: total}, nil
}

func (s *callLogService) Stats(ctx context.Context, filters repositories.CallLogFilters, actor *models.User) (*CallStatsResponse, error) {
	if d := authz.AuthorizeCallLog(authz.CallLogStats, actor.Role, actor.ID, nil); !d.Allowed {
		return nil, NewPermissionError(actor.ID, 0, "call_log", "stats", d.Reason)
	}

	if scope := authz.CallLogScope(actor.Role, actor.ID); scope != nil {
		filters.UserID = scope
	}

	counts, err := s.repo.CallLog().StatusCounts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate call stats: %w", err)
	}

	var total, won int64
	byStatus := make(map[string]int64, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
		total += n
		if status == models.CallInterested || status == models.CallCompleted {
			won += n
		}
	}

	resp := &CallStatsResponse{
		Total:       total,
		ByStatus:    byStatus,
		PeriodStart: filters.DateFrom,
		PeriodEnd:   filters.DateTo,
	}
	if total > 0 {
		resp.SuccessRate = float64(won) / float64(total)
	}

	return resp, nil
}

// ===== HELPERS =====

func (s *callLogService) getLog(ctx context.Context, id uint) (*models.CallLog, error) {
	log, err := s.repo.CallLog().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCallLogNotFound
		}
		return nil, fmt.Errorf("failed to get call record: %w", err)
	}
	return log, nil
}

func (s *callLogService) buildResponse(log *models.CallLog, actor *models.User) *CallLogResponse {
	return &CallLogResponse{
		CallLog:   log,
		CanEdit:   authz.AuthorizeCallLog(authz.CallLogUpdate, actor.Role, actor.ID, log).Allowed,
		CanDelete: authz.AuthorizeCallLog(authz.CallLogDelete, actor.Role, actor.ID, log).Allowed,
	}
}

func (s *callLogService) publishCreated(ctx context.Context, actorID uint, log *models.CallLog) {
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       events.CallLogCreated,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload: events.CallLogPayload{
			CallLogID:  log.ID,
			CustomerID: log.CustomerID,
			Status:     string(log.Status),
		},
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish call event", "error", err)
	}
}
