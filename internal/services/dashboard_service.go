package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BMS-2026/crm-service/internal/authz"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

// Overview aggregates the landing-page numbers. Every figure respects the
// caller's visibility: SALES callers see their own book and activity,
// managers and admins see the whole portfolio.
func (s *dashboardService) Overview(ctx context.Context, actor *models.User) (*DashboardResponse, error) {
	visibility := query.VisibilityFilter(actor.Role, actor.ID)

	bands, err := s.repo.Customer().ScoreBands(ctx, visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate score bands: %w", err)
	}

	resp := &DashboardResponse{ScoreBands: bands}
	for _, b := range bands {
		resp.TotalCustomers += b.Count
	}

	if authz.CanSeeAllCustomers(actor.Role) {
		books, err := s.repo.Customer().CountBySales(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate books: %w", err)
		}
		resp.SalesBooks = books
		for _, b := range books {
			resp.AssignedCustomers += b.Count
		}
	} else {
		callerID := actor.ID
		_, assigned, err := s.repo.Customer().List(ctx,
			query.Eq{Field: "sales_id", Value: callerID},
			query.OrderSpec{},
			query.Page{Number: 1, Limit: 1, Offset: 0})
		if err != nil {
			return nil, fmt.Errorf("failed to count assigned customers: %w", err)
		}
		resp.AssignedCustomers = assigned
	}

	// ADMIN sees no call activity at all, matching the call log rules.
	if actor.Role != models.RoleAdmin {
		filters := repositories.CallLogFilters{}
		if scope := authz.CallLogScope(actor.Role, actor.ID); scope != nil {
			filters.UserID = scope
		}
		counts, err := s.repo.CallLog().StatusCounts(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate call stats: %w", err)
		}
		resp.CallsByStatus = make(map[string]int64, len(counts))
		for status, n := range counts {
			resp.CallsByStatus[string(status)] = n
			resp.TotalCalls += n
		}
	}

	return resp, nil
}
