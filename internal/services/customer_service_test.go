package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BMS-2026/crm-service/internal/events"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/validator"
)

func newCustomerService(t *testing.T, repo *mockRepository) (CustomerService, *events.MockEventPublisher) {
	t.Helper()
	publisher := events.NewMockEventPublisher(testLogger(t))
	svc := NewCustomerService(repo, testLogger(t), validator.NewBusinessValidator(), publisher, 100)
	return svc, publisher
}

func TestCustomerService_GetByID(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	otherRep := uint(9)
	repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 100}
	repo.customer.customers[2] = &models.Customer{ID: 2, OriginalID: 200, SalesID: &otherRep}

	svc, _ := newCustomerService(t, repo)

	t.Run("missing record is not found even for denied roles", func(t *testing.T) {
		_, err := svc.GetByID(ctx, 999, salesRep(3))
		if !errors.Is(err, ErrCustomerNotFound) {
			t.Errorf("expected ErrCustomerNotFound, got %v", err)
		}
	})

	t.Run("sales reads unassigned record", func(t *testing.T) {
		resp, err := svc.GetByID(ctx, 1, salesRep(3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.ID != 1 {
			t.Errorf("got customer %d", resp.ID)
		}
		if resp.CanDelete {
			t.Error("sales must not see delete capability")
		}
	})

	t.Run("sales denied on another rep's record", func(t *testing.T) {
		_, err := svc.GetByID(ctx, 2, salesRep(3))
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("manager reads any record", func(t *testing.T) {
		resp, err := svc.GetByID(ctx, 2, manager())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.CanAssign {
			t.Error("manager should see assign capability")
		}
	})
}

func TestCustomerService_List(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	svc, _ := newCustomerService(t, repo)

	t.Run("sales list carries the visibility group", func(t *testing.T) {
		_, err := svc.List(ctx, &ListCustomersRequest{Page: 1, Limit: 20}, salesRep(5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		or, ok := repo.customer.lastFilter.(query.Or)
		if !ok {
			t.Fatalf("expected visibility Or group, got %#v", repo.customer.lastFilter)
		}
		if len(or.Exprs) != 2 {
			t.Errorf("visibility group has %d terms", len(or.Exprs))
		}
	})

	t.Run("admin list with no params matches all", func(t *testing.T) {
		_, err := svc.List(ctx, &ListCustomersRequest{Page: 1, Limit: 20}, admin())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.customer.lastFilter != nil {
			t.Errorf("expected match-all filter, got %#v", repo.customer.lastFilter)
		}
	})

	t.Run("page and limit are clamped", func(t *testing.T) {
		_, err := svc.List(ctx, &ListCustomersRequest{Page: -3, Limit: 9999}, admin())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.customer.lastPage.Number != 1 || repo.customer.lastPage.Limit != 100 {
			t.Errorf("page window = %+v", repo.customer.lastPage)
		}
	})

	t.Run("default ordering is score desc with tie-break", func(t *testing.T) {
		_, err := svc.List(ctx, &ListCustomersRequest{Page: 1, Limit: 10}, admin())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		keys := repo.customer.lastOrder.Keys
		if len(keys) != 2 || keys[0].Field != "score" || !keys[0].Descending || keys[1].Field != "original_id" {
			t.Errorf("order keys = %+v", keys)
		}
	})
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	req := &CreateCustomerRequest{
		OriginalID: 500,
		Age:        41,
		Job:        "technician",
		Marital:    "married",
		Education:  "secondary",
	}

	t.Run("sales cannot create", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newCustomerService(t, repo)
		_, err := svc.Create(ctx, req, salesRep(3))
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("duplicate original id conflicts", func(t *testing.T) {
		repo := newMockRepository()
		repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 500}
		svc, _ := newCustomerService(t, repo)
		_, err := svc.Create(ctx, req, manager())
		if !errors.Is(err, ErrDuplicateOriginalID) {
			t.Errorf("expected ErrDuplicateOriginalID, got %v", err)
		}
	})

	t.Run("manager creates", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newCustomerService(t, repo)
		resp, err := svc.Create(ctx, req, manager())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.OriginalID != 500 {
			t.Errorf("original id = %d", resp.OriginalID)
		}
	})

	t.Run("invalid age fails validation", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newCustomerService(t, repo)
		bad := *req
		bad.Age = 5
		_, err := svc.Create(ctx, &bad, manager())
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("expected validation errors, got %v", err)
		}
	})
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 100}
	svc, _ := newCustomerService(t, repo)

	if err := svc.Delete(ctx, 1, manager()); !IsPermissionError(err) {
		t.Errorf("manager delete should be denied, got %v", err)
	}
	if err := svc.Delete(ctx, 1, admin()); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
	if err := svc.Delete(ctx, 1, admin()); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestCustomerService_Assign(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*mockRepository, CustomerService, *events.MockEventPublisher) {
		repo := newMockRepository()
		repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 100}
		repo.user.users[5] = &models.User{ID: 5, Role: models.RoleSales}
		repo.user.users[6] = &models.User{ID: 6, Role: models.RoleSalesManager}
		svc, publisher := newCustomerService(t, repo)
		return repo, svc, publisher
	}

	t.Run("assign to sales rep publishes event", func(t *testing.T) {
		_, svc, publisher := setup(t)
		resp, err := svc.Assign(ctx, 1, &AssignRequest{SalesID: 5}, manager())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.SalesID == nil || *resp.SalesID != 5 {
			t.Errorf("sales id = %v", resp.SalesID)
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.CustomerAssigned {
			t.Errorf("published = %+v", published)
		}
	})

	t.Run("assigning to a manager is a validation error", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.Assign(ctx, 1, &AssignRequest{SalesID: 6}, manager())
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("assigning to a missing user is a validation error", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.Assign(ctx, 1, &AssignRequest{SalesID: 99}, manager())
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("sales cannot assign", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.Assign(ctx, 1, &AssignRequest{SalesID: 5}, salesRep(5))
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("missing customer is not found", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.Assign(ctx, 404, &AssignRequest{SalesID: 5}, manager())
		if !errors.Is(err, ErrCustomerNotFound) {
			t.Errorf("expected ErrCustomerNotFound, got %v", err)
		}
	})

	t.Run("unassign is idempotent", func(t *testing.T) {
		_, svc, publisher := setup(t)
		publisher.ClearEvents()
		resp, err := svc.Unassign(ctx, 1, manager())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.SalesID != nil {
			t.Errorf("sales id should be nil, got %v", *resp.SalesID)
		}
		if _, err := svc.Unassign(ctx, 1, manager()); err != nil {
			t.Errorf("second unassign should succeed, got %v", err)
		}
	})
}

func TestCustomerService_BulkOps(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 100}
	repo.customer.customers[2] = &models.Customer{ID: 2, OriginalID: 200}
	repo.user.users[5] = &models.User{ID: 5, Role: models.RoleSales}
	svc, publisher := newCustomerService(t, repo)

	t.Run("bulk assign reports aggregate counts only", func(t *testing.T) {
		// id 99 matches no row and is silently skipped
		result, err := svc.BulkAssign(ctx, &BulkAssignRequest{
			CustomerIDs: []uint{1, 2, 99},
			SalesID:     5,
		}, manager())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Requested != 3 || result.Updated != 2 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("bulk unassign", func(t *testing.T) {
		publisher.ClearEvents()
		result, err := svc.BulkUnassign(ctx, &BulkUnassignRequest{CustomerIDs: []uint{1, 2}}, admin())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Updated != 2 {
			t.Errorf("updated = %d", result.Updated)
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.CustomerUnassigned {
			t.Errorf("published = %+v", published)
		}
	})

	t.Run("sales cannot bulk assign", func(t *testing.T) {
		_, err := svc.BulkAssign(ctx, &BulkAssignRequest{CustomerIDs: []uint{1}, SalesID: 5}, salesRep(5))
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	rep := uint(5)
	repo := newMockRepository()
	repo.customer.customers[1] = &models.Customer{ID: 1, OriginalID: 100, Age: 30, SalesID: &rep}
	svc, _ := newCustomerService(t, repo)

	t.Run("owning rep updates", func(t *testing.T) {
		age := 31
		resp, err := svc.Update(ctx, 1, &UpdateCustomerRequest{Age: &age}, salesRep(5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Age != 31 {
			t.Errorf("age = %d", resp.Age)
		}
	})

	t.Run("other rep denied", func(t *testing.T) {
		age := 32
		_, err := svc.Update(ctx, 1, &UpdateCustomerRequest{Age: &age}, salesRep(8))
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("out of range score rejected", func(t *testing.T) {
		score := 1.5
		_, err := svc.Update(ctx, 1, &UpdateCustomerRequest{Score: &score}, manager())
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
