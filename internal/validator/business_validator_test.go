package validator

import (
	"strings"
	"testing"

	"github.com/BMS-2026/crm-service/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validCustomerCreate() *CustomerCreateRequest {
	return &CustomerCreateRequest{
		OriginalID:  1001,
		Name:        strPtr("Joana Pires"),
		PhoneNumber: strPtr("+351-912-345-678"),
		Age:         34,
		Job:         "technician",
		Marital:     "married",
		Education:   "secondary",
		Score:       floatPtr(0.73),
	}
}

func fieldsOf(errs ValidationErrors) []string {
	var fields []string
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func hasField(errs ValidationErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateCustomerCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid record passes", func(t *testing.T) {
		if errs := bv.ValidateCustomerCreate(validCustomerCreate()); errs != nil {
			t.Errorf("unexpected errors: %v", fieldsOf(errs))
		}
	})

	t.Run("score outside unit interval", func(t *testing.T) {
		for _, score := range []float64{-0.1, 1.01, 5} {
			req := validCustomerCreate()
			req.Score = floatPtr(score)
			errs := bv.ValidateCustomerCreate(req)
			if !hasField(errs, "score") {
				t.Errorf("score=%v: expected a score error, got %v", score, fieldsOf(errs))
			}
		}
	})

	t.Run("score boundaries are inclusive", func(t *testing.T) {
		for _, score := range []float64{0, 1} {
			req := validCustomerCreate()
			req.Score = floatPtr(score)
			if errs := bv.ValidateCustomerCreate(req); hasField(errs, "score") {
				t.Errorf("score=%v should be accepted", score)
			}
		}
	})

	t.Run("nil score is allowed", func(t *testing.T) {
		req := validCustomerCreate()
		req.Score = nil
		if errs := bv.ValidateCustomerCreate(req); errs != nil {
			t.Errorf("unscored record should pass, got %v", fieldsOf(errs))
		}
	})

	t.Run("age outside working range", func(t *testing.T) {
		for _, age := range []int{17, 121, -3} {
			req := validCustomerCreate()
			req.Age = age
			if errs := bv.ValidateCustomerCreate(req); !hasField(errs, "age") {
				t.Errorf("age=%d: expected an age error, got %v", age, fieldsOf(errs))
			}
		}
	})

	t.Run("malformed phone number", func(t *testing.T) {
		req := validCustomerCreate()
		req.PhoneNumber = strPtr("call me maybe")
		if errs := bv.ValidateCustomerCreate(req); !hasField(errs, "phone_number") {
			t.Errorf("expected a phone_number error, got %v", fieldsOf(errs))
		}
	})

	t.Run("missing required demographics collect per-field errors", func(t *testing.T) {
		req := &CustomerCreateRequest{OriginalID: 1, Age: 30}
		errs := bv.ValidateCustomerCreate(req)
		for _, field := range []string{"job", "marital", "education"} {
			if !hasField(errs, field) {
				t.Errorf("expected an error for %s, got %v", field, fieldsOf(errs))
			}
		}
	})

	t.Run("zero original id", func(t *testing.T) {
		req := validCustomerCreate()
		req.OriginalID = 0
		if errs := bv.ValidateCustomerCreate(req); !hasField(errs, "original_id") {
			t.Errorf("expected an original_id error, got %v", fieldsOf(errs))
		}
	})
}

func TestValidateCustomerUpdate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("empty patch passes", func(t *testing.T) {
		if errs := bv.ValidateCustomerUpdate(&CustomerUpdateRequest{}); errs != nil {
			t.Errorf("empty patch should pass, got %v", fieldsOf(errs))
		}
	})

	t.Run("bad fields still checked when present", func(t *testing.T) {
		req := &CustomerUpdateRequest{
			Age:   intPtr(14),
			Score: floatPtr(1.2),
		}
		errs := bv.ValidateCustomerUpdate(req)
		if !hasField(errs, "age") || !hasField(errs, "score") {
			t.Errorf("expected age and score errors, got %v", fieldsOf(errs))
		}
	})
}

func TestValidateUserRequests(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid user create", func(t *testing.T) {
		req := &UserCreateRequest{
			Email:    "manager@bank.local",
			Name:     "Rita Gomes",
			Role:     models.RoleSalesManager,
			Password: "long-enough-secret",
		}
		if errs := bv.Validate(req); errs != nil {
			t.Errorf("unexpected errors: %v", fieldsOf(errs))
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		req := &UserCreateRequest{
			Email:    "x@bank.local",
			Name:     "X",
			Role:     models.UserRole("SUPERVISOR"),
			Password: "long-enough-secret",
		}
		if errs := bv.Validate(req); !hasField(errs, "role") {
			t.Errorf("expected a role error, got %v", fieldsOf(errs))
		}
	})

	t.Run("short password", func(t *testing.T) {
		req := &UserCreateRequest{
			Email:    "x@bank.local",
			Name:     "X",
			Role:     models.RoleSales,
			Password: "short",
		}
		if errs := bv.Validate(req); !hasField(errs, "password") {
			t.Errorf("expected a password error, got %v", fieldsOf(errs))
		}
	})

	t.Run("bad email", func(t *testing.T) {
		req := &LoginRequest{Email: "not-an-email", Password: "whatever"}
		if errs := bv.Validate(req); !hasField(errs, "email") {
			t.Errorf("expected an email error, got %v", fieldsOf(errs))
		}
	})
}

func TestValidateCallLogRequests(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid call log", func(t *testing.T) {
		req := &CallLogCreateRequest{
			CustomerID: 9,
			Status:     models.CallCallback,
			Notes:      strPtr("asked to call after payday"),
		}
		if errs := bv.Validate(req); errs != nil {
			t.Errorf("unexpected errors: %v", fieldsOf(errs))
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		req := &CallLogCreateRequest{
			CustomerID: 9,
			Status:     models.CallStatus("LEFT_VOICEMAIL"),
		}
		if errs := bv.Validate(req); !hasField(errs, "status") {
			t.Errorf("expected a status error, got %v", fieldsOf(errs))
		}
	})

	t.Run("oversized notes", func(t *testing.T) {
		req := &CallLogCreateRequest{
			CustomerID: 9,
			Status:     models.CallInterested,
			Notes:      strPtr(strings.Repeat("a", 2001)),
		}
		if errs := bv.Validate(req); !hasField(errs, "notes") {
			t.Errorf("expected a notes error, got %v", fieldsOf(errs))
		}
	})
}

func TestValidateBulkRequests(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid bulk assign", func(t *testing.T) {
		req := &BulkAssignRequest{CustomerIDs: []uint{1, 2, 3}, SalesID: 7}
		if errs := bv.Validate(req); errs != nil {
			t.Errorf("unexpected errors: %v", fieldsOf(errs))
		}
	})

	t.Run("empty id list", func(t *testing.T) {
		req := &BulkAssignRequest{CustomerIDs: []uint{}, SalesID: 7}
		if errs := bv.Validate(req); !hasField(errs, "customer_ids") {
			t.Errorf("expected a customer_ids error, got %v", fieldsOf(errs))
		}
	})

	t.Run("oversized batch", func(t *testing.T) {
		ids := make([]uint, 1001)
		for i := range ids {
			ids[i] = uint(i + 1)
		}
		req := &BulkUnassignRequest{CustomerIDs: ids}
		if errs := bv.Validate(req); !hasField(errs, "customer_ids") {
			t.Errorf("expected a customer_ids error, got %v", fieldsOf(errs))
		}
	})
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "score", Message: "score must be between 0 and 1", Rule: "propensity_score"},
		{Field: "age", Message: "age must be between 18 and 120", Rule: "customer_age"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "score") || !strings.Contains(msg, "age") {
		t.Errorf("combined message should mention every field: %q", msg)
	}
}
