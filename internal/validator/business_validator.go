package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)

// BusinessValidator handles business rule validation for portal requests
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	// Report field names as they appear on the wire, not as Go identifiers.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against business rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: bv.getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// ValidateCustomerCreate validates customer creation requests
func (bv *BusinessValidator) ValidateCustomerCreate(req *CustomerCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	return errors
}

// ValidateCustomerUpdate validates customer update requests
func (bv *BusinessValidator) ValidateCustomerUpdate(req *CustomerUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Score != nil && (*req.Score < 0 || *req.Score > 1) {
		errors = append(errors, ValidationError{
			Field:   "score",
			Message: "score must be between 0 and 1",
			Value:   *req.Score,
			Rule:    "propensity_score",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Scores arrive normalized to [0, 1] from the scoring pipeline
	bv.validate.RegisterValidation("propensity_score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Float()
		return score >= 0 && score <= 1
	})

	bv.validate.RegisterValidation("customer_age", func(fl validator.FieldLevel) bool {
		age := fl.Field().Int()
		return age >= 18 && age <= 120
	})

	bv.validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		phone := strings.TrimSpace(fl.Field().String())
		return phonePattern.MatchString(phone)
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(models.UserRole(fl.Field().String()))
	})

	bv.validate.RegisterValidation("call_status", func(fl validator.FieldLevel) bool {
		return models.ValidCallStatus(models.CallStatus(fl.Field().String()))
	})
}

func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "propensity_score":
		return "must be between 0 and 1"
	case "customer_age":
		return "must be between 18 and 120"
	case "phone_number":
		return "must be a valid phone number"
	case "user_role":
		return "must be one of ADMIN, SALES_MANAGER, SALES"
	case "call_status":
		return "must be a valid call status"
	default:
		return fmt.Sprintf("failed validation rule %s", err.Tag())
	}
}
