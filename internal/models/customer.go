package models

import (
	"time"

	"gorm.io/datatypes"
)

// Customer is a bank-marketing prospect record. Demographic fields arrive in
// the first import pass; score and contact fields in the second. SalesID is
// mutated only through the assignment operation.
type Customer struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// OriginalID is the stable reference from the scoring pipeline,
	// distinct from the internal id. Never duplicated.
	OriginalID uint `json:"original_id" gorm:"uniqueIndex;not null"`

	// Contact fields, populated separately from demographics.
	Name        *string `json:"name" gorm:"size:100"`
	PhoneNumber *string `json:"phone_number" gorm:"size:30"`

	// Demographic and behavioral fields from the campaign dataset.
	Age             int    `json:"age" gorm:"index"`
	Job             string `json:"job" gorm:"size:50;index"`
	Marital         string `json:"marital" gorm:"size:20"`
	Education       string `json:"education" gorm:"size:30"`
	Housing         bool   `json:"housing"`
	Loan            bool   `json:"loan"`
	Contact         string `json:"contact" gorm:"size:20"`
	Month           string `json:"month" gorm:"size:10"`
	Duration        int    `json:"duration"`
	Campaign        int    `json:"campaign"`
	PDays           int    `json:"pdays"`
	Previous        int    `json:"previous"`
	PreviousOutcome string `json:"previous_outcome" gorm:"size:20"`

	// Score is the model-assigned subscription propensity in [0,1].
	// Nil means "not scored yet", which is distinct from zero.
	Score *float64 `json:"score" gorm:"index" validate:"omitempty,gte=0,lte=1"`

	// SalesID references the assigned SALES user; nil means the customer
	// sits in the shared unassigned pool.
	SalesID *uint `json:"sales_id" gorm:"index"`
	Sales   *User `json:"sales,omitempty" gorm:"foreignKey:SalesID"`

	// ImportMeta keeps the raw scoring-pipeline row for audit.
	ImportMeta datatypes.JSON `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
