package models

import (
	"time"
)

type CallStatus string

const (
	CallInterested    CallStatus = "INTERESTED"
	CallNotInterested CallStatus = "NOT_INTERESTED"
	CallNoAnswer      CallStatus = "NO_ANSWER"
	CallWrongNumber   CallStatus = "WRONG_NUMBER"
	CallCallback      CallStatus = "CALLBACK"
	CallCompleted     CallStatus = "COMPLETED"
)

func ValidCallStatus(s CallStatus) bool {
	switch s {
	case CallInterested, CallNotInterested, CallNoAnswer, CallWrongNumber, CallCallback, CallCompleted:
		return true
	}
	return false
}

// CallLog records one outreach attempt. CallDate is server-assigned at
// creation and never updated afterwards.
type CallLog struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	CustomerID uint       `json:"customer_id" gorm:"not null;index"`
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	Status     CallStatus `json:"status" gorm:"not null;size:20;index" validate:"required,oneof=INTERESTED NOT_INTERESTED NO_ANSWER WRONG_NUMBER CALLBACK COMPLETED"`
	Notes      *string    `json:"notes" gorm:"type:text" validate:"omitempty,max=2000"`
	CallDate   time.Time  `json:"call_date" gorm:"not null;index"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CallLog) TableName() string {
	return "call_logs"
}
