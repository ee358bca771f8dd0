package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusIn  = "in"
	StatusOut = "out"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentCancelled = "cancelled"
)

const (
	PaymentModeCash   = "Cash"
	PaymentModeOnline = "Online"
)

// Appointment is one visit. Status moves from nil to "in" to "out" and
// never back.
type Appointment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	PatientID     uint           `gorm:"index;not null" json:"patientId"`
	Patient       *Patient       `json:"patient,omitempty"`
	Reason        string         `gorm:"size:100;not null" json:"reason"`
	Date          time.Time      `gorm:"index;not null" json:"date"`
	Process       string         `gorm:"size:100;not null" json:"process"`
	Fees          int64          `gorm:"not null;default:0" json:"fees"`
	Status        *string        `gorm:"size:3;index" json:"status"`
	PaymentStatus string         `gorm:"size:16;not null;default:pending" json:"paymentStatus"`
	PaymentMode   *string        `gorm:"size:16" json:"paymentMode"`
	Document      []byte         `json:"document,omitempty"`
	DocumentType  *string        `gorm:"size:100" json:"documentType,omitempty"`
	Parameters    datatypes.JSON `json:"parameters,omitempty"`
	Note          *string        `json:"note"`
	Investigation *string        `json:"investigation"`
	Prescription  datatypes.JSON `json:"prescription,omitempty"`
	FollowUp      *time.Time     `json:"followUp"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (a *Appointment) IsIn() bool  { return a.Status != nil && *a.Status == StatusIn }
func (a *Appointment) IsOut() bool { return a.Status != nil && *a.Status == StatusOut }

// StatusString renders a nil status as "".
func (a *Appointment) StatusString() string {
	if a.Status == nil {
		return ""
	}
	return *a.Status
}

func StatusPtr(s string) *string { return &s }
