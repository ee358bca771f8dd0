package models

import "time"

type Receptionist struct {
	ID                 uint                   `gorm:"primaryKey" json:"id"`
	Code               string                 `gorm:"size:16;uniqueIndex;not null" json:"receptionistId"`
	Name               string                 `gorm:"size:100;not null" json:"name"`
	MobileNumber       string                 `gorm:"size:15;not null" json:"mobileNumber"`
	Address            string                 `gorm:"not null" json:"address"`
	Email              string                 `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Age                *int                   `json:"age"`
	DateOfJoining      *time.Time             `gorm:"type:date" json:"dateOfJoining"`
	Gender             string                 `gorm:"size:10;not null" json:"gender"`
	Qualification      string                 `gorm:"size:150" json:"qualification"`
	Password           string                 `gorm:"not null" json:"-"`
	Profile            []byte                 `json:"profile,omitempty"`
	ProfileContentType *string                `gorm:"size:100" json:"profileContentType,omitempty"`
	DoctorID           uint                   `gorm:"index;not null" json:"doctorId"`
	Documents          []ReceptionistDocument `gorm:"constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Attendances        []Attendance           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

type ReceptionistDocument struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReceptionistID uint      `gorm:"index;not null" json:"receptionistId"`
	Document       []byte    `gorm:"not null" json:"document"`
	ContentType    string    `gorm:"size:100;not null" json:"contentType"`
	CreatedAt      time.Time `json:"createdAt"`
}
