package models

import "time"

// Patient belongs to exactly one doctor. (doctor, name, mobile) is unique.
type Patient struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Code         string        `gorm:"size:16;uniqueIndex;not null" json:"patientId"`
	Name         string        `gorm:"size:100;not null;uniqueIndex:idx_patient_identity" json:"name"`
	MobileNumber string        `gorm:"size:15;not null;uniqueIndex:idx_patient_identity" json:"mobileNumber"`
	Address      string        `json:"address"`
	Email        *string       `gorm:"size:255" json:"email"`
	Age          *int          `json:"age"`
	DateOfBirth  *time.Time    `gorm:"type:date" json:"dateOfBirth"`
	BloodGroup   *string       `gorm:"size:5" json:"bloodGroup"`
	Gender       string        `gorm:"size:10;not null" json:"gender"`
	Toxicity     bool          `gorm:"not null;default:false" json:"toxicity"`
	DoctorID     uint          `gorm:"index;not null;uniqueIndex:idx_patient_identity" json:"doctorId"`
	Appointments []Appointment `json:"appointments,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// AgeAt prefers the date of birth and falls back to the age captured at
// registration.
func (p *Patient) AgeAt(now time.Time) (int, bool) {
	if p.DateOfBirth != nil {
		return AgeOn(*p.DateOfBirth, now), true
	}
	if p.Age != nil {
		return *p.Age, true
	}
	return 0, false
}
