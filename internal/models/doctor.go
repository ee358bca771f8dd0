package models

import "time"

// Doctor is the tenant root. Receptionists, patients and medicines all hang
// off a doctor id.
type Doctor struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Code                  string     `gorm:"size:16;uniqueIndex;not null" json:"doctorId"`
	Name                  string     `gorm:"size:100;not null" json:"name"`
	ClinicName            string     `gorm:"size:150;not null" json:"clinicName"`
	MobileNumber          string     `gorm:"size:15;not null" json:"mobileNumber"`
	Address               string     `gorm:"not null" json:"address"`
	Email                 string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DateOfBirth           *time.Time `gorm:"type:date" json:"dateOfBirth"`
	Gender                string     `gorm:"size:10;not null" json:"gender"`
	Password              string     `gorm:"not null" json:"-"`
	MedicalLicenceNumber  string     `gorm:"size:64" json:"medicalLicenceNumber"`
	RegistrationAuthority string     `gorm:"size:150" json:"registrationAuthority"`
	DateOfRegistration    *time.Time `gorm:"type:date" json:"dateOfRegistration"`
	MedicalDegree         string     `gorm:"size:100" json:"medicalDegree"`
	GovernmentID          string     `gorm:"size:64" json:"governmentId"`
	Fees                  *int64     `json:"fees"`
	AcceptedTAndC         bool       `gorm:"not null;default:false" json:"acceptedTAndC"`
	CheckInTime           *string    `gorm:"size:8" json:"checkInTime"`
	CheckOutTime          *string    `gorm:"size:8" json:"checkOutTime"`
	Profile               []byte     `json:"profile,omitempty"`
	ProfileContentType    *string    `gorm:"size:100" json:"profileContentType,omitempty"`
	PaymentQr             []byte     `json:"-"`
	QrContentType         *string    `gorm:"size:100" json:"-"`
	Signature             []byte     `json:"-"`
	SignatureContentType  *string    `gorm:"size:100" json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

const (
	DefaultCheckInTime  = "09:00:00"
	DefaultCheckOutTime = "17:00:00"
)

// DefaultFee is the fee copied onto new appointments.
func (d *Doctor) DefaultFee() int64 {
	if d == nil || d.Fees == nil {
		return 0
	}
	return *d.Fees
}

// ExpectedCheckIn returns the configured clinic opening time or the default.
func (d *Doctor) ExpectedCheckIn() string {
	if d == nil || d.CheckInTime == nil || *d.CheckInTime == "" {
		return DefaultCheckInTime
	}
	return *d.CheckInTime
}

func (d *Doctor) ExpectedCheckOut() string {
	if d == nil || d.CheckOutTime == nil || *d.CheckOutTime == "" {
		return DefaultCheckOutTime
	}
	return *d.CheckOutTime
}

// AgeAt is nil when no date of birth is recorded.
func (d *Doctor) AgeAt(now time.Time) *int {
	if d.DateOfBirth == nil {
		return nil
	}
	age := AgeOn(*d.DateOfBirth, now)
	return &age
}
