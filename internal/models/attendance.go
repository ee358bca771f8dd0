package models

import "time"

// DateLayout is the calendar-day key used for attendance rows.
const DateLayout = "2006-01-02"

// Attendance is one receptionist working day. Date holds midnight of the
// day in the clinic timezone; CheckOutTime is written once.
type Attendance struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ReceptionistID uint       `gorm:"not null;uniqueIndex:idx_attendance_day" json:"receptionistId"`
	Date           time.Time  `gorm:"type:date;not null;uniqueIndex:idx_attendance_day" json:"date"`
	CheckInTime    time.Time  `gorm:"not null;index" json:"checkInTime"`
	CheckOutTime   *time.Time `json:"checkOutTime"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// All returns every model that the migrate command manages.
func All() []any {
	return []any{
		&Doctor{},
		&Receptionist{},
		&ReceptionistDocument{},
		&Patient{},
		&Appointment{},
		&Medicine{},
		&Attendance{},
	}
}
