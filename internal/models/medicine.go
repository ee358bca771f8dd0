package models

import "time"

type Medicine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;uniqueIndex:idx_medicine_identity" json:"name"`
	Strength  string    `gorm:"size:50;not null;uniqueIndex:idx_medicine_identity" json:"strength"`
	Form      string    `gorm:"size:50;not null;uniqueIndex:idx_medicine_identity" json:"form"`
	Category  string    `gorm:"size:50" json:"category"`
	Brand     string    `gorm:"size:100;not null;uniqueIndex:idx_medicine_identity" json:"brand"`
	DoctorID  uint      `gorm:"index;not null;uniqueIndex:idx_medicine_identity" json:"doctorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
