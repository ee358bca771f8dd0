// Package store holds the persistence boundary of the clinic: one repository
// per entity plus a transaction hook. The gorm implementation backs
// production; the memory implementation backs tests and STORE=memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Store interface {
	Doctors() DoctorRepository
	Receptionists() ReceptionistRepository
	Patients() PatientRepository
	Appointments() AppointmentRepository
	Medicines() MedicineRepository
	Attendance() AttendanceRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// Any error returned by fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	Get(ctx context.Context, id uint) (*models.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*models.Doctor, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, d *models.Doctor) error
	Delete(ctx context.Context, id uint) error
}

type ReceptionistRepository interface {
	// Create inserts the receptionist and its Documents.
	Create(ctx context.Context, r *models.Receptionist) error
	Get(ctx context.Context, id uint) (*models.Receptionist, error)
	GetWithDocuments(ctx context.Context, id uint) (*models.Receptionist, error)
	GetByEmail(ctx context.Context, email string) (*models.Receptionist, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, doctorID uint) ([]models.Receptionist, error)
	Save(ctx context.Context, r *models.Receptionist) error
	ReplaceDocuments(ctx context.Context, receptionistID uint, docs []models.ReceptionistDocument) error
	Delete(ctx context.Context, id uint) error
}

// DayRange is an inclusive time interval.
type DayRange struct {
	From time.Time
	To   time.Time
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	Get(ctx context.Context, id uint) (*models.Patient, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	FindByIdentity(ctx context.Context, doctorID uint, name, mobile string) (*models.Patient, error)
	// ListWithAppointments returns the doctor's patients that have an
	// appointment inside r, with those appointments attached.
	ListWithAppointments(ctx context.Context, doctorID uint, r DayRange, search string) ([]models.Patient, error)
	// Search matches name or mobile number as a substring.
	Search(ctx context.Context, doctorID uint, term string) ([]models.Patient, error)
	ListRegistered(ctx context.Context, doctorID uint, r DayRange) ([]models.Patient, error)
	Save(ctx context.Context, p *models.Patient) error
}

// AttendQuery selects the next appointment to attend. A nil Day searches
// every date.
type AttendQuery struct {
	DoctorID     uint
	Day          *DayRange
	IncludeUnset bool
}

// DayCounts are today's appointment counters for the dashboard.
type DayCounts struct {
	Total     int64 `json:"totalAppointments"`
	Completed int64 `json:"completedAppointments"`
	Pending   int64 `json:"pendingAppointments"`
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	// Get loads the appointment with its patient.
	Get(ctx context.Context, id uint) (*models.Appointment, error)
	Save(ctx context.Context, a *models.Appointment) error
	// CloseActive moves every "in" appointment of the doctor except
	// exceptID to "out" and reports how many rows changed.
	CloseActive(ctx context.Context, doctorID, exceptID uint) (int64, error)
	// ListForDay orders by status rank ("in", unset, "out") then creation.
	ListForDay(ctx context.Context, doctorID uint, r DayRange, search string) ([]models.Appointment, error)
	// FirstToAttend orders by status descending then date ascending.
	FirstToAttend(ctx context.Context, q AttendQuery) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	CountForDay(ctx context.Context, doctorID uint, r DayRange) (DayCounts, error)
	SumFees(ctx context.Context, doctorID uint, r DayRange) (int64, error)
	// MonthlyFees sums fees per calendar month of r; index 0 is January.
	MonthlyFees(ctx context.Context, doctorID uint, r DayRange) ([12]int64, error)
}

// MedicineIdentity is the tenant-scoped uniqueness key of a medicine.
type MedicineIdentity struct {
	DoctorID uint
	Name     string
	Strength string
	Form     string
	Brand    string
}

type MedicineRepository interface {
	Create(ctx context.Context, m *models.Medicine) error
	Get(ctx context.Context, id uint) (*models.Medicine, error)
	Exists(ctx context.Context, key MedicineIdentity, exceptID uint) (bool, error)
	List(ctx context.Context, doctorID uint, search string) ([]models.Medicine, error)
	Save(ctx context.Context, m *models.Medicine) error
	Delete(ctx context.Context, id uint) error
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *models.Attendance) error
	// GetForDay finds the row of the receptionist for the calendar day of day.
	GetForDay(ctx context.Context, receptionistID uint, day time.Time) (*models.Attendance, error)
	Save(ctx context.Context, a *models.Attendance) error
	// ListCheckIns returns rows whose check-in falls inside r, oldest first.
	ListCheckIns(ctx context.Context, receptionistID uint, r DayRange) ([]models.Attendance, error)
	ListAll(ctx context.Context, receptionistID uint) ([]models.Attendance, error)
	// PresentOn reports which of the receptionists have a row for day.
	PresentOn(ctx context.Context, receptionistIDs []uint, day time.Time) (map[uint]bool, error)
}
