package store

import (
	"context"
	"errors"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a gorm connection. The connection
// should be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Doctors() DoctorRepository             { return &gormDoctors{db: s.db} }
func (s *GormStore) Receptionists() ReceptionistRepository { return &gormReceptionists{db: s.db} }
func (s *GormStore) Patients() PatientRepository           { return &gormPatients{db: s.db} }
func (s *GormStore) Appointments() AppointmentRepository   { return &gormAppointments{db: s.db} }
func (s *GormStore) Medicines() MedicineRepository         { return &gormMedicines{db: s.db} }
func (s *GormStore) Attendance() AttendanceRepository      { return &gormAttendance{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func like(term string) string { return "%" + term + "%" }

func dayKey(t time.Time) string { return t.Format(models.DateLayout) }

func exists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- DOCTORS ---

type gormDoctors struct{ db *gorm.DB }

func (r *gormDoctors) Create(ctx context.Context, d *models.Doctor) error {
	return translate(r.db.WithContext(ctx).Create(d).Error)
}

func (r *gormDoctors) Get(ctx context.Context, id uint) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDoctors) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDoctors) CodeExists(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.db, &models.Doctor{}, "code = ?", code)
}

func (r *gormDoctors) Save(ctx context.Context, d *models.Doctor) error {
	return translate(r.db.WithContext(ctx).Save(d).Error)
}

func (r *gormDoctors) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Doctor{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- RECEPTIONISTS ---

type gormReceptionists struct{ db *gorm.DB }

func (r *gormReceptionists) Create(ctx context.Context, rec *models.Receptionist) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *gormReceptionists) Get(ctx context.Context, id uint) (*models.Receptionist, error) {
	var rec models.Receptionist
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormReceptionists) GetWithDocuments(ctx context.Context, id uint) (*models.Receptionist, error) {
	var rec models.Receptionist
	if err := r.db.WithContext(ctx).Preload("Documents").First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormReceptionists) GetByEmail(ctx context.Context, email string) (*models.Receptionist, error) {
	var rec models.Receptionist
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormReceptionists) CodeExists(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.db, &models.Receptionist{}, "code = ?", code)
}

func (r *gormReceptionists) List(ctx context.Context, doctorID uint) ([]models.Receptionist, error) {
	var out []models.Receptionist
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (r *gormReceptionists) Save(ctx context.Context, rec *models.Receptionist) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error)
}

func (r *gormReceptionists) ReplaceDocuments(ctx context.Context, receptionistID uint, docs []models.ReceptionistDocument) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("receptionist_id = ?", receptionistID).Delete(&models.ReceptionistDocument{}).Error; err != nil {
		return translate(err)
	}
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		docs[i].ID = 0
		docs[i].ReceptionistID = receptionistID
	}
	return translate(db.Create(&docs).Error)
}

func (r *gormReceptionists) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Receptionist{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- PATIENTS ---

type gormPatients struct{ db *gorm.DB }

func (r *gormPatients) Create(ctx context.Context, p *models.Patient) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (r *gormPatients) Get(ctx context.Context, id uint) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPatients) CodeExists(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.db, &models.Patient{}, "code = ?", code)
}

func (r *gormPatients) FindByIdentity(ctx context.Context, doctorID uint, name, mobile string) (*models.Patient, error) {
	var p models.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND name = ? AND mobile_number = ?", doctorID, name, mobile).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPatients) ListWithAppointments(ctx context.Context, doctorID uint, rng DayRange, search string) ([]models.Patient, error) {
	q := r.db.WithContext(ctx).
		Where("patients.doctor_id = ?", doctorID).
		Where("EXISTS (SELECT 1 FROM appointments WHERE appointments.patient_id = patients.id AND appointments.date BETWEEN ? AND ?)", rng.From, rng.To)
	if search != "" {
		q = q.Where("patients.name ILIKE ?", like(search))
	}
	var out []models.Patient
	err := q.Preload("Appointments", "date BETWEEN ? AND ?", rng.From, rng.To).
		Order("patients.name ASC").
		Find(&out).Error
	return out, translate(err)
}

func (r *gormPatients) Search(ctx context.Context, doctorID uint, term string) ([]models.Patient, error) {
	var out []models.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Where("name ILIKE ? OR mobile_number LIKE ?", like(term), like(term)).
		Order("name ASC").
		Find(&out).Error
	return out, translate(err)
}

func (r *gormPatients) ListRegistered(ctx context.Context, doctorID uint, rng DayRange) ([]models.Patient, error) {
	var out []models.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND created_at BETWEEN ? AND ?", doctorID, rng.From, rng.To).
		Find(&out).Error
	return out, translate(err)
}

func (r *gormPatients) Save(ctx context.Context, p *models.Patient) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

// --- APPOINTMENTS ---

const (
	rankOrder     = "CASE WHEN appointments.status IS NULL THEN 1 WHEN appointments.status = 'out' THEN 2 ELSE 0 END ASC, appointments.created_at ASC"
	attendOrder   = "appointments.status DESC NULLS LAST, appointments.date ASC"
	joinPatients  = "JOIN patients ON patients.id = appointments.patient_id"
	tenantPatient = "patients.doctor_id = ?"
)

type gormAppointments struct{ db *gorm.DB }

func (r *gormAppointments) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *gormAppointments) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).Preload("Patient").First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAppointments) Save(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error)
}

func (r *gormAppointments) CloseActive(ctx context.Context, doctorID, exceptID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("status = ?", models.StatusIn).
		Where("patient_id IN (SELECT id FROM patients WHERE doctor_id = ?)", doctorID).
		Where("id <> ?", exceptID).
		Update("status", models.StatusOut)
	return res.RowsAffected, translate(res.Error)
}

func (r *gormAppointments) ListForDay(ctx context.Context, doctorID uint, rng DayRange, search string) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).
		Joins(joinPatients).
		Where(tenantPatient, doctorID).
		Where("appointments.date BETWEEN ? AND ?", rng.From, rng.To)
	if search != "" {
		q = q.Where("patients.name ILIKE ?", like(search))
	}
	var out []models.Appointment
	err := q.Preload("Patient").Order(rankOrder).Find(&out).Error
	return out, translate(err)
}

func (r *gormAppointments) FirstToAttend(ctx context.Context, aq AttendQuery) (*models.Appointment, error) {
	q := r.db.WithContext(ctx).
		Joins(joinPatients).
		Where(tenantPatient, aq.DoctorID)
	if aq.Day != nil {
		q = q.Where("appointments.date BETWEEN ? AND ?", aq.Day.From, aq.Day.To)
	}
	if aq.IncludeUnset {
		q = q.Where("(appointments.status = ? OR appointments.status IS NULL)", models.StatusIn)
	} else {
		q = q.Where("appointments.status = ?", models.StatusIn)
	}
	var a models.Appointment
	if err := q.Preload("Patient").Order(attendOrder).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAppointments) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).Order("date DESC").Find(&out).Error
	return out, translate(err)
}

func (r *gormAppointments) CountForDay(ctx context.Context, doctorID uint, rng DayRange) (DayCounts, error) {
	var c DayCounts
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("COUNT(*) AS total, "+
			"COUNT(*) FILTER (WHERE appointments.status IN ('in','out')) AS completed, "+
			"COUNT(*) FILTER (WHERE appointments.status IS NULL) AS pending").
		Joins(joinPatients).
		Where(tenantPatient, doctorID).
		Where("appointments.date BETWEEN ? AND ?", rng.From, rng.To).
		Scan(&c).Error
	return c, translate(err)
}

func (r *gormAppointments) SumFees(ctx context.Context, doctorID uint, rng DayRange) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("COALESCE(SUM(appointments.fees), 0)").
		Joins(joinPatients).
		Where(tenantPatient, doctorID).
		Where("appointments.date BETWEEN ? AND ?", rng.From, rng.To).
		Scan(&total).Error
	return total, translate(err)
}

func (r *gormAppointments) MonthlyFees(ctx context.Context, doctorID uint, rng DayRange) ([12]int64, error) {
	var out [12]int64
	var rows []struct {
		Month int
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("CAST(EXTRACT(MONTH FROM appointments.date) AS INTEGER) AS month, COALESCE(SUM(appointments.fees), 0) AS total").
		Joins(joinPatients).
		Where(tenantPatient, doctorID).
		Where("appointments.date BETWEEN ? AND ?", rng.From, rng.To).
		Group("month").
		Scan(&rows).Error
	if err != nil {
		return out, translate(err)
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			out[row.Month-1] = row.Total
		}
	}
	return out, nil
}

// --- MEDICINES ---

type gormMedicines struct{ db *gorm.DB }

func (r *gormMedicines) Create(ctx context.Context, m *models.Medicine) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *gormMedicines) Get(ctx context.Context, id uint) (*models.Medicine, error) {
	var m models.Medicine
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *gormMedicines) Exists(ctx context.Context, key MedicineIdentity, exceptID uint) (bool, error) {
	return exists(ctx, r.db, &models.Medicine{},
		"doctor_id = ? AND name = ? AND strength = ? AND form = ? AND brand = ? AND id <> ?",
		key.DoctorID, key.Name, key.Strength, key.Form, key.Brand, exceptID)
}

func (r *gormMedicines) List(ctx context.Context, doctorID uint, search string) ([]models.Medicine, error) {
	q := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID)
	if search != "" {
		q = q.Where("name ILIKE ?", like(search))
	}
	var out []models.Medicine
	err := q.Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (r *gormMedicines) Save(ctx context.Context, m *models.Medicine) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *gormMedicines) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Medicine{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- ATTENDANCE ---

type gormAttendance struct{ db *gorm.DB }

func (r *gormAttendance) Create(ctx context.Context, a *models.Attendance) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *gormAttendance) GetForDay(ctx context.Context, receptionistID uint, day time.Time) (*models.Attendance, error) {
	var a models.Attendance
	err := r.db.WithContext(ctx).
		Where("receptionist_id = ? AND date = ?", receptionistID, dayKey(day)).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAttendance) Save(ctx context.Context, a *models.Attendance) error {
	return translate(r.db.WithContext(ctx).Save(a).Error)
}

func (r *gormAttendance) ListCheckIns(ctx context.Context, receptionistID uint, rng DayRange) ([]models.Attendance, error) {
	var out []models.Attendance
	err := r.db.WithContext(ctx).
		Where("receptionist_id = ? AND check_in_time BETWEEN ? AND ?", receptionistID, rng.From, rng.To).
		Order("check_in_time ASC").
		Find(&out).Error
	return out, translate(err)
}

func (r *gormAttendance) ListAll(ctx context.Context, receptionistID uint) ([]models.Attendance, error) {
	var out []models.Attendance
	err := r.db.WithContext(ctx).
		Where("receptionist_id = ?", receptionistID).
		Order("date ASC").
		Find(&out).Error
	return out, translate(err)
}

func (r *gormAttendance) PresentOn(ctx context.Context, receptionistIDs []uint, day time.Time) (map[uint]bool, error) {
	present := make(map[uint]bool, len(receptionistIDs))
	if len(receptionistIDs) == 0 {
		return present, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("receptionist_id IN ? AND date = ?", receptionistIDs, dayKey(day)).
		Pluck("receptionist_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, id := range ids {
		present[id] = true
	}
	return present, nil
}
