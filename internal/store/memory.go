package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
)

// MemoryStore keeps every entity in process. A transaction holds the write
// lock until it finishes, so restoring its snapshot on rollback only undoes
// its own writes.
type MemoryStore struct {
	mu   *sync.RWMutex
	data *memoryData
	now  func() time.Time
	// held is set on the view handed to a transaction; the parent already
	// owns mu.
	held bool
}

type memoryData struct {
	nextID        uint
	doctors       map[uint]models.Doctor
	receptionists map[uint]models.Receptionist
	documents     map[uint]models.ReceptionistDocument
	patients      map[uint]models.Patient
	appointments  map[uint]models.Appointment
	medicines     map[uint]models.Medicine
	attendance    map[uint]models.Attendance
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.RWMutex{}, data: &memoryData{
		doctors:       map[uint]models.Doctor{},
		receptionists: map[uint]models.Receptionist{},
		documents:     map[uint]models.ReceptionistDocument{},
		patients:      map[uint]models.Patient{},
		appointments:  map[uint]models.Appointment{},
		medicines:     map[uint]models.Medicine{},
		attendance:    map[uint]models.Attendance{},
	}}
}

func (s *MemoryStore) lock() {
	if !s.held {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.held {
		s.mu.Unlock()
	}
}

func (s *MemoryStore) rlock() {
	if !s.held {
		s.mu.RLock()
	}
}

func (s *MemoryStore) runlock() {
	if !s.held {
		s.mu.RUnlock()
	}
}

func (d memoryData) clone() memoryData {
	out := memoryData{
		nextID:        d.nextID,
		doctors:       make(map[uint]models.Doctor, len(d.doctors)),
		receptionists: make(map[uint]models.Receptionist, len(d.receptionists)),
		documents:     make(map[uint]models.ReceptionistDocument, len(d.documents)),
		patients:      make(map[uint]models.Patient, len(d.patients)),
		appointments:  make(map[uint]models.Appointment, len(d.appointments)),
		medicines:     make(map[uint]models.Medicine, len(d.medicines)),
		attendance:    make(map[uint]models.Attendance, len(d.attendance)),
	}
	for k, v := range d.doctors {
		out.doctors[k] = v
	}
	for k, v := range d.receptionists {
		out.receptionists[k] = v
	}
	for k, v := range d.documents {
		out.documents[k] = v
	}
	for k, v := range d.patients {
		out.patients[k] = v
	}
	for k, v := range d.appointments {
		out.appointments[k] = v
	}
	for k, v := range d.medicines {
		out.medicines[k] = v
	}
	for k, v := range d.attendance {
		out.attendance[k] = v
	}
	return out
}

// SetClock overrides the source of CreatedAt and UpdatedAt stamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *MemoryStore) id() uint {
	s.data.nextID++
	return s.data.nextID
}

func (s *MemoryStore) Doctors() DoctorRepository             { return memDoctors{s} }
func (s *MemoryStore) Receptionists() ReceptionistRepository { return memReceptionists{s} }
func (s *MemoryStore) Patients() PatientRepository           { return memPatients{s} }
func (s *MemoryStore) Appointments() AppointmentRepository   { return memAppointments{s} }
func (s *MemoryStore) Medicines() MedicineRepository         { return memMedicines{s} }
func (s *MemoryStore) Attendance() AttendanceRepository      { return memAttendance{s} }

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.held {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, now: s.now, held: true}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

func inRange(t time.Time, r DayRange) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func sameDay(a, b time.Time) bool { return dayKey(a) == dayKey(b) }

// --- DOCTORS ---

type memDoctors struct{ s *MemoryStore }

func (r memDoctors) emailTaken(email string, except uint) bool {
	for _, d := range r.s.data.doctors {
		if d.ID != except && strings.EqualFold(d.Email, email) {
			return true
		}
	}
	return false
}

func (r memDoctors) Create(_ context.Context, d *models.Doctor) error {
	r.s.lock()
	defer r.s.unlock()
	if r.emailTaken(d.Email, 0) {
		return ErrDuplicate
	}
	for _, other := range r.s.data.doctors {
		if other.Code == d.Code {
			return ErrDuplicate
		}
	}
	now := r.s.clock()
	d.ID = r.s.id()
	d.CreatedAt, d.UpdatedAt = now, now
	r.s.data.doctors[d.ID] = *d
	return nil
}

func (r memDoctors) Get(_ context.Context, id uint) (*models.Doctor, error) {
	r.s.rlock()
	defer r.s.runlock()
	d, ok := r.s.data.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r memDoctors) GetByEmail(_ context.Context, email string) (*models.Doctor, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, d := range r.s.data.doctors {
		if d.Email == email {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (r memDoctors) CodeExists(_ context.Context, code string) (bool, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, d := range r.s.data.doctors {
		if d.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r memDoctors) Save(_ context.Context, d *models.Doctor) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	if r.emailTaken(d.Email, d.ID) {
		return ErrDuplicate
	}
	d.UpdatedAt = r.s.clock()
	r.s.data.doctors[d.ID] = *d
	return nil
}

func (r memDoctors) Delete(_ context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.doctors, id)
	return nil
}

// --- RECEPTIONISTS ---

type memReceptionists struct{ s *MemoryStore }

func (r memReceptionists) Create(_ context.Context, rec *models.Receptionist) error {
	r.s.lock()
	defer r.s.unlock()
	for _, other := range r.s.data.receptionists {
		if strings.EqualFold(other.Email, rec.Email) || other.Code == rec.Code {
			return ErrDuplicate
		}
	}
	now := r.s.clock()
	rec.ID = r.s.id()
	rec.CreatedAt, rec.UpdatedAt = now, now
	for i := range rec.Documents {
		rec.Documents[i].ID = r.s.id()
		rec.Documents[i].ReceptionistID = rec.ID
		rec.Documents[i].CreatedAt = now
		doc := rec.Documents[i]
		doc.Document = cloneBytes(doc.Document)
		r.s.data.documents[doc.ID] = doc
	}
	stored := *rec
	stored.Documents = nil
	r.s.data.receptionists[rec.ID] = stored
	return nil
}

func (r memReceptionists) Get(_ context.Context, id uint) (*models.Receptionist, error) {
	r.s.rlock()
	defer r.s.runlock()
	rec, ok := r.s.data.receptionists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r memReceptionists) GetWithDocuments(ctx context.Context, id uint) (*models.Receptionist, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.s.rlock()
	defer r.s.runlock()
	for _, doc := range r.s.data.documents {
		if doc.ReceptionistID == id {
			doc.Document = cloneBytes(doc.Document)
			rec.Documents = append(rec.Documents, doc)
		}
	}
	sort.Slice(rec.Documents, func(i, j int) bool { return rec.Documents[i].ID < rec.Documents[j].ID })
	return rec, nil
}

func (r memReceptionists) GetByEmail(_ context.Context, email string) (*models.Receptionist, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, rec := range r.s.data.receptionists {
		if rec.Email == email {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (r memReceptionists) CodeExists(_ context.Context, code string) (bool, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, rec := range r.s.data.receptionists {
		if rec.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r memReceptionists) List(_ context.Context, doctorID uint) ([]models.Receptionist, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Receptionist
	for _, rec := range r.s.data.receptionists {
		if rec.DoctorID == doctorID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memReceptionists) Save(_ context.Context, rec *models.Receptionist) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.receptionists[rec.ID]; !ok {
		return ErrNotFound
	}
	for _, other := range r.s.data.receptionists {
		if other.ID != rec.ID && strings.EqualFold(other.Email, rec.Email) {
			return ErrDuplicate
		}
	}
	rec.UpdatedAt = r.s.clock()
	stored := *rec
	stored.Documents = nil
	r.s.data.receptionists[rec.ID] = stored
	return nil
}

func (r memReceptionists) ReplaceDocuments(_ context.Context, receptionistID uint, docs []models.ReceptionistDocument) error {
	r.s.lock()
	defer r.s.unlock()
	for id, doc := range r.s.data.documents {
		if doc.ReceptionistID == receptionistID {
			delete(r.s.data.documents, id)
		}
	}
	now := r.s.clock()
	for i := range docs {
		docs[i].ID = r.s.id()
		docs[i].ReceptionistID = receptionistID
		docs[i].CreatedAt = now
		doc := docs[i]
		doc.Document = cloneBytes(doc.Document)
		r.s.data.documents[doc.ID] = doc
	}
	return nil
}

func (r memReceptionists) Delete(_ context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.receptionists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.receptionists, id)
	for docID, doc := range r.s.data.documents {
		if doc.ReceptionistID == id {
			delete(r.s.data.documents, docID)
		}
	}
	for attID, att := range r.s.data.attendance {
		if att.ReceptionistID == id {
			delete(r.s.data.attendance, attID)
		}
	}
	return nil
}

// --- PATIENTS ---

type memPatients struct{ s *MemoryStore }

func (r memPatients) Create(_ context.Context, p *models.Patient) error {
	r.s.lock()
	defer r.s.unlock()
	for _, other := range r.s.data.patients {
		if other.Code == p.Code ||
			(other.DoctorID == p.DoctorID && other.Name == p.Name && other.MobileNumber == p.MobileNumber) {
			return ErrDuplicate
		}
	}
	now := r.s.clock()
	p.ID = r.s.id()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	stored.Appointments = nil
	r.s.data.patients[p.ID] = stored
	return nil
}

func (r memPatients) Get(_ context.Context, id uint) (*models.Patient, error) {
	r.s.rlock()
	defer r.s.runlock()
	p, ok := r.s.data.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memPatients) CodeExists(_ context.Context, code string) (bool, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, p := range r.s.data.patients {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r memPatients) FindByIdentity(_ context.Context, doctorID uint, name, mobile string) (*models.Patient, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, p := range r.s.data.patients {
		if p.DoctorID == doctorID && p.Name == name && p.MobileNumber == mobile {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r memPatients) ListWithAppointments(_ context.Context, doctorID uint, rng DayRange, search string) ([]models.Patient, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Patient
	for _, p := range r.s.data.patients {
		if p.DoctorID != doctorID || (search != "" && !containsFold(p.Name, search)) {
			continue
		}
		for _, a := range r.s.data.appointments {
			if a.PatientID == p.ID && inRange(a.Date, rng) {
				p.Appointments = append(p.Appointments, copyAppointment(a))
			}
		}
		if len(p.Appointments) > 0 {
			sort.Slice(p.Appointments, func(i, j int) bool { return p.Appointments[i].ID < p.Appointments[j].ID })
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memPatients) Search(_ context.Context, doctorID uint, term string) ([]models.Patient, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Patient
	for _, p := range r.s.data.patients {
		if p.DoctorID == doctorID && (containsFold(p.Name, term) || strings.Contains(p.MobileNumber, term)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memPatients) ListRegistered(_ context.Context, doctorID uint, rng DayRange) ([]models.Patient, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Patient
	for _, p := range r.s.data.patients {
		if p.DoctorID == doctorID && inRange(p.CreatedAt, rng) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPatients) Save(_ context.Context, p *models.Patient) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.patients[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = r.s.clock()
	stored := *p
	stored.Appointments = nil
	r.s.data.patients[p.ID] = stored
	return nil
}

// --- APPOINTMENTS ---

type memAppointments struct{ s *MemoryStore }

func copyAppointment(a models.Appointment) models.Appointment {
	a.Patient = nil
	a.Document = cloneBytes(a.Document)
	a.Parameters = cloneBytes(a.Parameters)
	a.Prescription = cloneBytes(a.Prescription)
	if a.Status != nil {
		a.Status = models.StatusPtr(*a.Status)
	}
	return a
}

// withPatient must be called with the read lock held.
func (r memAppointments) withPatient(a models.Appointment) models.Appointment {
	a = copyAppointment(a)
	if p, ok := r.s.data.patients[a.PatientID]; ok {
		p.Appointments = nil
		a.Patient = &p
	}
	return a
}

func (r memAppointments) ofDoctor(a models.Appointment, doctorID uint) bool {
	p, ok := r.s.data.patients[a.PatientID]
	return ok && p.DoctorID == doctorID
}

func (r memAppointments) Create(_ context.Context, a *models.Appointment) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.patients[a.PatientID]; !ok {
		return ErrNotFound
	}
	now := r.s.clock()
	a.ID = r.s.id()
	a.CreatedAt, a.UpdatedAt = now, now
	if a.PaymentStatus == "" {
		a.PaymentStatus = models.PaymentPending
	}
	r.s.data.appointments[a.ID] = copyAppointment(*a)
	return nil
}

func (r memAppointments) Get(_ context.Context, id uint) (*models.Appointment, error) {
	r.s.rlock()
	defer r.s.runlock()
	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r.withPatient(a)
	return &out, nil
}

func (r memAppointments) Save(_ context.Context, a *models.Appointment) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = r.s.clock()
	r.s.data.appointments[a.ID] = copyAppointment(*a)
	return nil
}

func (r memAppointments) CloseActive(_ context.Context, doctorID, exceptID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for id, a := range r.s.data.appointments {
		if id == exceptID || !a.IsIn() || !r.ofDoctor(a, doctorID) {
			continue
		}
		a.Status = models.StatusPtr(models.StatusOut)
		a.UpdatedAt = r.s.clock()
		r.s.data.appointments[id] = a
		n++
	}
	return n, nil
}

func statusRank(a models.Appointment) int {
	switch {
	case a.Status == nil:
		return 1
	case *a.Status == models.StatusOut:
		return 2
	default:
		return 0
	}
}

func (r memAppointments) ListForDay(_ context.Context, doctorID uint, rng DayRange, search string) ([]models.Appointment, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Appointment
	for _, a := range r.s.data.appointments {
		if !r.ofDoctor(a, doctorID) || !inRange(a.Date, rng) {
			continue
		}
		if search != "" && !containsFold(r.s.data.patients[a.PatientID].Name, search) {
			continue
		}
		out = append(out, r.withPatient(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := statusRank(out[i]), statusRank(out[j])
		if ri != rj {
			return ri < rj
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memAppointments) FirstToAttend(_ context.Context, q AttendQuery) (*models.Appointment, error) {
	r.s.rlock()
	defer r.s.runlock()
	var candidates []models.Appointment
	for _, a := range r.s.data.appointments {
		if !r.ofDoctor(a, q.DoctorID) {
			continue
		}
		if q.Day != nil && !inRange(a.Date, *q.Day) {
			continue
		}
		if !a.IsIn() && !(q.IncludeUnset && a.Status == nil) {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	// status DESC NULLS LAST, date ASC, id ASC
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsIn() != b.IsIn() {
			return a.IsIn()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	out := r.withPatient(candidates[0])
	return &out, nil
}

func (r memAppointments) ListByPatient(_ context.Context, patientID uint) ([]models.Appointment, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Appointment
	for _, a := range r.s.data.appointments {
		if a.PatientID == patientID {
			out = append(out, copyAppointment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r memAppointments) CountForDay(_ context.Context, doctorID uint, rng DayRange) (DayCounts, error) {
	r.s.rlock()
	defer r.s.runlock()
	var c DayCounts
	for _, a := range r.s.data.appointments {
		if !r.ofDoctor(a, doctorID) || !inRange(a.Date, rng) {
			continue
		}
		c.Total++
		if a.Status == nil {
			c.Pending++
		} else {
			c.Completed++
		}
	}
	return c, nil
}

func (r memAppointments) SumFees(_ context.Context, doctorID uint, rng DayRange) (int64, error) {
	r.s.rlock()
	defer r.s.runlock()
	var total int64
	for _, a := range r.s.data.appointments {
		if r.ofDoctor(a, doctorID) && inRange(a.Date, rng) {
			total += a.Fees
		}
	}
	return total, nil
}

func (r memAppointments) MonthlyFees(_ context.Context, doctorID uint, rng DayRange) ([12]int64, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out [12]int64
	loc := rng.From.Location()
	for _, a := range r.s.data.appointments {
		if r.ofDoctor(a, doctorID) && inRange(a.Date, rng) {
			out[a.Date.In(loc).Month()-1] += a.Fees
		}
	}
	return out, nil
}

// --- MEDICINES ---

type memMedicines struct{ s *MemoryStore }

func (r memMedicines) Create(_ context.Context, m *models.Medicine) error {
	r.s.lock()
	defer r.s.unlock()
	now := r.s.clock()
	m.ID = r.s.id()
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.data.medicines[m.ID] = *m
	return nil
}

func (r memMedicines) Get(_ context.Context, id uint) (*models.Medicine, error) {
	r.s.rlock()
	defer r.s.runlock()
	m, ok := r.s.data.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r memMedicines) Exists(_ context.Context, key MedicineIdentity, exceptID uint) (bool, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, m := range r.s.data.medicines {
		if m.ID != exceptID && m.DoctorID == key.DoctorID && m.Name == key.Name &&
			m.Strength == key.Strength && m.Form == key.Form && m.Brand == key.Brand {
			return true, nil
		}
	}
	return false, nil
}

func (r memMedicines) List(_ context.Context, doctorID uint, search string) ([]models.Medicine, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Medicine
	for _, m := range r.s.data.medicines {
		if m.DoctorID == doctorID && (search == "" || containsFold(m.Name, search)) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memMedicines) Save(_ context.Context, m *models.Medicine) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.medicines[m.ID]; !ok {
		return ErrNotFound
	}
	m.UpdatedAt = r.s.clock()
	r.s.data.medicines[m.ID] = *m
	return nil
}

func (r memMedicines) Delete(_ context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.medicines[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.data.medicines, id)
	return nil
}

// --- ATTENDANCE ---

type memAttendance struct{ s *MemoryStore }

func (r memAttendance) Create(_ context.Context, a *models.Attendance) error {
	r.s.lock()
	defer r.s.unlock()
	for _, other := range r.s.data.attendance {
		if other.ReceptionistID == a.ReceptionistID && sameDay(other.Date, a.Date) {
			return ErrDuplicate
		}
	}
	now := r.s.clock()
	a.ID = r.s.id()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.data.attendance[a.ID] = *a
	return nil
}

func (r memAttendance) GetForDay(_ context.Context, receptionistID uint, day time.Time) (*models.Attendance, error) {
	r.s.rlock()
	defer r.s.runlock()
	for _, a := range r.s.data.attendance {
		if a.ReceptionistID == receptionistID && sameDay(a.Date, day) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r memAttendance) Save(_ context.Context, a *models.Attendance) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.attendance[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = r.s.clock()
	r.s.data.attendance[a.ID] = *a
	return nil
}

func (r memAttendance) ListCheckIns(_ context.Context, receptionistID uint, rng DayRange) ([]models.Attendance, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Attendance
	for _, a := range r.s.data.attendance {
		if a.ReceptionistID == receptionistID && inRange(a.CheckInTime, rng) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out, nil
}

func (r memAttendance) ListAll(_ context.Context, receptionistID uint) ([]models.Attendance, error) {
	r.s.rlock()
	defer r.s.runlock()
	var out []models.Attendance
	for _, a := range r.s.data.attendance {
		if a.ReceptionistID == receptionistID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memAttendance) PresentOn(_ context.Context, receptionistIDs []uint, day time.Time) (map[uint]bool, error) {
	r.s.rlock()
	defer r.s.runlock()
	want := make(map[uint]bool, len(receptionistIDs))
	for _, id := range receptionistIDs {
		want[id] = true
	}
	present := make(map[uint]bool, len(receptionistIDs))
	for _, a := range r.s.data.attendance {
		if want[a.ReceptionistID] && sameDay(a.Date, day) {
			present[a.ReceptionistID] = true
		}
	}
	return present, nil
}
