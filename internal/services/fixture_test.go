package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

type recordingSMS struct {
	mu    sync.Mutex
	sends []string
}

func (r *recordingSMS) SendAppointmentConfirmationSMS(_ string, patient *models.Patient, _ *models.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, patient.MobileNumber)
}

type fixture struct {
	svc    *Services
	store  *store.MemoryStore
	events *recordingPublisher
	sms    *recordingSMS
	now    time.Time
	doctor *models.Doctor
}

var fixedNow = time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  store.NewMemoryStore(),
		events: &recordingPublisher{},
		sms:    &recordingSMS{},
		now:    fixedNow,
	}
	f.store.SetClock(func() time.Time { return f.now })
	f.svc = New(Options{
		Store:    f.store,
		Events:   f.events,
		SMS:      f.sms,
		Tokens:   utils.NewTokenIssuer("test-secret", time.Hour),
		IDs:      identity.NewGenerator(identity.DefaultMaxAttempts),
		Logger:   zap.NewNop(),
		Location: time.UTC,
		Now:      func() time.Time { return f.now },
	})
	f.doctor = f.seedDoctor(t, "house@clinic.test")
	return f
}

func (f *fixture) seedDoctor(t *testing.T, email string) *models.Doctor {
	t.Helper()
	fees := int64(100)
	d := &models.Doctor{
		Code:          "GH" + email[:3],
		Name:          "Gregory House",
		ClinicName:    "Princeton",
		MobileNumber:  "5550000000",
		Address:       "1 Plainsboro Rd",
		Email:         email,
		Gender:        "male",
		Fees:          &fees,
		AcceptedTAndC: true,
	}
	require.NoError(t, f.store.Doctors().Create(context.Background(), d))
	return d
}

func doctorOf(d *models.Doctor) *models.Principal {
	return &models.Principal{ID: d.ID, Email: d.Email, Role: models.RoleDoctor, TenantID: d.ID}
}

func (f *fixture) doctorPrincipal() *models.Principal { return doctorOf(f.doctor) }

func (f *fixture) seedReceptionist(t *testing.T, doctorID uint, email string) *models.Receptionist {
	t.Helper()
	r := &models.Receptionist{
		Code:         "RC" + email[:3],
		Name:         "Lisa Cuddy",
		MobileNumber: "5551111111",
		Address:      "2 Plainsboro Rd",
		Email:        email,
		Gender:       "female",
		Password:     "x",
		DoctorID:     doctorID,
	}
	require.NoError(t, f.store.Receptionists().Create(context.Background(), r))
	return r
}

func receptionistOf(r *models.Receptionist) *models.Principal {
	return &models.Principal{ID: r.ID, Email: r.Email, Role: models.RoleReceptionist, TenantID: r.DoctorID}
}

func (f *fixture) seedPatient(t *testing.T, doctorID uint, name string) *models.Patient {
	t.Helper()
	p := &models.Patient{Code: name + "01", Name: name, MobileNumber: "5552222222", Gender: "female", DoctorID: doctorID}
	require.NoError(t, f.store.Patients().Create(context.Background(), p))
	return p
}

func (f *fixture) seedAppointment(t *testing.T, patientID uint, date time.Time, status *string, fees int64) *models.Appointment {
	t.Helper()
	a := &models.Appointment{
		PatientID:     patientID,
		Reason:        "checkup",
		Process:       "consult",
		Date:          date,
		Fees:          fees,
		Status:        status,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, f.store.Appointments().Create(context.Background(), a))
	return a
}

func (f *fixture) appointment(t *testing.T, id uint) *models.Appointment {
	t.Helper()
	a, err := f.store.Appointments().Get(context.Background(), id)
	require.NoError(t, err)
	return a
}
