package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(date string) RegisterPatientInput {
	return RegisterPatientInput{
		Name:         "Jane Doe",
		MobileNumber: "5553334444",
		Gender:       "female",
		BookInput:    BookInput{Reason: "Toothache", Process: "consult", Date: date},
	}
}

func TestRegister_CreatesPatientAndAppointment(t *testing.T) {
	f := newFixture(t)
	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")

	b, err := f.svc.Patients.Register(context.Background(), receptionistOf(rec), registration("2024-05-10"))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^JD[0-9]{5}$`), b.Patient.Code)
	assert.Equal(t, f.doctor.ID, b.Patient.DoctorID)
	assert.Equal(t, b.Patient.ID, b.Appointment.PatientID)
	assert.Equal(t, int64(100), b.Appointment.Fees)
	assert.Nil(t, b.Appointment.Status)
	assert.Equal(t, models.PaymentPending, b.Appointment.PaymentStatus)

	assert.Equal(t, []string{events.NewAppointment}, f.events.names())
	assert.Equal(t, []string{"5553334444"}, f.sms.sends)
}

func TestRegister_LaterDateSkipsEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Patients.Register(context.Background(), f.doctorPrincipal(), registration("2024-05-12"))
	require.NoError(t, err)
	assert.Empty(t, f.events.names())
	assert.Len(t, f.sms.sends, 1)
}

func TestRegister_DuplicateIdentityConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Patients.Register(ctx, f.doctorPrincipal(), registration("2024-05-10"))
	require.NoError(t, err)
	_, err = f.svc.Patients.Register(ctx, f.doctorPrincipal(), registration("2024-05-11"))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	other := f.seedDoctor(t, "wilson@clinic.test")
	_, err = f.svc.Patients.Register(ctx, doctorOf(other), registration("2024-05-11"))
	assert.NoError(t, err, "identity is unique per clinic only")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func(in *RegisterPatientInput){
		"past date":    func(in *RegisterPatientInput) { in.Date = "2024-05-09" },
		"bad date":     func(in *RegisterPatientInput) { in.Date = "tomorrow" },
		"short name":   func(in *RegisterPatientInput) { in.Name = "J" },
		"bad mobile":   func(in *RegisterPatientInput) { in.MobileNumber = "12ab" },
		"bad gender":   func(in *RegisterPatientInput) { in.Gender = "unknown" },
		"bad email":    func(in *RegisterPatientInput) { e := "nope"; in.Email = &e },
		"empty reason": func(in *RegisterPatientInput) { in.Reason = "" },
	}
	for name, mutate := range cases {
		in := registration("2024-05-10")
		mutate(&in)
		_, err := f.svc.Patients.Register(context.Background(), f.doctorPrincipal(), in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), name)
	}
	list, err := f.store.Patients().Search(context.Background(), f.doctor.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBook_FollowUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")
	p := f.seedPatient(t, f.doctor.ID, "Jane")

	b, err := f.svc.Patients.Book(ctx, receptionistOf(rec), p.ID, BookInput{Reason: "Review", Process: "consult", Date: "2024-05-10T15:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, b.Appointment.PatientID)
	assert.Equal(t, []string{events.NewAppointment}, f.events.names())

	_, err = f.svc.Patients.Book(ctx, f.doctorPrincipal(), p.ID, BookInput{Reason: "Review", Process: "consult", Date: "2024-05-11"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = f.svc.Patients.Book(ctx, receptionistOf(rec), p.ID, BookInput{Reason: "Review", Process: "consult", Date: "2024-05-10T09:00:00Z"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "earlier today is in the past")

	other := f.seedDoctor(t, "wilson@clinic.test")
	theirs := f.seedPatient(t, other.ID, "John")
	_, err = f.svc.Patients.Book(ctx, receptionistOf(rec), theirs.ID, BookInput{Reason: "Review", Process: "consult", Date: "2024-05-11"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListByDateAndSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")
	jane := f.seedPatient(t, f.doctor.ID, "Jane")
	f.seedPatient(t, f.doctor.ID, "Mark")
	f.seedAppointment(t, jane.ID, f.now, nil, 100)

	list, err := f.svc.Patients.ListByDate(ctx, f.doctorPrincipal(), "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, jane.ID, list[0].ID)
	assert.Len(t, list[0].Appointments, 1)

	list, err = f.svc.Patients.ListByDate(ctx, f.doctorPrincipal(), "2024-05-11", "")
	require.NoError(t, err)
	assert.Empty(t, list)

	found, err := f.svc.Patients.SearchForBooking(ctx, receptionistOf(rec), "mar")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Mark", found[0].Name)

	_, err = f.svc.Patients.SearchForBooking(ctx, f.doctorPrincipal(), "mar")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestToggleToxicity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")

	got, err := f.svc.Patients.ToggleToxicity(ctx, f.doctorPrincipal(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.Toxicity)
	got, err = f.svc.Patients.ToggleToxicity(ctx, f.doctorPrincipal(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.Toxicity)
}
