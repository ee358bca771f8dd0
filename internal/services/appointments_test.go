package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatus_UnsetToOutIsRejected(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.SetStatus(context.Background(), f.doctorPrincipal(), a.ID, models.StatusOut)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Nil(t, f.appointment(t, a.ID).Status)
}

func TestSetStatus_OutIsTerminal(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), models.StatusPtr(models.StatusOut), 100)

	for _, status := range []string{models.StatusIn, models.StatusOut} {
		_, err := f.svc.Appointments.SetStatus(context.Background(), f.doctorPrincipal(), a.ID, status)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), status)
	}
}

func TestSetStatus_InvalidValue(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.SetStatus(context.Background(), f.doctorPrincipal(), a.ID, "waiting")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSetCurrent_KeepsSingleActiveVisit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	first := f.seedAppointment(t, p.ID, f.now.Add(-2*time.Hour), nil, 100)
	second := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.SetCurrent(ctx, f.doctorPrincipal(), first.ID)
	require.NoError(t, err)
	_, err = f.svc.Appointments.SetCurrent(ctx, f.doctorPrincipal(), second.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusOut, f.appointment(t, first.ID).StatusString())
	assert.Equal(t, models.StatusIn, f.appointment(t, second.ID).StatusString())
	assert.Equal(t, []string{events.AppointmentUpdated, events.AppointmentUpdated}, f.events.names())
}

func TestSetCurrent_DoesNotTouchOtherClinics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := f.seedDoctor(t, "wilson@clinic.test")
	mine := f.seedPatient(t, f.doctor.ID, "Jane")
	theirs := f.seedPatient(t, other.ID, "John")
	foreign := f.seedAppointment(t, theirs.ID, f.now.Add(-time.Hour), models.StatusPtr(models.StatusIn), 100)
	a := f.seedAppointment(t, mine.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.SetCurrent(ctx, f.doctorPrincipal(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIn, f.appointment(t, foreign.ID).StatusString())
}

func TestMutations_RejectFutureAppointmentsBeforeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(24*time.Hour), nil, 100)
	doc := f.doctorPrincipal()
	svc := f.svc.Appointments

	calls := map[string]func() error{
		"extra charges": func() error { _, err := svc.AddExtraCharges(ctx, doc, a.ID, "not a number"); return err },
		"payment mode":  func() error { _, err := svc.AddPaymentMode(ctx, doc, a.ID, "Barter"); return err },
		"document":      func() error { _, err := svc.AddDocument(ctx, doc, a.ID, ""); return err },
		"parameters":    func() error { _, err := svc.AddParameters(ctx, doc, a.ID, json.RawMessage(`[]`)); return err },
		"prescription":  func() error { _, err := svc.SubmitPrescription(ctx, doc, a.ID, json.RawMessage(`{}`)); return err },
		"submit":        func() error { _, err := svc.Submit(ctx, doc, a.ID, SubmitInput{Fees: -1}); return err },
		"status":        func() error { _, err := svc.SetStatus(ctx, doc, a.ID, "bogus"); return err },
	}
	for name, call := range calls {
		err := call()
		assert.Equal(t, apperr.KindFutureAppointment, apperr.KindOf(err), name)
	}
	assert.Equal(t, int64(100), f.appointment(t, a.ID).Fees)
}

func TestAddExtraCharges_Accumulates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.AddExtraCharges(ctx, f.doctorPrincipal(), a.ID, float64(50))
	require.NoError(t, err)
	got, err := f.svc.Appointments.AddExtraCharges(ctx, f.doctorPrincipal(), a.ID, "50")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Fees)
	assert.Equal(t, int64(200), f.appointment(t, a.ID).Fees)
}

func TestAddExtraCharges_RejectsBadAmounts(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	for _, v := range []any{nil, float64(0), float64(-5), 12.5, "abc", true} {
		_, err := f.svc.Appointments.AddExtraCharges(context.Background(), f.doctorPrincipal(), a.ID, v)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%v", v)
	}
}

func TestSubmit_AddsFeesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), models.StatusPtr(models.StatusIn), 100)

	got, err := f.svc.Appointments.Submit(ctx, f.doctorPrincipal(), a.ID, SubmitInput{
		Fees: float64(50),
		Note: models.Some("rest"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.Fees)
	assert.Equal(t, models.StatusOut, got.StatusString())
	require.NotNil(t, got.Note)
	assert.Equal(t, "rest", *got.Note)

	got, err = f.svc.Appointments.Submit(ctx, f.doctorPrincipal(), a.ID, SubmitInput{Fees: float64(50)})
	require.NoError(t, err)
	assert.Equal(t, int64(150), got.Fees)
	require.NotNil(t, got.Note, "omitted note keeps its value")

	assert.Equal(t, []string{events.UpdatedAppointment, events.UpdatedAppointment}, f.events.names())
	payload := f.events.events[0].Payload.(map[string]any)
	submitted := payload["appointment"].(SubmittedAppointment)
	assert.Equal(t, a.ID, submitted.AppointmentID)
	assert.Equal(t, int64(150), submitted.Fees)
}

func TestSubmit_ClearsOptionalFieldsOnNull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	note := "old"
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)
	a.Note = &note
	require.NoError(t, f.store.Appointments().Save(ctx, a))

	var in SubmitInput
	require.NoError(t, json.Unmarshal([]byte(`{"note":null,"followUp":"2024-05-10"}`), &in))
	got, err := f.svc.Appointments.Submit(ctx, f.doctorPrincipal(), a.ID, in)
	require.NoError(t, err)
	assert.Nil(t, got.Note)
	require.NotNil(t, got.FollowUp)
	assert.Equal(t, int64(100), got.Fees)
}

func TestSubmit_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.Submit(ctx, f.doctorPrincipal(), a.ID, SubmitInput{Fees: float64(0)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Appointments.Submit(ctx, f.doctorPrincipal(), a.ID, SubmitInput{FollowUp: models.Some("2024-05-09")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Nil(t, f.appointment(t, a.ID).Status)
}

func TestAppointments_OtherClinicIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := f.seedDoctor(t, "wilson@clinic.test")
	theirs := f.seedPatient(t, other.ID, "John")
	a := f.seedAppointment(t, theirs.ID, f.now.Add(-time.Hour), nil, 100)

	_, err := f.svc.Appointments.AddExtraCharges(ctx, f.doctorPrincipal(), a.ID, float64(10))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.svc.Appointments.SetCurrent(ctx, f.doctorPrincipal(), a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.svc.Appointments.PatientAppointments(ctx, f.doctorPrincipal(), theirs.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAddDocument_DecodesDataURL(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	got, err := f.svc.Appointments.AddDocument(context.Background(), f.doctorPrincipal(), a.ID, "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.Document)
	require.NotNil(t, got.DocumentType)
	assert.Equal(t, "image/png", *got.DocumentType)

	_, err = f.svc.Appointments.AddDocument(context.Background(), f.doctorPrincipal(), a.ID, "aGVsbG8=")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAddParametersAndPrescription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	got, err := f.svc.Appointments.AddParameters(ctx, f.doctorPrincipal(), a.ID, json.RawMessage(`{"bp":"120/80"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bp":"120/80"}`, string(got.Parameters))
	assert.Equal(t, []string{events.ParametersUpdated}, f.events.names())

	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")
	_, err = f.svc.Appointments.SubmitPrescription(ctx, receptionistOf(rec), a.ID, json.RawMessage(`[]`))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	got, err = f.svc.Appointments.SubmitPrescription(ctx, f.doctorPrincipal(), a.ID, json.RawMessage(`[{"medicine":"ibuprofen"}]`))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"medicine":"ibuprofen"}]`, string(got.Prescription))
}

func TestAddPaymentMode(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	a := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	got, err := f.svc.Appointments.AddPaymentMode(context.Background(), f.doctorPrincipal(), a.ID, models.PaymentModeOnline)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentMode)
	assert.Equal(t, models.PaymentModeOnline, *got.PaymentMode)
}

func TestFirstToAttend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")

	_, err := f.svc.Appointments.FirstToAttend(ctx, f.doctorPrincipal())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	waiting := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)

	got, err := f.svc.Appointments.FirstToAttend(ctx, receptionistOf(rec))
	require.NoError(t, err)
	assert.Equal(t, waiting.ID, got.ID)
	_, err = f.svc.Appointments.FirstToAttend(ctx, f.doctorPrincipal())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	active := f.seedAppointment(t, p.ID, f.now.Add(-30*time.Minute), models.StatusPtr(models.StatusIn), 100)
	got, err = f.svc.Appointments.FirstToAttend(ctx, receptionistOf(rec))
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
}

func TestFirstToAttend_FallsBackToEarlierActiveVisit(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	stale := f.seedAppointment(t, p.ID, f.now.AddDate(0, 0, -3), models.StatusPtr(models.StatusIn), 100)

	got, err := f.svc.Appointments.FirstToAttend(context.Background(), f.doctorPrincipal())
	require.NoError(t, err)
	assert.Equal(t, stale.ID, got.ID)
}

func TestListToday_OrdersActiveWaitingFinished(t *testing.T) {
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	out := f.seedAppointment(t, p.ID, f.now.Add(-3*time.Hour), models.StatusPtr(models.StatusOut), 100)
	waiting := f.seedAppointment(t, p.ID, f.now.Add(-2*time.Hour), nil, 100)
	in := f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), models.StatusPtr(models.StatusIn), 100)
	f.seedAppointment(t, p.ID, f.now.AddDate(0, 0, -1), nil, 100)

	list, err := f.svc.Appointments.ListToday(context.Background(), f.doctorPrincipal(), "", "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint{in.ID, waiting.ID, out.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})

	list, err = f.svc.Appointments.ListToday(context.Background(), f.doctorPrincipal(), "nobody", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPatientAppointments_DoctorOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.seedPatient(t, f.doctor.ID, "Jane")
	f.seedAppointment(t, p.ID, f.now.Add(-time.Hour), nil, 100)
	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")

	_, err := f.svc.Appointments.PatientAppointments(ctx, receptionistOf(rec), p.ID)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	got, err := f.svc.Appointments.PatientAppointments(ctx, f.doctorPrincipal(), p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Appointments, 1)
}
