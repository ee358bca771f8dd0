package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPatient(t *testing.T, s *MemoryStore, doctorID uint, name string) *models.Patient {
	t.Helper()
	p := &models.Patient{Code: name + "1", Name: name, MobileNumber: "0600000000", Gender: "female", DoctorID: doctorID}
	require.NoError(t, s.Patients().Create(context.Background(), p))
	return p
}

func seedAppointment(t *testing.T, s *MemoryStore, patientID uint, date time.Time, status *string) *models.Appointment {
	t.Helper()
	a := &models.Appointment{PatientID: patientID, Reason: "checkup", Date: date, Process: "consult", Status: status}
	require.NoError(t, s.Appointments().Create(context.Background(), a))
	return a
}

func TestMemoryAppointments_ListForDayRanksInUnsetOut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := seedPatient(t, s, 1, "Jane")

	out := seedAppointment(t, s, p.ID, day.Add(9*time.Hour), models.StatusPtr(models.StatusOut))
	unset := seedAppointment(t, s, p.ID, day.Add(10*time.Hour), nil)
	in := seedAppointment(t, s, p.ID, day.Add(11*time.Hour), models.StatusPtr(models.StatusIn))

	list, err := s.Appointments().ListForDay(ctx, 1, DayRange{From: day, To: day.Add(24*time.Hour - time.Nanosecond)}, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint{in.ID, unset.ID, out.ID}, []uint{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "Jane", list[0].Patient.Name)
}

func TestMemoryAppointments_CloseActiveLeavesOtherTenants(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mine := seedPatient(t, s, 1, "Jane")
	theirs := seedPatient(t, s, 2, "John")

	a := seedAppointment(t, s, mine.ID, now, models.StatusPtr(models.StatusIn))
	b := seedAppointment(t, s, mine.ID, now, nil)
	c := seedAppointment(t, s, theirs.ID, now, models.StatusPtr(models.StatusIn))

	n, err := s.Appointments().CloseActive(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := s.Appointments().Get(ctx, a.ID)
	assert.True(t, got.IsOut())
	got, _ = s.Appointments().Get(ctx, c.ID)
	assert.True(t, got.IsIn())
}

func TestMemoryAppointments_FirstToAttendPrefersIn(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := seedPatient(t, s, 1, "Jane")

	seedAppointment(t, s, p.ID, day.Add(8*time.Hour), nil)
	in := seedAppointment(t, s, p.ID, day.Add(12*time.Hour), models.StatusPtr(models.StatusIn))

	rng := DayRange{From: day, To: day.Add(24*time.Hour - time.Nanosecond)}
	got, err := s.Appointments().FirstToAttend(ctx, AttendQuery{DoctorID: 1, Day: &rng, IncludeUnset: true})
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)

	_, err = s.Appointments().FirstToAttend(ctx, AttendQuery{DoctorID: 2, Day: &rng, IncludeUnset: true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		p := &models.Patient{Code: "JD10000", Name: "Jane Doe", MobileNumber: "0600000000", DoctorID: 1}
		if err := tx.Patients().Create(ctx, p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := s.Patients().CodeExists(ctx, "JD10000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_RollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedPatient(t, s, 1, "Jane")
	apt := seedAppointment(t, s, p.ID, time.Now(), nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.Transaction(ctx, func(tx Store) error {
			close(entered)
			<-release
			return errors.New("duplicate patient")
		})
	}()
	<-entered

	saveDone := make(chan error, 1)
	go func() {
		update := *apt
		update.Fees = 500
		saveDone <- s.Appointments().Save(ctx, &update)
	}()

	select {
	case <-saveDone:
		t.Fatal("write outside the transaction completed while it was open")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	require.Error(t, <-txDone)
	require.NoError(t, <-saveDone)

	got, err := s.Appointments().Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Fees)
}

func TestMemoryStore_NestedTransactionUsesOuterLock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Transaction(ctx, func(tx Store) error {
		return tx.Transaction(ctx, func(inner Store) error {
			return inner.Patients().Create(ctx, &models.Patient{Code: "JD1", Name: "Jane", MobileNumber: "0600000000", DoctorID: 1})
		})
	})
	require.NoError(t, err)

	found, err := s.Patients().CodeExists(ctx, "JD1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryPatients_DuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedPatient(t, s, 1, "Jane")

	err := s.Patients().Create(ctx, &models.Patient{Code: "X1", Name: "Jane", MobileNumber: "0600000000", DoctorID: 1})
	assert.ErrorIs(t, err, ErrDuplicate)

	// same identity under another doctor is fine
	err = s.Patients().Create(ctx, &models.Patient{Code: "X2", Name: "Jane", MobileNumber: "0600000000", DoctorID: 2})
	assert.NoError(t, err)
}

func TestMemoryAttendance_OneRowPerDay(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Attendance().Create(ctx, &models.Attendance{ReceptionistID: 3, Date: day, CheckInTime: day.Add(9 * time.Hour)}))
	err := s.Attendance().Create(ctx, &models.Attendance{ReceptionistID: 3, Date: day, CheckInTime: day.Add(10 * time.Hour)})
	assert.ErrorIs(t, err, ErrDuplicate)

	present, err := s.Attendance().PresentOn(ctx, []uint{3, 4}, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.True(t, present[3])
	assert.False(t, present[4])
}
