package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfDoc = DocumentInput{
	Document: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
}

func newReceptionist(email string) AddReceptionistInput {
	return AddReceptionistInput{
		Name:          "Rachel Green",
		MobileNumber:  "5556667777",
		Address:       "90 Bedford St",
		Email:         email,
		DateOfJoining: "2024-01-15",
		Gender:        "female",
		Password:      "secret123",
		Documents:     []DocumentInput{pdfDoc},
	}
}

func TestReceptionists_Add(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Receptionists.Add(ctx, f.doctorPrincipal(), newReceptionist("Rachel@Clinic.test"))
	require.NoError(t, err)
	assert.Regexp(t, `^RG[0-9]{5}$`, rec.Code)
	assert.Equal(t, "rachel@clinic.test", rec.Email)
	assert.Equal(t, f.doctor.ID, rec.DoctorID)
	assert.True(t, utils.CheckPasswordHash("secret123", rec.Password))

	got, err := f.svc.Receptionists.Get(ctx, f.doctorPrincipal(), rec.ID)
	require.NoError(t, err)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, []byte("%PDF-1.4"), got.Documents[0].Document)
	assert.Equal(t, "application/pdf", got.Documents[0].ContentType)
}

func TestReceptionists_AddRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := newReceptionist("house@clinic.test")
	_, err := f.svc.Receptionists.Add(ctx, f.doctorPrincipal(), in)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err), "doctor email")

	in = newReceptionist("r@clinic.test")
	in.Documents = nil
	_, err = f.svc.Receptionists.Add(ctx, f.doctorPrincipal(), in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in.Documents = []DocumentInput{{Document: "data:image/png;base64,aGVsbG8="}}
	_, err = f.svc.Receptionists.Add(ctx, f.doctorPrincipal(), in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "pdf only")

	in = newReceptionist("r@clinic.test")
	in.Password = "short"
	_, err = f.svc.Receptionists.Add(ctx, f.doctorPrincipal(), in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")
	_, err = f.svc.Receptionists.Add(ctx, receptionistOf(rec), newReceptionist("x@clinic.test"))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestReceptionists_EditIsPartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec, err := f.svc.Receptionists.Add(ctx, f.doctorPrincipal(), newReceptionist("rachel@clinic.test"))
	require.NoError(t, err)

	var in EditReceptionistInput
	require.NoError(t, json.Unmarshal([]byte(`{"address":"15 Yemen Rd","dateOfJoining":null}`), &in))
	in.Documents = []DocumentInput{
		{Document: base64.StdEncoding.EncodeToString([]byte("%PDF-A")), ContentType: "application/pdf"},
		{Document: base64.StdEncoding.EncodeToString([]byte("%PDF-B")), ContentType: "application/pdf"},
	}
	got, err := f.svc.Receptionists.Edit(ctx, f.doctorPrincipal(), rec.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "15 Yemen Rd", got.Address)
	assert.Equal(t, "Rachel Green", got.Name)
	assert.Nil(t, got.DateOfJoining)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, []byte("%PDF-A"), got.Documents[0].Document)

	require.NoError(t, json.Unmarshal([]byte(`{"name":""}`), &in))
	_, err = f.svc.Receptionists.Edit(ctx, f.doctorPrincipal(), rec.ID, EditReceptionistInput{Name: in.Name})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReceptionists_ListShowsAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	here := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")
	away := f.seedReceptionist(t, f.doctor.ID, "front@clinic.test")
	_, err := f.svc.Attendance.CheckIn(ctx, receptionistOf(here))
	require.NoError(t, err)

	list, err := f.svc.Receptionists.List(ctx, f.doctorPrincipal())
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[uint]string{}
	for _, r := range list {
		byID[r.ID] = r.Availability
	}
	assert.Equal(t, Available, byID[here.ID])
	assert.Equal(t, NotAvailable, byID[away.ID])
}

func TestReceptionists_RemoveMeAndPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.seedReceptionist(t, f.doctor.ID, "desk@clinic.test")

	me, err := f.svc.Receptionists.Me(ctx, receptionistOf(rec))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, me.ID)

	require.NoError(t, f.svc.Receptionists.ChangePassword(ctx, f.doctorPrincipal(), rec.ID, "newpass123"))
	stored, err := f.store.Receptionists().Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("newpass123", stored.Password))

	other := f.seedDoctor(t, "wilson@clinic.test")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.svc.Receptionists.Remove(ctx, doctorOf(other), rec.ID)))

	require.NoError(t, f.svc.Receptionists.Remove(ctx, f.doctorPrincipal(), rec.ID))
	_, err = f.svc.Receptionists.Get(ctx, f.doctorPrincipal(), rec.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
