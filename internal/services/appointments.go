package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var dataURL = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// AppointmentService owns the visit lifecycle: unset, then "in", then "out".
type AppointmentService struct {
	*base
}

// SubmitInput closes a visit. Optional fields left out of the request keep
// their stored value; null or "" clears them.
type SubmitInput struct {
	Fees          any                     `json:"fees"`
	Note          models.Optional[string] `json:"note"`
	FollowUp      models.Optional[string] `json:"followUp"`
	Investigation models.Optional[string] `json:"investigation"`
}

// SubmittedAppointment is the narrowed payload of the updatedAppointment event.
type SubmittedAppointment struct {
	AppointmentID uint           `json:"appointmentId"`
	Fees          int64          `json:"fees"`
	FollowUp      *time.Time     `json:"followUp"`
	Note          *string        `json:"note"`
	Prescription  datatypes.JSON `json:"prescription"`
}

// load returns the appointment when it belongs to the caller's clinic.
// Appointments of other clinics are reported as missing.
func (s *AppointmentService) load(ctx context.Context, p *models.Principal, id uint) (*models.Appointment, error) {
	a, err := s.store.Appointments().Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Appointment")
	}
	if a.Patient == nil || a.Patient.DoctorID != p.TenantID {
		return nil, apperr.NotFound("Appointment not found")
	}
	return a, nil
}

// loadMutable also rejects appointments scheduled after now.
func (s *AppointmentService) loadMutable(ctx context.Context, p *models.Principal, id uint, action string) (*models.Appointment, error) {
	a, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if a.Date.After(s.now()) {
		return nil, apperr.FutureAppointment("Cannot " + action + " future appointments")
	}
	return a, nil
}

func (s *AppointmentService) save(ctx context.Context, a *models.Appointment) error {
	if err := s.store.Appointments().Save(ctx, a); err != nil {
		return fromStore(err, "Appointment")
	}
	return nil
}

// parseAmount reads a JSON number or numeric string. ok is false when the
// value is absent.
func parseAmount(v any) (amount float64, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return x, true, nil
	case json.Number:
		f, perr := x.Float64()
		if perr != nil {
			return 0, true, apperr.Validation("Amount must be a valid number")
		}
		return f, true, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, false, nil
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if perr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, true, apperr.Validation("Amount must be a valid number")
		}
		return f, true, nil
	case int:
		return float64(x), true, nil
	case int64:
		return float64(x), true, nil
	default:
		return 0, true, apperr.Validation("Amount must be a valid number")
	}
}

// AddExtraCharges adds charges on top of the current fees.
func (s *AppointmentService) AddExtraCharges(ctx context.Context, p *models.Principal, id uint, charges any) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "add extra charges to")
	if err != nil {
		return nil, err
	}
	amount, ok, err := parseAmount(charges)
	if err != nil {
		return nil, err
	}
	if !ok || amount <= 0 || amount != math.Trunc(amount) {
		return nil, apperr.Validation("Invalid charges")
	}
	a.Fees += int64(amount)
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) AddPaymentMode(ctx context.Context, p *models.Principal, id uint, mode string) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "add payment mode to")
	if err != nil {
		return nil, err
	}
	if mode != models.PaymentModeCash && mode != models.PaymentModeOnline {
		return nil, apperr.Validation("Invalid payment mode")
	}
	a.PaymentMode = &mode
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddDocument stores a base64 data URL ("data:<mime>;base64,<payload>").
func (s *AppointmentService) AddDocument(ctx context.Context, p *models.Principal, id uint, encoded string) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "add prescription for")
	if err != nil {
		return nil, err
	}
	contentType, data, err := decodeDataURL(encoded)
	if err != nil {
		return nil, err
	}
	a.Document = data
	a.DocumentType = &contentType
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeDataURL(encoded string) (string, []byte, error) {
	if strings.TrimSpace(encoded) == "" {
		return "", nil, apperr.Validation("No file or image data uploaded")
	}
	m := dataURL.FindStringSubmatch(encoded)
	if len(m) != 3 {
		return "", nil, apperr.Validation("Invalid base64 image format")
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, apperr.Validation("Invalid base64 image format")
	}
	return m[1], data, nil
}

func (s *AppointmentService) AddParameters(ctx context.Context, p *models.Principal, id uint, parameters json.RawMessage) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "add parameters to")
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if len(parameters) == 0 || json.Unmarshal(parameters, &obj) != nil || obj == nil {
		return nil, apperr.Validation("Parameters must be an object")
	}
	a.Parameters = datatypes.JSON(append([]byte(nil), parameters...))
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, events.ParametersUpdated, p.TenantID, map[string]any{
		"appointmentId": a.ID,
		"parameters":    a.Parameters,
		"hospitalId":    p.TenantID,
	})
	return a, nil
}

// SubmitPrescription stores the prescription list verbatim. Doctors only.
func (s *AppointmentService) SubmitPrescription(ctx context.Context, p *models.Principal, id uint, prescription json.RawMessage) (*models.Appointment, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "submit prescription for")
	if err != nil {
		return nil, err
	}
	var list []any
	if len(prescription) == 0 || json.Unmarshal(prescription, &list) != nil || list == nil {
		return nil, apperr.Validation("Prescription must be an array")
	}
	a.Prescription = datatypes.JSON(append([]byte(nil), prescription...))
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Submit closes the visit. Fees are only added the first time, so a
// resubmitted visit keeps its total.
func (s *AppointmentService) Submit(ctx context.Context, p *models.Principal, id uint, in SubmitInput) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "submit")
	if err != nil {
		return nil, err
	}

	fees, hasFees, err := parseAmount(in.Fees)
	if err != nil {
		return nil, apperr.Validation("Fees must be a valid number greater than 0")
	}
	if hasFees && fees <= 0 {
		return nil, apperr.Validation("Fees must be a valid number greater than 0")
	}

	var followUp *time.Time
	if in.FollowUp.Set && !in.FollowUp.Null && strings.TrimSpace(in.FollowUp.Value) != "" {
		t, err := s.parseDate(in.FollowUp.Value)
		if err != nil {
			return nil, err
		}
		if startOfDay(t.In(s.loc)).Before(startOfDay(s.clock())) {
			return nil, apperr.Validation("Follow-up date cannot be in the past")
		}
		followUp = &t
	}

	models.ApplyString(in.Note, &a.Note)
	models.ApplyString(in.Investigation, &a.Investigation)
	if in.FollowUp.Set {
		a.FollowUp = followUp
	}
	if hasFees && !a.IsOut() {
		a.Fees += int64(fees)
	}
	a.Status = models.StatusPtr(models.StatusOut)

	if err := s.save(ctx, a); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UpdatedAppointment, p.TenantID, map[string]any{
		"appointment": SubmittedAppointment{
			AppointmentID: a.ID,
			Fees:          a.Fees,
			FollowUp:      a.FollowUp,
			Note:          a.Note,
			Prescription:  a.Prescription,
		},
		"hospitalId": p.TenantID,
	})
	return a, nil
}

// SetCurrent makes the appointment the one being attended.
func (s *AppointmentService) SetCurrent(ctx context.Context, p *models.Principal, id uint) (*models.Appointment, error) {
	return s.SetStatus(ctx, p, id, models.StatusIn)
}

// SetStatus moves the appointment to "in" or "out". Moving to "in" closes
// every other "in" appointment of the clinic in the same transaction.
func (s *AppointmentService) SetStatus(ctx context.Context, p *models.Principal, id uint, status string) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	a, err := s.loadMutable(ctx, p, id, "change status of")
	if err != nil {
		return nil, err
	}
	if status != models.StatusIn && status != models.StatusOut {
		return nil, apperr.Validation("Invalid status provided.")
	}
	if a.IsOut() {
		return nil, apperr.InvalidTransition("Appointment is already out.")
	}
	if a.Status == nil && status == models.StatusOut {
		return nil, apperr.InvalidTransition("Cannot set status to out if it's not set to in first.")
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if status == models.StatusIn {
			closed, err := tx.Appointments().CloseActive(ctx, p.TenantID, a.ID)
			if err != nil {
				return err
			}
			if closed > 0 {
				s.log.Debug("closed active appointments", zap.Uint("hospital_id", p.TenantID), zap.Int64("count", closed))
			}
		}
		a.Status = models.StatusPtr(status)
		return tx.Appointments().Save(ctx, a)
	})
	if err != nil {
		return nil, fromStore(err, "Appointment")
	}

	if status == models.StatusIn {
		s.publish(ctx, events.AppointmentUpdated, p.TenantID, map[string]any{
			"appointment": a,
			"hospitalId":  p.TenantID,
		})
	}
	return a, nil
}

// ListToday lists the clinic's appointments on date (default today),
// active visits first, then waiting ones, then finished ones.
func (s *AppointmentService) ListToday(ctx context.Context, p *models.Principal, search, date string) ([]models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	day := s.clock()
	if strings.TrimSpace(date) != "" {
		t, err := s.parseDate(date)
		if err != nil {
			return nil, err
		}
		day = t
	}
	list, err := s.store.Appointments().ListForDay(ctx, p.TenantID, dayOf(day), strings.TrimSpace(search))
	if err != nil {
		return nil, fromStore(err, "Appointments")
	}
	if list == nil {
		list = []models.Appointment{}
	}
	return list, nil
}

// FirstToAttend picks the visit to show on the doctor's screen. Doctors only
// see the active visit; receptionists also see who is waiting today.
func (s *AppointmentService) FirstToAttend(ctx context.Context, p *models.Principal) (*models.Appointment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	today := dayOf(s.clock())
	a, err := s.store.Appointments().FirstToAttend(ctx, store.AttendQuery{
		DoctorID:     p.TenantID,
		Day:          &today,
		IncludeUnset: !p.IsDoctor(),
	})
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fromStore(err, "Appointment")
	}

	a, err = s.store.Appointments().FirstToAttend(ctx, store.AttendQuery{DoctorID: p.TenantID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("No appointment to attend")
	}
	if err != nil {
		return nil, fromStore(err, "Appointment")
	}
	return a, nil
}

// PatientAppointments returns the patient with every appointment. Doctors only.
func (s *AppointmentService) PatientAppointments(ctx context.Context, p *models.Principal, patientID uint) (*models.Patient, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	patient, err := s.store.Patients().Get(ctx, patientID)
	if err != nil {
		return nil, fromStore(err, "Patient")
	}
	if patient.DoctorID != p.TenantID {
		return nil, apperr.NotFound("Patient not found")
	}
	list, err := s.store.Appointments().ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fromStore(err, "Appointments")
	}
	patient.Appointments = list
	if patient.Appointments == nil {
		patient.Appointments = []models.Appointment{}
	}
	return patient, nil
}
