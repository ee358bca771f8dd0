package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type PatientService struct {
	*base
	sms Notifier
}

type BookInput struct {
	Reason  string `json:"reason" binding:"required,min=2,max=100"`
	Process string `json:"process" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

type RegisterPatientInput struct {
	Name         string  `json:"name" binding:"required,min=2,max=100"`
	MobileNumber string  `json:"mobileNumber" binding:"required"`
	Address      string  `json:"address"`
	Email        *string `json:"email"`
	Age          *int    `json:"age"`
	Gender       string  `json:"gender" binding:"required"`
	DateOfBirth  string  `json:"dateOfBirth"`
	BloodGroup   *string `json:"bloodGroup"`
	BookInput
}

// Booking is the result of a registration or follow-up booking.
type Booking struct {
	Patient     *models.Patient     `json:"patient"`
	Appointment *models.Appointment `json:"appointment"`
}

func (s *PatientService) checkBooking(in BookInput) error {
	if err := checkText("Reason", in.Reason, 2, 100); err != nil {
		return err
	}
	if strings.TrimSpace(in.Process) == "" {
		return apperr.Validation("Process is required")
	}
	return nil
}

// Register creates the patient and the first appointment in one
// transaction. A patient with the same name and mobile number under the
// clinic is a Conflict.
func (s *PatientService) Register(ctx context.Context, p *models.Principal, in RegisterPatientInput) (*Booking, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	date, err := s.notPast(in.Date)
	if err != nil {
		return nil, err
	}
	if err := checkText("Name", in.Name, 2, 100); err != nil {
		return nil, err
	}
	if err := checkMobile(in.MobileNumber); err != nil {
		return nil, err
	}
	if err := checkGender(in.Gender); err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != "" {
		if err := checkEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	if err := s.checkBooking(in.BookInput); err != nil {
		return nil, err
	}
	var dob *time.Time
	if strings.TrimSpace(in.DateOfBirth) != "" {
		t, err := s.parseDate(in.DateOfBirth)
		if err != nil {
			return nil, err
		}
		dob = &t
	}

	var doctor *models.Doctor
	booking := &Booking{}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		d, err := tx.Doctors().Get(ctx, p.TenantID)
		if err != nil {
			return fromStore(err, "Doctor")
		}
		doctor = d

		_, err = tx.Patients().FindByIdentity(ctx, p.TenantID, strings.TrimSpace(in.Name), strings.TrimSpace(in.MobileNumber))
		if err == nil {
			return apperr.Conflict("Patient already exists")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		code, err := s.ids.Generate(ctx, in.Name, tx.Patients().CodeExists)
		if err != nil {
			return err
		}
		patient := &models.Patient{
			Code:         code,
			Name:         strings.TrimSpace(in.Name),
			MobileNumber: strings.TrimSpace(in.MobileNumber),
			Address:      in.Address,
			Email:        in.Email,
			Age:          in.Age,
			DateOfBirth:  dob,
			BloodGroup:   in.BloodGroup,
			Gender:       in.Gender,
			DoctorID:     p.TenantID,
		}
		if err := tx.Patients().Create(ctx, patient); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("Patient already exists")
			}
			return err
		}
		apt := s.newAppointment(patient.ID, in.BookInput, date, d)
		if err := tx.Appointments().Create(ctx, apt); err != nil {
			return err
		}
		booking.Patient, booking.Appointment = patient, apt
		return nil
	})
	if err != nil {
		return nil, fromStore(err, "Patient")
	}

	s.announce(ctx, p, doctor, booking)
	return booking, nil
}

// Book adds a follow-up appointment for an existing patient. Receptionists only.
func (s *PatientService) Book(ctx context.Context, p *models.Principal, patientID uint, in BookInput) (*Booking, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	date, err := s.notPast(in.Date)
	if err != nil {
		return nil, err
	}
	if err := s.checkBooking(in); err != nil {
		return nil, err
	}
	doctor, err := s.tenantDoctor(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	patient, err := s.patientOf(ctx, p, patientID)
	if err != nil {
		return nil, err
	}
	apt := s.newAppointment(patient.ID, in, date, doctor)
	if err := s.store.Appointments().Create(ctx, apt); err != nil {
		return nil, fromStore(err, "Appointment")
	}
	booking := &Booking{Patient: patient, Appointment: apt}
	s.announce(ctx, p, doctor, booking)
	return booking, nil
}

func (s *PatientService) newAppointment(patientID uint, in BookInput, date time.Time, doctor *models.Doctor) *models.Appointment {
	return &models.Appointment{
		PatientID:     patientID,
		Reason:        strings.TrimSpace(in.Reason),
		Process:       strings.TrimSpace(in.Process),
		Date:          date,
		Fees:          doctor.DefaultFee(),
		PaymentStatus: models.PaymentPending,
	}
}

// announce pushes same-day bookings to the clinic screens and texts the
// patient.
func (s *PatientService) announce(ctx context.Context, p *models.Principal, doctor *models.Doctor, b *Booking) {
	today := dayOf(s.clock())
	if !b.Appointment.Date.Before(today.From) && !b.Appointment.Date.After(today.To) {
		s.publish(ctx, events.NewAppointment, p.TenantID, map[string]any{
			"appointment": b.Appointment,
			"patient":     b.Patient,
			"hospitalId":  p.TenantID,
		})
	}
	if s.sms != nil && doctor != nil {
		s.sms.SendAppointmentConfirmationSMS(doctor.ClinicName, b.Patient, b.Appointment)
	}
}

func (s *PatientService) patientOf(ctx context.Context, p *models.Principal, id uint) (*models.Patient, error) {
	patient, err := s.store.Patients().Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Patient")
	}
	if patient.DoctorID != p.TenantID {
		return nil, apperr.NotFound("Patient not found")
	}
	return patient, nil
}

// ListByDate returns patients with an appointment on date (default today).
func (s *PatientService) ListByDate(ctx context.Context, p *models.Principal, date, search string) ([]models.Patient, error) {
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
	list, err := s.store.Patients().ListWithAppointments(ctx, p.TenantID, dayOf(day), strings.TrimSpace(search))
	if err != nil {
		return nil, fromStore(err, "Patients")
	}
	if list == nil {
		list = []models.Patient{}
	}
	return list, nil
}

// SearchForBooking matches name or mobile number. Receptionists only.
func (s *PatientService) SearchForBooking(ctx context.Context, p *models.Principal, term string) ([]models.Patient, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	list, err := s.store.Patients().Search(ctx, p.TenantID, strings.TrimSpace(term))
	if err != nil {
		return nil, fromStore(err, "Patients")
	}
	if list == nil {
		list = []models.Patient{}
	}
	return list, nil
}

// ToggleToxicity flips the patient's toxicity flag. Doctors only.
func (s *PatientService) ToggleToxicity(ctx context.Context, p *models.Principal, id uint) (*models.Patient, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	patient, err := s.patientOf(ctx, p, id)
	if err != nil {
		return nil, err
	}
	patient.Toxicity = !patient.Toxicity
	if err := s.store.Patients().Save(ctx, patient); err != nil {
		return nil, fromStore(err, "Patient")
	}
	return patient, nil
}
