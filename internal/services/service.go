package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/identity"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/utils"
	"go.uber.org/zap"
)

// Options wires the collaborators shared by every service.
type Options struct {
	Store    store.Store
	Events   events.Publisher
	SMS      Notifier
	Tokens   *utils.TokenIssuer
	IDs      *identity.Generator
	Logger   *zap.Logger
	Location *time.Location
	Now      func() time.Time
}

type Services struct {
	Auth          *AuthService
	Doctors       *DoctorService
	Receptionists *ReceptionistService
	Attendance    *AttendanceService
	Patients      *PatientService
	Appointments  *AppointmentService
	Medicines     *MedicineService
}

func New(opts Options) *Services {
	b := newBase(opts)
	return &Services{
		Auth:          &AuthService{base: b, tokens: opts.Tokens},
		Doctors:       &DoctorService{base: b},
		Receptionists: &ReceptionistService{base: b},
		Attendance:    &AttendanceService{base: b},
		Patients:      &PatientService{base: b, sms: opts.SMS},
		Appointments:  &AppointmentService{base: b},
		Medicines:     &MedicineService{base: b},
	}
}

type base struct {
	store  store.Store
	events events.Publisher
	ids    *identity.Generator
	log    *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

func newBase(opts Options) *base {
	b := &base{
		store:  opts.Store,
		events: opts.Events,
		ids:    opts.IDs,
		log:    opts.Logger,
		loc:    opts.Location,
		now:    opts.Now,
	}
	if b.events == nil {
		b.events = events.Nop()
	}
	if b.ids == nil {
		b.ids = identity.NewGenerator(identity.DefaultMaxAttempts)
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// clock returns the current instant in the clinic timezone.
func (b *base) clock() time.Time { return b.now().In(b.loc) }

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

func dayOf(t time.Time) store.DayRange {
	return store.DayRange{From: startOfDay(t), To: endOfDay(t)}
}

// monthOf spans the first to the last millisecond of a calendar month.
func monthOf(year int, month time.Month, loc *time.Location) store.DayRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return store.DayRange{From: first, To: first.AddDate(0, 1, 0).Add(-time.Millisecond)}
}

// parseMonthYear falls back to the current month and year for empty input.
func (b *base) parseMonthYear(monthStr, yearStr string) (time.Month, int, error) {
	now := b.clock()
	month, year := now.Month(), now.Year()
	if monthStr != "" {
		m, err := strconv.Atoi(monthStr)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, apperr.Validation("Month must be between 1 and 12")
		}
		month = time.Month(m)
	}
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y < 1900 || y > 9999 {
			return 0, 0, apperr.Validation("Invalid year")
		}
		year = y
	}
	return month, year, nil
}

// parseDate accepts a calendar day or an RFC 3339 timestamp.
func (b *base) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(models.DateLayout, value, b.loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(b.loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, b.loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, b.loc); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("Invalid date: " + value)
}

// publish reports failures in the log only; events never fail a request.
func (b *base) publish(ctx context.Context, name string, tenantID uint, payload any) {
	e := events.New(name, tenantID, b.clock(), payload)
	if err := b.events.Publish(ctx, e); err != nil {
		b.log.Warn("failed to publish event",
			zap.String("event", name),
			zap.Uint("hospital_id", tenantID),
			zap.Error(err))
	}
}

func requirePrincipal(p *models.Principal) error {
	if p == nil || p.ID == 0 || p.TenantID == 0 {
		return apperr.Unauthorized("Unauthorized request")
	}
	return nil
}

func requireDoctor(p *models.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.IsDoctor() {
		return apperr.Unauthorized("Only doctors can perform this action")
	}
	return nil
}

func requireReceptionist(p *models.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.IsReceptionist() {
		return apperr.Unauthorized("Only receptionists can perform this action")
	}
	return nil
}

// fromStore converts repository errors into the client-facing taxonomy.
func fromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(what + " already exists")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal("Failed to access "+strings.ToLower(what), err)
}

func (b *base) tenantDoctor(ctx context.Context, tenantID uint) (*models.Doctor, error) {
	d, err := b.store.Doctors().Get(ctx, tenantID)
	if err != nil {
		return nil, fromStore(err, "Doctor")
	}
	return d, nil
}
