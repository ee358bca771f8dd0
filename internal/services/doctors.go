package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

// DoctorService covers the doctor's own profile, clinic settings and the
// dashboard figures.
type DoctorService struct {
	*base
}

type EditDoctorInput struct {
	Name                  models.Optional[string] `json:"name"`
	ClinicName            models.Optional[string] `json:"clinicName"`
	MobileNumber          models.Optional[string] `json:"mobileNumber"`
	Address               models.Optional[string] `json:"address"`
	DateOfBirth           models.Optional[string] `json:"dateOfBirth"`
	Gender                models.Optional[string] `json:"gender"`
	MedicalLicenceNumber  models.Optional[string] `json:"medicalLicenceNumber"`
	RegistrationAuthority models.Optional[string] `json:"registrationAuthority"`
	DateOfRegistration    models.Optional[string] `json:"dateOfRegistration"`
	MedicalDegree         models.Optional[string] `json:"medicalDegree"`
	GovernmentID          models.Optional[string] `json:"governmentId"`
}

// Profile is the doctor record with the derived age.
type Profile struct {
	*models.Doctor
	Age *int `json:"age"`
}

type ClinicHours struct {
	CheckInTime  string `json:"checkInTime"`
	CheckOutTime string `json:"checkOutTime"`
}

type AgeGroups struct {
	Young  int `json:"youngCount"`
	Adult  int `json:"adultCount"`
	Senior int `json:"seniorCount"`
}

type GenderShare struct {
	Male   string `json:"malePercentage"`
	Female string `json:"femalePercentage"`
	Other  string `json:"otherPercentage"`
}

type YearRevenue struct {
	Year    int       `json:"year"`
	Monthly [12]int64 `json:"monthlyRevenue"`
}

func (s *DoctorService) self(ctx context.Context, p *models.Principal) (*models.Doctor, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	return s.tenantDoctor(ctx, p.ID)
}

func (s *DoctorService) Profile(ctx context.Context, p *models.Principal) (*Profile, error) {
	d, err := s.self(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Profile{Doctor: d, Age: d.AgeAt(s.clock())}, nil
}

func (s *DoctorService) EditProfile(ctx context.Context, p *models.Principal, in EditDoctorInput) (*Profile, error) {
	d, err := s.self(ctx, p)
	if err != nil {
		return nil, err
	}
	checks := []error{
		applyRequired("Name", in.Name, &d.Name, func(v string) error { return checkText("Name", v, 2, 100) }),
		applyRequired("Clinic name", in.ClinicName, &d.ClinicName, func(v string) error { return checkText("Clinic name", v, 2, 150) }),
		applyRequired("Mobile number", in.MobileNumber, &d.MobileNumber, checkMobile),
		applyRequired("Address", in.Address, &d.Address, nil),
		applyRequired("Gender", in.Gender, &d.Gender, checkGender),
	}
	for _, err := range checks {
		if err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		o   models.Optional[string]
		dst *string
	}{
		{in.MedicalLicenceNumber, &d.MedicalLicenceNumber},
		{in.RegistrationAuthority, &d.RegistrationAuthority},
		{in.MedicalDegree, &d.MedicalDegree},
		{in.GovernmentID, &d.GovernmentID},
	} {
		if f.o.Set {
			*f.dst = strings.TrimSpace(f.o.Value)
		}
	}
	if in.DateOfBirth.Set {
		if d.DateOfBirth, err = s.optionalDay(in.DateOfBirth.Value); err != nil {
			return nil, err
		}
	}
	if in.DateOfRegistration.Set {
		if d.DateOfRegistration, err = s.optionalDay(in.DateOfRegistration.Value); err != nil {
			return nil, err
		}
	}
	if err := s.store.Doctors().Save(ctx, d); err != nil {
		return nil, fromStore(err, "Doctor")
	}
	return &Profile{Doctor: d, Age: d.AgeAt(s.clock())}, nil
}

func (s *DoctorService) Remove(ctx context.Context, p *models.Principal) error {
	if _, err := s.self(ctx, p); err != nil {
		return err
	}
	return fromStore(s.store.Doctors().Delete(ctx, p.ID), "Doctor")
}

// SetFees stores the default fee copied onto new appointments.
func (s *DoctorService) SetFees(ctx context.Context, p *models.Principal, fees any) (int64, error) {
	amount, ok, err := parseAmount(fees)
	if err != nil {
		return 0, apperr.Validation("Fees must be a valid number")
	}
	if !ok {
		return 0, apperr.Validation("Fees cannot be empty")
	}
	if amount <= 0 || amount != float64(int64(amount)) {
		return 0, apperr.Validation("Fees must be a positive value")
	}
	d, err := s.self(ctx, p)
	if err != nil {
		return 0, err
	}
	v := int64(amount)
	d.Fees = &v
	if err := s.store.Doctors().Save(ctx, d); err != nil {
		return 0, fromStore(err, "Doctor")
	}
	return v, nil
}

// GetFees is available to the whole clinic.
func (s *DoctorService) GetFees(ctx context.Context, p *models.Principal) (*int64, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	d, err := s.tenantDoctor(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	return d.Fees, nil
}

func (s *DoctorService) SetHours(ctx context.Context, p *models.Principal, checkIn, checkOut string) (*ClinicHours, error) {
	if strings.TrimSpace(checkIn) == "" && strings.TrimSpace(checkOut) == "" {
		return nil, apperr.Validation("At least one of checkInTime or checkOutTime is required")
	}
	d, err := s.self(ctx, p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(checkIn) != "" {
		v, err := checkClock("checkInTime", checkIn)
		if err != nil {
			return nil, err
		}
		d.CheckInTime = &v
	}
	if strings.TrimSpace(checkOut) != "" {
		v, err := checkClock("checkOutTime", checkOut)
		if err != nil {
			return nil, err
		}
		d.CheckOutTime = &v
	}
	if err := s.store.Doctors().Save(ctx, d); err != nil {
		return nil, fromStore(err, "Doctor")
	}
	return &ClinicHours{CheckInTime: d.ExpectedCheckIn(), CheckOutTime: d.ExpectedCheckOut()}, nil
}

func (s *DoctorService) GetHours(ctx context.Context, p *models.Principal) (*ClinicHours, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	d, err := s.tenantDoctor(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	return &ClinicHours{CheckInTime: d.ExpectedCheckIn(), CheckOutTime: d.ExpectedCheckOut()}, nil
}

// AppointmentStats counts today's appointments of the clinic.
func (s *DoctorService) AppointmentStats(ctx context.Context, p *models.Principal) (store.DayCounts, error) {
	if err := requirePrincipal(p); err != nil {
		return store.DayCounts{}, err
	}
	counts, err := s.store.Appointments().CountForDay(ctx, p.TenantID, dayOf(s.clock()))
	if err != nil {
		return store.DayCounts{}, fromStore(err, "Appointments")
	}
	return counts, nil
}

func (s *DoctorService) registeredIn(ctx context.Context, p *models.Principal, month, year string) ([]models.Patient, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	m, y, err := s.parseMonthYear(month, year)
	if err != nil {
		return nil, err
	}
	list, err := s.store.Patients().ListRegistered(ctx, p.TenantID, monthOf(y, m, s.loc))
	if err != nil {
		return nil, fromStore(err, "Patients")
	}
	return list, nil
}

// AgeGroups buckets patients registered in the month. Patients without a
// known age are left out.
func (s *DoctorService) AgeGroups(ctx context.Context, p *models.Principal, month, year string) (*AgeGroups, error) {
	patients, err := s.registeredIn(ctx, p, month, year)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	groups := &AgeGroups{}
	for i := range patients {
		age, ok := patients[i].AgeAt(now)
		switch {
		case !ok:
		case age <= 17:
			groups.Young++
		case age <= 49:
			groups.Adult++
		default:
			groups.Senior++
		}
	}
	return groups, nil
}

func percentOf(n, total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 2, 64)
}

func (s *DoctorService) GenderPercentage(ctx context.Context, p *models.Principal, month, year string) (*GenderShare, error) {
	patients, err := s.registeredIn(ctx, p, month, year)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, pt := range patients {
		counts[pt.Gender]++
	}
	total := len(patients)
	return &GenderShare{
		Male:   percentOf(counts["male"], total),
		Female: percentOf(counts["female"], total),
		Other:  percentOf(counts["other"], total),
	}, nil
}

func (s *DoctorService) RevenueByMonth(ctx context.Context, p *models.Principal, month, year string) (int64, error) {
	if err := requireDoctor(p); err != nil {
		return 0, err
	}
	m, y, err := s.parseMonthYear(month, year)
	if err != nil {
		return 0, err
	}
	total, err := s.store.Appointments().SumFees(ctx, p.TenantID, monthOf(y, m, s.loc))
	if err != nil {
		return 0, fromStore(err, "Appointments")
	}
	return total, nil
}

func (s *DoctorService) RevenueByYear(ctx context.Context, p *models.Principal, year string) (*YearRevenue, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	_, y, err := s.parseMonthYear("", year)
	if err != nil {
		return nil, err
	}
	first := monthOf(y, 1, s.loc)
	last := monthOf(y, 12, s.loc)
	monthly, err := s.store.Appointments().MonthlyFees(ctx, p.TenantID, store.DayRange{From: first.From, To: last.To})
	if err != nil {
		return nil, fromStore(err, "Appointments")
	}
	return &YearRevenue{Year: y, Monthly: monthly}, nil
}
