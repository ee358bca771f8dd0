package services

import (
	"context"
	"errors"
	"strings"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

type AuthService struct {
	*base
	tokens *utils.TokenIssuer
}

type RegisterDoctorInput struct {
	Name                  string `json:"name"`
	ClinicName            string `json:"clinicName"`
	MobileNumber          string `json:"mobileNumber"`
	Address               string `json:"address"`
	Email                 string `json:"email"`
	DateOfBirth           string `json:"dateOfBirth"`
	Gender                string `json:"gender"`
	MedicalLicenceNumber  string `json:"medicalLicenceNumber"`
	RegistrationAuthority string `json:"registrationAuthority"`
	DateOfRegistration    string `json:"dateOfRegistration"`
	MedicalDegree         string `json:"medicalDegree"`
	GovernmentID          string `json:"governmentId"`
	Password              string `json:"password"`
}

// Session is returned by login and by accepting the terms.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	User  any    `json:"user"`
}

var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

func (s *AuthService) Register(ctx context.Context, in RegisterDoctorInput) (*models.Doctor, error) {
	if err := checkText("Name", in.Name, 2, 100); err != nil {
		return nil, err
	}
	if err := checkText("Clinic name", in.ClinicName, 2, 150); err != nil {
		return nil, err
	}
	if err := checkMobile(in.MobileNumber); err != nil {
		return nil, err
	}
	if err := checkText("Address", in.Address, 2, 255); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkGender(in.Gender); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	dob, err := s.optionalDay(in.DateOfBirth)
	if err != nil {
		return nil, err
	}
	registered, err := s.optionalDay(in.DateOfRegistration)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	doctor := &models.Doctor{
		Name:                  strings.TrimSpace(in.Name),
		ClinicName:            strings.TrimSpace(in.ClinicName),
		MobileNumber:          strings.TrimSpace(in.MobileNumber),
		Address:               strings.TrimSpace(in.Address),
		Email:                 email,
		DateOfBirth:           dob,
		Gender:                in.Gender,
		Password:              hash,
		MedicalLicenceNumber:  strings.TrimSpace(in.MedicalLicenceNumber),
		RegistrationAuthority: strings.TrimSpace(in.RegistrationAuthority),
		DateOfRegistration:    registered,
		MedicalDegree:         strings.TrimSpace(in.MedicalDegree),
		GovernmentID:          strings.TrimSpace(in.GovernmentID),
	}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		taken, err := emailTaken(ctx, tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Email already in use")
		}
		code, err := s.ids.Generate(ctx, doctor.Name, tx.Doctors().CodeExists)
		if err != nil {
			return err
		}
		doctor.Code = code
		return tx.Doctors().Create(ctx, doctor)
	})
	if err != nil {
		return nil, fromStore(err, "Doctor")
	}
	return doctor, nil
}

// Login resolves the email against doctors first, then receptionists.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	doctor, err := s.store.Doctors().GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !utils.CheckPasswordHash(password, doctor.Password) {
			return nil, errInvalidCredentials
		}
		return s.doctorSession(doctor)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fromStore(err, "Doctor")
	}

	rec, err := s.store.Receptionists().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fromStore(err, "Receptionist")
	}
	if !utils.CheckPasswordHash(password, rec.Password) {
		return nil, errInvalidCredentials
	}
	token, err := s.tokens.GenerateJWT(utils.Claims{
		UserID:     rec.ID,
		Email:      rec.Email,
		Role:       models.RoleReceptionist,
		HospitalID: rec.DoctorID,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	return &Session{Token: token, Role: models.RoleReceptionist, User: rec}, nil
}

func (s *AuthService) doctorSession(d *models.Doctor) (*Session, error) {
	token, err := s.tokens.GenerateJWT(utils.Claims{
		UserID:        d.ID,
		Email:         d.Email,
		Role:          models.RoleDoctor,
		HospitalID:    d.ID,
		AcceptedTAndC: d.AcceptedTAndC,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	return &Session{Token: token, Role: models.RoleDoctor, User: d}, nil
}

// AcceptTerms records the doctor's acceptance and issues a token carrying it.
func (s *AuthService) AcceptTerms(ctx context.Context, p *models.Principal) (*Session, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	doctor, err := s.tenantDoctor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !doctor.AcceptedTAndC {
		doctor.AcceptedTAndC = true
		if err := s.store.Doctors().Save(ctx, doctor); err != nil {
			return nil, fromStore(err, "Doctor")
		}
	}
	return s.doctorSession(doctor)
}

func (s *AuthService) ChangePassword(ctx context.Context, p *models.Principal, oldPassword, newPassword string) error {
	if err := requireDoctor(p); err != nil {
		return err
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	doctor, err := s.tenantDoctor(ctx, p.ID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(oldPassword, doctor.Password) {
		return apperr.Validation("Old password is incorrect")
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	doctor.Password = hash
	return fromStore(s.store.Doctors().Save(ctx, doctor), "Doctor")
}
