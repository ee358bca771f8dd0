package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

const (
	Available    = "Available"
	NotAvailable = "Not Available"
	pdfType      = "application/pdf"
)

type ReceptionistService struct {
	*base
}

// DocumentInput is an uploaded identity or qualification document. Document
// is either a data URL or bare base64 with ContentType set.
type DocumentInput struct {
	Document    string `json:"document"`
	ContentType string `json:"contentType"`
}

type AddReceptionistInput struct {
	Name          string          `json:"name"`
	MobileNumber  string          `json:"mobileNumber"`
	Address       string          `json:"address"`
	Email         string          `json:"email"`
	Age           *int            `json:"age"`
	DateOfJoining string          `json:"dateOfJoining"`
	Gender        string          `json:"gender"`
	Qualification string          `json:"qualification"`
	Password      string          `json:"password"`
	Documents     []DocumentInput `json:"documents"`
}

type EditReceptionistInput struct {
	Name          models.Optional[string] `json:"name"`
	MobileNumber  models.Optional[string] `json:"mobileNumber"`
	Address       models.Optional[string] `json:"address"`
	Email         models.Optional[string] `json:"email"`
	Age           models.Optional[int]    `json:"age"`
	DateOfJoining models.Optional[string] `json:"dateOfJoining"`
	Gender        models.Optional[string] `json:"gender"`
	Qualification models.Optional[string] `json:"qualification"`
	Documents     []DocumentInput         `json:"documents"`
}

// ReceptionistSummary is a list row with today's availability.
type ReceptionistSummary struct {
	models.Receptionist
	Availability string `json:"availability"`
}

func decodeDocuments(in []DocumentInput) ([]models.ReceptionistDocument, error) {
	if len(in) == 0 {
		return nil, apperr.Validation("At least one document is required")
	}
	docs := make([]models.ReceptionistDocument, 0, len(in))
	for _, d := range in {
		contentType, data := d.ContentType, []byte(nil)
		if m := dataURL.FindStringSubmatch(d.Document); len(m) == 3 {
			contentType = m[1]
			raw, err := base64.StdEncoding.DecodeString(m[2])
			if err != nil {
				return nil, apperr.Validation("Invalid document encoding")
			}
			data = raw
		} else {
			raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(d.Document))
			if err != nil || len(raw) == 0 {
				return nil, apperr.Validation("Invalid document encoding")
			}
			data = raw
		}
		if contentType != pdfType {
			return nil, apperr.Validation("Only PDF documents are allowed")
		}
		docs = append(docs, models.ReceptionistDocument{Document: data, ContentType: contentType})
	}
	return docs, nil
}

// emailTaken checks both account tables; login resolves an email across them.
func emailTaken(ctx context.Context, tx store.Store, email string, exceptReceptionist uint) (bool, error) {
	if _, err := tx.Doctors().GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	r, err := tx.Receptionists().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.ID != exceptReceptionist, nil
}

func (b *base) optionalDay(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := b.parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ReceptionistService) Add(ctx context.Context, p *models.Principal, in AddReceptionistInput) (*models.Receptionist, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	if err := checkText("Name", in.Name, 2, 100); err != nil {
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
	joined, err := s.optionalDay(in.DateOfJoining)
	if err != nil {
		return nil, err
	}
	docs, err := decodeDocuments(in.Documents)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	rec := &models.Receptionist{
		Name:          strings.TrimSpace(in.Name),
		MobileNumber:  strings.TrimSpace(in.MobileNumber),
		Address:       strings.TrimSpace(in.Address),
		Email:         email,
		Age:           in.Age,
		DateOfJoining: joined,
		Gender:        in.Gender,
		Qualification: strings.TrimSpace(in.Qualification),
		Password:      hash,
		DoctorID:      p.TenantID,
		Documents:     docs,
	}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		taken, err := emailTaken(ctx, tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Email already in use")
		}
		code, err := s.ids.Generate(ctx, rec.Name, tx.Receptionists().CodeExists)
		if err != nil {
			return err
		}
		rec.Code = code
		return tx.Receptionists().Create(ctx, rec)
	})
	if err != nil {
		return nil, fromStore(err, "Receptionist")
	}
	return rec, nil
}

// owned loads a receptionist of the caller's clinic.
func (s *ReceptionistService) owned(ctx context.Context, tx store.Store, p *models.Principal, id uint, withDocs bool) (*models.Receptionist, error) {
	get := tx.Receptionists().Get
	if withDocs {
		get = tx.Receptionists().GetWithDocuments
	}
	rec, err := get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Receptionist")
	}
	if rec.DoctorID != p.TenantID {
		return nil, apperr.NotFound("Receptionist not found")
	}
	return rec, nil
}

func applyRequired(field string, o models.Optional[string], dst *string, check func(string) error) error {
	if !o.Set {
		return nil
	}
	if o.Null || strings.TrimSpace(o.Value) == "" {
		return apperr.Validation(field + " cannot be empty")
	}
	if check != nil {
		if err := check(o.Value); err != nil {
			return err
		}
	}
	*dst = strings.TrimSpace(o.Value)
	return nil
}

func (s *ReceptionistService) Edit(ctx context.Context, p *models.Principal, id uint, in EditReceptionistInput) (*models.Receptionist, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	var docs []models.ReceptionistDocument
	if in.Documents != nil {
		d, err := decodeDocuments(in.Documents)
		if err != nil {
			return nil, err
		}
		docs = d
	}

	var out *models.Receptionist
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		rec, err := s.owned(ctx, tx, p, id, false)
		if err != nil {
			return err
		}
		if err := applyRequired("Name", in.Name, &rec.Name, func(v string) error { return checkText("Name", v, 2, 100) }); err != nil {
			return err
		}
		if err := applyRequired("Mobile number", in.MobileNumber, &rec.MobileNumber, checkMobile); err != nil {
			return err
		}
		if err := applyRequired("Address", in.Address, &rec.Address, nil); err != nil {
			return err
		}
		if err := applyRequired("Gender", in.Gender, &rec.Gender, checkGender); err != nil {
			return err
		}
		if in.Qualification.Set {
			rec.Qualification = strings.TrimSpace(in.Qualification.Value)
		}
		if in.Age.Set {
			if in.Age.Null {
				rec.Age = nil
			} else {
				age := in.Age.Value
				rec.Age = &age
			}
		}
		if in.DateOfJoining.Set {
			joined, err := s.optionalDay(in.DateOfJoining.Value)
			if err != nil {
				return err
			}
			rec.DateOfJoining = joined
		}
		if in.Email.Set {
			email := strings.ToLower(strings.TrimSpace(in.Email.Value))
			if err := checkEmail(email); err != nil {
				return err
			}
			taken, err := emailTaken(ctx, tx, email, rec.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("Email already in use")
			}
			rec.Email = email
		}
		if err := tx.Receptionists().Save(ctx, rec); err != nil {
			return err
		}
		if docs != nil {
			if err := tx.Receptionists().ReplaceDocuments(ctx, rec.ID, docs); err != nil {
				return err
			}
		}
		out, err = s.owned(ctx, tx, p, id, true)
		return err
	})
	if err != nil {
		return nil, fromStore(err, "Receptionist")
	}
	return out, nil
}

func (s *ReceptionistService) Remove(ctx context.Context, p *models.Principal, id uint) error {
	if err := requireDoctor(p); err != nil {
		return err
	}
	if _, err := s.owned(ctx, s.store, p, id, false); err != nil {
		return err
	}
	return fromStore(s.store.Receptionists().Delete(ctx, id), "Receptionist")
}

// List returns the clinic's receptionists with today's availability.
func (s *ReceptionistService) List(ctx context.Context, p *models.Principal) ([]ReceptionistSummary, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	recs, err := s.store.Receptionists().List(ctx, p.TenantID)
	if err != nil {
		return nil, fromStore(err, "Receptionists")
	}
	ids := make([]uint, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	present := map[uint]bool{}
	if len(ids) > 0 {
		present, err = s.store.Attendance().PresentOn(ctx, ids, s.clock())
		if err != nil {
			return nil, fromStore(err, "Attendance")
		}
	}
	out := make([]ReceptionistSummary, len(recs))
	for i, r := range recs {
		out[i] = ReceptionistSummary{Receptionist: r, Availability: NotAvailable}
		if present[r.ID] {
			out[i].Availability = Available
		}
	}
	return out, nil
}

func (s *ReceptionistService) Get(ctx context.Context, p *models.Principal, id uint) (*models.Receptionist, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	return s.owned(ctx, s.store, p, id, true)
}

// Me returns the calling receptionist's own record.
func (s *ReceptionistService) Me(ctx context.Context, p *models.Principal) (*models.Receptionist, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	return s.owned(ctx, s.store, p, p.ID, true)
}

// ChangePassword lets a doctor reset a receptionist's password.
func (s *ReceptionistService) ChangePassword(ctx context.Context, p *models.Principal, id uint, password string) error {
	if err := requireDoctor(p); err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	rec, err := s.owned(ctx, s.store, p, id, false)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	rec.Password = hash
	return fromStore(s.store.Receptionists().Save(ctx, rec), "Receptionist")
}
