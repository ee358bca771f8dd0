package services

import (
	"context"
	"strings"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type MedicineService struct {
	*base
}

type MedicineInput struct {
	Name     string `json:"name"`
	Strength string `json:"strength"`
	Form     string `json:"form"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
}

type EditMedicineInput struct {
	Name     models.Optional[string] `json:"name"`
	Strength models.Optional[string] `json:"strength"`
	Form     models.Optional[string] `json:"form"`
	Category models.Optional[string] `json:"category"`
	Brand    models.Optional[string] `json:"brand"`
}

func identityOf(m *models.Medicine) store.MedicineIdentity {
	return store.MedicineIdentity{
		DoctorID: m.DoctorID,
		Name:     m.Name,
		Strength: m.Strength,
		Form:     m.Form,
		Brand:    m.Brand,
	}
}

func (s *MedicineService) unique(ctx context.Context, m *models.Medicine) error {
	exists, err := s.store.Medicines().Exists(ctx, identityOf(m), m.ID)
	if err != nil {
		return fromStore(err, "Medicine")
	}
	if exists {
		return apperr.Conflict("Medicine already exists")
	}
	return nil
}

func (s *MedicineService) Add(ctx context.Context, p *models.Principal, in MedicineInput) (*models.Medicine, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	m := &models.Medicine{
		Name:     strings.TrimSpace(in.Name),
		Strength: strings.TrimSpace(in.Strength),
		Form:     strings.TrimSpace(in.Form),
		Category: strings.TrimSpace(in.Category),
		Brand:    strings.TrimSpace(in.Brand),
		DoctorID: p.TenantID,
	}
	for _, f := range [][2]string{{"Name", m.Name}, {"Strength", m.Strength}, {"Form", m.Form}, {"Brand", m.Brand}} {
		if f[1] == "" {
			return nil, apperr.Validation(f[0] + " is required")
		}
	}
	if err := s.unique(ctx, m); err != nil {
		return nil, err
	}
	if err := s.store.Medicines().Create(ctx, m); err != nil {
		return nil, fromStore(err, "Medicine")
	}
	return m, nil
}

func (s *MedicineService) owned(ctx context.Context, p *models.Principal, id uint) (*models.Medicine, error) {
	m, err := s.store.Medicines().Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Medicine")
	}
	if m.DoctorID != p.TenantID {
		return nil, apperr.NotFound("Medicine not found")
	}
	return m, nil
}

func (s *MedicineService) Edit(ctx context.Context, p *models.Principal, id uint, in EditMedicineInput) (*models.Medicine, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	m, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		field string
		o     models.Optional[string]
		dst   *string
	}{
		{"Name", in.Name, &m.Name},
		{"Strength", in.Strength, &m.Strength},
		{"Form", in.Form, &m.Form},
		{"Brand", in.Brand, &m.Brand},
	} {
		if err := applyRequired(f.field, f.o, f.dst, nil); err != nil {
			return nil, err
		}
	}
	if in.Category.Set {
		m.Category = strings.TrimSpace(in.Category.Value)
	}
	if err := s.unique(ctx, m); err != nil {
		return nil, err
	}
	if err := s.store.Medicines().Save(ctx, m); err != nil {
		return nil, fromStore(err, "Medicine")
	}
	return m, nil
}

func (s *MedicineService) Delete(ctx context.Context, p *models.Principal, id uint) error {
	if err := requireReceptionist(p); err != nil {
		return err
	}
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	return fromStore(s.store.Medicines().Delete(ctx, id), "Medicine")
}

// List is ordered by name; search matches the name.
func (s *MedicineService) List(ctx context.Context, p *models.Principal, search string) ([]models.Medicine, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	list, err := s.store.Medicines().List(ctx, p.TenantID, strings.TrimSpace(search))
	if err != nil {
		return nil, fromStore(err, "Medicines")
	}
	if list == nil {
		list = []models.Medicine{}
	}
	return list, nil
}
