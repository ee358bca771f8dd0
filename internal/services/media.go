package services

import (
	"context"
	"strings"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/models"
)

// Image is a stored blob with its content type. Data is base64 in JSON.
type Image struct {
	Data        []byte  `json:"data"`
	ContentType *string `json:"contentType"`
}

func decodeImage(encoded string) (string, []byte, error) {
	contentType, data, err := decodeDataURL(encoded)
	if err != nil {
		return "", nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, apperr.Validation("Only image files are allowed")
	}
	return contentType, data, nil
}

// SetPaymentQR stores the clinic's payment QR code. Any member of the clinic
// may replace it.
func (s *DoctorService) SetPaymentQR(ctx context.Context, p *models.Principal, encoded string) (*Image, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	contentType, data, err := decodeImage(encoded)
	if err != nil {
		return nil, err
	}
	d, err := s.tenantDoctor(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	d.PaymentQr, d.QrContentType = data, &contentType
	if err := s.store.Doctors().Save(ctx, d); err != nil {
		return nil, fromStore(err, "Doctor")
	}
	return &Image{Data: d.PaymentQr, ContentType: d.QrContentType}, nil
}

func (s *DoctorService) PaymentQR(ctx context.Context, p *models.Principal) (*Image, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	d, err := s.tenantDoctor(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	return &Image{Data: d.PaymentQr, ContentType: d.QrContentType}, nil
}

func (s *DoctorService) SetSignature(ctx context.Context, p *models.Principal, encoded string) (*Image, error) {
	d, err := s.self(ctx, p)
	if err != nil {
		return nil, err
	}
	contentType, data, err := decodeImage(encoded)
	if err != nil {
		return nil, err
	}
	d.Signature, d.SignatureContentType = data, &contentType
	if err := s.store.Doctors().Save(ctx, d); err != nil {
		return nil, fromStore(err, "Doctor")
	}
	return &Image{Data: d.Signature, ContentType: d.SignatureContentType}, nil
}

func (s *DoctorService) Signature(ctx context.Context, p *models.Principal) (*Image, error) {
	d, err := s.self(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Image{Data: d.Signature, ContentType: d.SignatureContentType}, nil
}

// ChangeProfile replaces the caller's own profile picture, whether the
// caller is a doctor or a receptionist.
func (s *AuthService) ChangeProfile(ctx context.Context, p *models.Principal, encoded string) (*Image, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	contentType, data, err := decodeImage(encoded)
	if err != nil {
		return nil, err
	}

	switch {
	case p.IsDoctor():
		d, err := s.tenantDoctor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		d.Profile, d.ProfileContentType = data, &contentType
		if err := s.store.Doctors().Save(ctx, d); err != nil {
			return nil, fromStore(err, "Doctor")
		}
	case p.IsReceptionist():
		rec, err := s.store.Receptionists().Get(ctx, p.ID)
		if err != nil {
			return nil, fromStore(err, "Receptionist")
		}
		if rec.DoctorID != p.TenantID {
			return nil, apperr.NotFound("Receptionist not found")
		}
		rec.Profile, rec.ProfileContentType = data, &contentType
		if err := s.store.Receptionists().Save(ctx, rec); err != nil {
			return nil, fromStore(err, "Receptionist")
		}
	default:
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	return &Image{Data: data, ContentType: &contentType}, nil
}
