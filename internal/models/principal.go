package models

const (
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
)

// Principal is the authenticated caller. TenantID is the id of the doctor
// whose clinic the caller acts for; for doctors it equals ID.
type Principal struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID uint   `json:"hospitalId"`
}

func (p *Principal) IsDoctor() bool       { return p != nil && p.Role == RoleDoctor }
func (p *Principal) IsReceptionist() bool { return p != nil && p.Role == RoleReceptionist }
