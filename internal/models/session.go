package models

import "agency-workers/internal/common/errors"

const (
	PrivilegeInvoiceCreate = "invoice.create"
	PrivilegeInvoiceUpdate = "invoice.update"
	PrivilegeRemitCreate   = "remit.create"
	PrivilegeRemitUpdate   = "remit.update"
	PrivilegeStudentUpdate = "student.update"
)

const RoleAdmin = "admin"

// SessionContext is the acting user, passed explicitly in job variables.
type SessionContext struct {
	UserID     string   `json:"userId"`
	Name       string   `json:"name,omitempty"`
	Role       string   `json:"role"`
	Privileges []string `json:"privileges,omitempty"`
}

func (s SessionContext) IsAdmin() bool { return s.Role == RoleAdmin }

// Can reports whether the user holds privilege. Admins hold every privilege.
func (s SessionContext) Can(privilege string) bool {
	if s.IsAdmin() {
		return true
	}
	for _, p := range s.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// Require returns PERMISSION_DENIED unless the user holds privilege.
func (s SessionContext) Require(privilege string) error {
	if s.Can(privilege) {
		return nil
	}
	return errors.NewPermissionDeniedError(s.UserID, privilege)
}
