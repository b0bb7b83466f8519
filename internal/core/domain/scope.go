package domain

import "github.com/google/uuid"

// Scope is the ownership boundary every query and mutation is restricted
// to: either a user's personal items (OrganizationID nil) or an
// organization's shared items. The two are mutually exclusive — a personal
// scope never sees org rows and vice versa.
type Scope struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
}

// PersonalScope returns the scope for a user acting outside any organization.
func PersonalScope(userID uuid.UUID) Scope {
	return Scope{UserID: userID}
}

// OrgScope returns the scope for a user acting inside an organization.
func OrgScope(userID, orgID uuid.UUID) Scope {
	return Scope{UserID: userID, OrganizationID: &orgID}
}

// IsPersonal reports whether the scope is the user's personal context.
func (s Scope) IsPersonal() bool {
	return s.OrganizationID == nil
}

// OwnerKey returns the cache-key segment identifying the scope owner,
// e.g. "org:<id>" or "user:<id>".
func (s Scope) OwnerKey() string {
	if s.OrganizationID != nil {
		return "org:" + s.OrganizationID.String()
	}
	return "user:" + s.UserID.String()
}
