package entity

import "slices"

// Role is an authorization grant carried in the access token.
type Role string

const (
	// RoleCustomer is held by every account.
	RoleCustomer Role = "customer"
	// RoleAdmin unlocks catalog, order and contact management.
	RoleAdmin Role = "admin"
)

var knownRoles = []Role{RoleCustomer, RoleAdmin}

func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the roles the storefront grants.
func (r Role) IsValid() bool {
	return slices.Contains(knownRoles, r)
}

// Roles is the set of grants of one principal, customer first.
type Roles []Role

func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings renders the roles as token claims.
func (rs Roles) ToStrings() []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.String())
	}

	return out
}

// RolesFromStrings reads token claims back, dropping names the storefront does not grant.
func RolesFromStrings(claims []string) Roles {
	var roles Roles
	for _, claim := range claims {
		if role := Role(claim); role.IsValid() && !roles.Contains(role) {
			roles = append(roles, role)
		}
	}

	return roles
}
