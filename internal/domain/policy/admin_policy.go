// Package policy holds authorization rules that are configured, not hard-coded.
package policy

import (
	"strings"

	"storefront/internal/domain/entity"
)

// AdminPolicy decides which accounts hold the admin role.
// It is built once from configuration and injected where roles are assigned.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy builds a policy from an email allow-list. Matching ignores case
// and surrounding whitespace.
func NewAdminPolicy(emails []string) *AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		normalized := normalizeEmail(email)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}

	return &AdminPolicy{emails: set}
}

// IsAdmin reports whether email is on the allow-list.
func (p *AdminPolicy) IsAdmin(email string) bool {
	if p == nil {
		return false
	}
	_, ok := p.emails[normalizeEmail(email)]

	return ok
}

// RolesFor returns the roles granted to a user.
func (p *AdminPolicy) RolesFor(user *entity.User) entity.Roles {
	roles := entity.Roles{entity.RoleCustomer}
	if user != nil && p.IsAdmin(user.Email) {
		roles = append(roles, entity.RoleAdmin)
	}

	return roles
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
