// Package tenancy maps users to organizations by email domain and handles
// the admin-only directory changes.
package tenancy

import (
	"strings"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/pkg/validator"
	"grievance/internal/platform/models"
)

var (
	ErrNoDomain        = apperrors.Validation("email address has no domain")
	ErrNoOrganizations = apperrors.NotFound("no organizations are configured")
	ErrNoMatch         = apperrors.NotFound("no organization matches your email domain")
)

// ResolveOrg returns the id of the first organization, in the given order,
// whose domain equals the email's domain. Subdomains do not match.
func ResolveOrg(orgs []*models.Organization, email string) (string, error) {
	domain, err := validator.EmailDomain(email)
	if err != nil {
		return "", ErrNoDomain
	}
	if len(orgs) == 0 {
		return "", ErrNoOrganizations
	}
	for _, org := range orgs {
		if org != nil && strings.EqualFold(org.EmailDomain, domain) {
			return org.ID, nil
		}
	}
	return "", ErrNoMatch
}
