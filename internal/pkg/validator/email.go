package validator

import (
	"errors"
	"strings"
)

var (
	ErrNoDomain      = errors.New("email address has no domain")
	ErrInvalidDomain = errors.New("invalid email domain")
)

// EmailDomain returns the lowercased part after the last '@'. It does not
// check deliverability.
func EmailDomain(email string) (string, error) {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "", ErrNoDomain
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if domain == "" {
		return "", ErrNoDomain
	}
	return domain, nil
}

// NormalizeDomain trims and lowercases a domain and rejects values that
// cannot be a hostname.
func NormalizeDomain(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" || len(domain) > 253 {
		return "", ErrInvalidDomain
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", ErrInvalidDomain
	}

	for _, label := range strings.Split(domain, ".") {
		if label == "" || len(label) > 63 {
			return "", ErrInvalidDomain
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return "", ErrInvalidDomain
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
				return "", ErrInvalidDomain
			}
		}
	}

	return domain, nil
}
