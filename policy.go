package useradmin

import (
	"strings"
)

// AdminPolicy decides whether a verified principal may perform
// administrative operations. The allow-list is injected at construction
// so per-environment policy never depends on ambient global state.
type AdminPolicy struct {
	allowed map[string]struct{}
}

// NewAdminPolicy builds a policy from an allow-list of admin emails.
// Matching is case-insensitive.
func NewAdminPolicy(emails []string) *AdminPolicy {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		allowed[email] = struct{}{}
	}
	return &AdminPolicy{allowed: allowed}
}

// Authorize returns ErrNotAdmin when the email is not on the allow-list
func (p *AdminPolicy) Authorize(email string) error {
	if _, ok := p.allowed[strings.ToLower(strings.TrimSpace(email))]; !ok {
		return ErrNotAdmin
	}
	return nil
}

// Size returns how many emails the allow-list holds
func (p *AdminPolicy) Size() int {
	return len(p.allowed)
}
