package useradmin

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the decoded payload of a bearer credential
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// PrincipalID returns the principal the token was issued to
func (c *TokenClaims) PrincipalID() string {
	return c.RegisteredClaims.Subject
}

// EmailAddress returns the email claim
func (c *TokenClaims) EmailAddress() string {
	return c.Email
}

// IssuedTime returns the issue time, zero when the claim is absent
func (c *TokenClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time, zero when the claim is absent
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
