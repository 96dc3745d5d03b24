package useradmin

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// SessionCheck answers "is my session still valid?". A client receiving
// ShouldSignOut must clear its local session state; the service cannot
// recall an already-issued token directly.
type SessionCheck struct {
	Valid         bool   `json:"valid"`
	ShouldSignOut bool   `json:"should_sign_out,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// RevocationProbe lets any authenticated caller discover that its
// session must end: the token no longer verifies, the principal has a
// tombstone, or the identity record is gone.
type RevocationProbe struct {
	verifier   TokenVerifier
	tombstones RevocationStore
	provider   IdentityProvider
	logger     Logger
}

type ProbeOption func(*RevocationProbe)

func NewRevocationProbe(verifier TokenVerifier, tombstones RevocationStore, provider IdentityProvider, opts ...ProbeOption) *RevocationProbe {
	p := &RevocationProbe{
		verifier:   verifier,
		tombstones: tombstones,
		provider:   provider,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func WithProbeLogger(l Logger) ProbeOption {
	return func(p *RevocationProbe) {
		if l != nil {
			p.logger = l
		}
	}
}

// CheckSession evaluates a bearer token. The tombstone lookup runs
// before the provider existence check so an accepted deletion is
// reported as USER_DELETED even when the provider-side record removal
// failed (tombstone-first ordering). Only an unexpected provider
// failure surfaces as an error; every other outcome is a definite
// answer.
func (p *RevocationProbe) CheckSession(ctx context.Context, rawToken string) (*SessionCheck, error) {
	claims, err := p.verifier.Decode(rawToken)
	if err != nil {
		return &SessionCheck{
			Valid:         false,
			ShouldSignOut: true,
			Reason:        TextCodeTokenRevoked,
		}, nil
	}

	principalID := claims.PrincipalID()

	tombstone, err := p.tombstones.Get(ctx, principalID)
	if err != nil && !goerrors.IsNotFound(err) {
		// known availability gap: fall through to the provider check
		p.logger.Warn("tombstone lookup failed during session check",
			"principal_id", principalID,
			"error", err,
		)
	}
	if tombstone != nil {
		return &SessionCheck{
			Valid:         false,
			ShouldSignOut: true,
			Reason:        TextCodeUserDeleted,
		}, nil
	}

	principal, err := p.provider.GetUser(ctx, principalID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return &SessionCheck{
				Valid:         false,
				ShouldSignOut: true,
				Reason:        TextCodeUserNotFound,
			}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "identity provider lookup failed during session check")
	}

	if principal.Disabled || principal.SessionRevokedSince(claims.IssuedTime()) {
		return &SessionCheck{
			Valid:         false,
			ShouldSignOut: true,
			Reason:        TextCodeTokenRevoked,
		}, nil
	}

	return &SessionCheck{Valid: true}, nil
}
