package useradmin

import (
	"context"
	"strings"

	"github.com/goliatone/go-router"
)

// AuthGate composes token verification and admin policy into
// request-level admission control. Every administrative endpoint runs
// behind RequireAdmin; the session probe runs behind
// RequireAuthenticated, which skips the allow-list check.
type AuthGate struct {
	verifier     TokenVerifier
	policy       *AdminPolicy
	authScheme   string
	logger       Logger
	ErrorHandler router.ErrorHandler
}

type AuthGateOption func(*AuthGate)

func NewAuthGate(verifier TokenVerifier, policy *AdminPolicy, opts ...AuthGateOption) *AuthGate {
	g := &AuthGate{
		verifier:   verifier,
		policy:     policy,
		authScheme: "Bearer",
		logger:     defLogger{},
	}
	g.ErrorHandler = g.defaultErrorHandler

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func WithGateLogger(l Logger) AuthGateOption {
	return func(g *AuthGate) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithGateAuthScheme(scheme string) AuthGateOption {
	return func(g *AuthGate) {
		if scheme != "" {
			g.authScheme = scheme
		}
	}
}

func WithGateErrorHandler(h router.ErrorHandler) AuthGateOption {
	return func(g *AuthGate) {
		if h != nil {
			g.ErrorHandler = h
		}
	}
}

// Admit runs the admission sequence against a raw Authorization header
// value: extract the bearer token, verify it, and (for admin requests)
// check the allow-list. No provider call happens when the header is
// empty or malformed.
func (g *AuthGate) Admit(ctx context.Context, authorization string, requireAdmin bool) (*Actor, error) {
	raw, err := g.bearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	if requireAdmin {
		if err := g.policy.Authorize(claims.EmailAddress()); err != nil {
			g.logger.Warn("admin access denied",
				"principal_id", claims.PrincipalID(),
				"email", claims.EmailAddress(),
			)
			return nil, err
		}
	}

	return &Actor{
		PrincipalID: claims.PrincipalID(),
		Email:       claims.EmailAddress(),
	}, nil
}

// RequireAdmin gates administrative endpoints
func (g *AuthGate) RequireAdmin() router.MiddlewareFunc {
	return g.middleware(true)
}

// RequireAuthenticated gates endpoints open to any authenticated caller
func (g *AuthGate) RequireAuthenticated() router.MiddlewareFunc {
	return g.middleware(false)
}

func (g *AuthGate) middleware(requireAdmin bool) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			header := c.GetString(router.HeaderAuthorization, "")

			actor, err := g.Admit(c.Context(), header, requireAdmin)
			if err != nil {
				return g.ErrorHandler(c, err)
			}

			c.Locals(ActorContextKey, actor)
			c.SetContext(WithActor(c.Context(), actor))

			return next(c)
		}
	}
}

func (g *AuthGate) bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	l := len(g.authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], g.authScheme) {
		token := strings.TrimSpace(header[l:])
		if token != "" {
			return token, nil
		}
	}

	return "", ErrMissingToken
}

func (g *AuthGate) defaultErrorHandler(c router.Context, err error) error {
	return respondError(c, err)
}
