package useradmin

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenVerifierImpl implements the TokenVerifier interface
type TokenVerifierImpl struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	provider   IdentityProvider
	logger     Logger
}

// NewTokenVerifier creates a new TokenVerifier instance
func NewTokenVerifier(cfg Config, provider IdentityProvider, logger Logger) TokenVerifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenVerifierImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		provider:   provider,
		logger:     logger,
	}
}

// Decode parses and validates a token string, returning structured claims.
// It checks the signature and registered claims only; the identity
// provider is not consulted.
func (v *TokenVerifierImpl) Decode(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if len(v.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			v.logger.Error("TokenVerifier encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	v.logger.Error("TokenVerifier could not decode or validate claims")
	return nil, ErrTokenMalformed
}

// Verify decodes the token and confronts the identity provider: the
// principal must exist, must not be disabled, and the token must have
// been issued after the provider's revocation watermark.
func (v *TokenVerifierImpl) Verify(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims, err := v.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	principal, err := v.provider.GetUser(ctx, claims.PrincipalID())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "identity provider lookup failed")
	}

	if principal.Disabled {
		return nil, ErrPrincipalDisabled
	}

	if principal.SessionRevokedSince(claims.IssuedTime()) {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}
