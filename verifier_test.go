package useradmin_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	useradmin "github.com/stillwater-app/go-useradmin"
)

func TestTokenVerifierDecode(t *testing.T) {
	provider := &MockIdentityProvider{}
	verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})

	t.Run("decodes a valid token", func(t *testing.T) {
		raw := signTestToken(testTokenOpts{
			subject: "user-123",
			email:   "user@example.com",
		})

		claims, err := verifier.Decode(raw)

		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.PrincipalID())
		assert.Equal(t, "user@example.com", claims.EmailAddress())
		assert.False(t, claims.IssuedTime().IsZero())
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		raw := signTestToken(testTokenOpts{
			subject:  "user-123",
			issuedAt: time.Now().Add(-2 * time.Hour),
			expires:  time.Now().Add(-time.Hour),
		})

		_, err := verifier.Decode(raw)

		assert.ErrorIs(t, err, useradmin.ErrTokenExpired)
	})

	t.Run("rejects a token signed with the wrong key", func(t *testing.T) {
		raw := signTestToken(testTokenOpts{
			subject: "user-123",
			key:     "some-other-key",
		})

		_, err := verifier.Decode(raw)

		var rich *goerrors.Error
		assert.ErrorAs(t, err, &rich)
		assert.Equal(t, goerrors.CategoryAuth, rich.Category)
		assert.Equal(t, "TOKEN_MALFORMED", rich.TextCode)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := verifier.Decode("not-a-token")

		var rich *goerrors.Error
		assert.ErrorAs(t, err, &rich)
		assert.Equal(t, "TOKEN_MALFORMED", rich.TextCode)
	})

	t.Run("decode never consults the provider", func(t *testing.T) {
		raw := signTestToken(testTokenOpts{subject: "user-123"})

		_, err := verifier.Decode(raw)

		assert.NoError(t, err)
		provider.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})
}

func TestTokenVerifierVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a live principal", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("GetUser", mock.Anything, "user-123").
			Return(&useradmin.Principal{ID: "user-123", Email: "user@example.com"}, nil)

		verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})
		raw := signTestToken(testTokenOpts{subject: "user-123", email: "user@example.com"})

		claims, err := verifier.Verify(ctx, raw)

		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.PrincipalID())
		provider.AssertExpectations(t)
	})

	t.Run("rejects a deleted principal", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("GetUser", mock.Anything, "user-gone").
			Return(nil, useradmin.ErrPrincipalNotFound)

		verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})
		raw := signTestToken(testTokenOpts{subject: "user-gone"})

		_, err := verifier.Verify(ctx, raw)

		assert.ErrorIs(t, err, useradmin.ErrPrincipalNotFound)
	})

	t.Run("rejects a disabled principal", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("GetUser", mock.Anything, "user-123").
			Return(&useradmin.Principal{ID: "user-123", Disabled: true}, nil)

		verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})
		raw := signTestToken(testTokenOpts{subject: "user-123"})

		_, err := verifier.Verify(ctx, raw)

		assert.ErrorIs(t, err, useradmin.ErrPrincipalDisabled)
	})

	t.Run("rejects a token issued before the revocation watermark", func(t *testing.T) {
		watermark := time.Now()
		provider := &MockIdentityProvider{}
		provider.On("GetUser", mock.Anything, "user-123").
			Return(&useradmin.Principal{ID: "user-123", TokensValidAfter: &watermark}, nil)

		verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})
		raw := signTestToken(testTokenOpts{
			subject:  "user-123",
			issuedAt: watermark.Add(-time.Minute),
		})

		_, err := verifier.Verify(ctx, raw)

		assert.ErrorIs(t, err, useradmin.ErrTokenRevoked)
	})

	t.Run("accepts a token issued after the revocation watermark", func(t *testing.T) {
		watermark := time.Now().Add(-time.Hour)
		provider := &MockIdentityProvider{}
		provider.On("GetUser", mock.Anything, "user-123").
			Return(&useradmin.Principal{ID: "user-123", TokensValidAfter: &watermark}, nil)

		verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})
		raw := signTestToken(testTokenOpts{
			subject:  "user-123",
			issuedAt: watermark.Add(time.Minute),
		})

		_, err := verifier.Verify(ctx, raw)

		assert.NoError(t, err)
	})

	t.Run("wraps provider infrastructure failures", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("GetUser", mock.Anything, "user-123").
			Return(nil, goerrors.New("backend unavailable", goerrors.CategoryInternal))

		verifier := useradmin.NewTokenVerifier(newTestConfig(), provider, noopLogger{})
		raw := signTestToken(testTokenOpts{subject: "user-123"})

		_, err := verifier.Verify(ctx, raw)

		var rich *goerrors.Error
		assert.ErrorAs(t, err, &rich)
		assert.Equal(t, goerrors.CategoryOperation, rich.Category)
	})
}
