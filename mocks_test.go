package useradmin_test

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	useradmin "github.com/stillwater-app/go-useradmin"
)

// MockIdentityProvider implements useradmin.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, id string) (*useradmin.Principal, error) {
	args := m.Called(ctx, id)
	var p *useradmin.Principal
	if v := args.Get(0); v != nil {
		p = v.(*useradmin.Principal)
	}
	return p, args.Error(1)
}

func (m *MockIdentityProvider) GetUserByEmail(ctx context.Context, email string) (*useradmin.Principal, error) {
	args := m.Called(ctx, email)
	var p *useradmin.Principal
	if v := args.Get(0); v != nil {
		p = v.(*useradmin.Principal)
	}
	return p, args.Error(1)
}

func (m *MockIdentityProvider) ListUsers(ctx context.Context, limit, offset int) ([]*useradmin.Principal, int, error) {
	args := m.Called(ctx, limit, offset)
	var list []*useradmin.Principal
	if v := args.Get(0); v != nil {
		list = v.([]*useradmin.Principal)
	}
	return list, args.Int(1), args.Error(2)
}

func (m *MockIdentityProvider) SetDisabled(ctx context.Context, id string, disabled bool) (*useradmin.Principal, error) {
	args := m.Called(ctx, id, disabled)
	var p *useradmin.Principal
	if v := args.Get(0); v != nil {
		p = v.(*useradmin.Principal)
	}
	return p, args.Error(1)
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIdentityProvider) RevokeSessions(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRevocationStore implements useradmin.RevocationStore
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Upsert(ctx context.Context, record *useradmin.Tombstone) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRevocationStore) Get(ctx context.Context, principalID string) (*useradmin.Tombstone, error) {
	args := m.Called(ctx, principalID)
	var t *useradmin.Tombstone
	if v := args.Get(0); v != nil {
		t = v.(*useradmin.Tombstone)
	}
	return t, args.Error(1)
}

// MockDocumentStore implements useradmin.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Get(ctx context.Context, principalID string) (*useradmin.ProfileDocument, error) {
	args := m.Called(ctx, principalID)
	var d *useradmin.ProfileDocument
	if v := args.Get(0); v != nil {
		d = v.(*useradmin.ProfileDocument)
	}
	return d, args.Error(1)
}

func (m *MockDocumentStore) Set(ctx context.Context, principalID string, data map[string]any) error {
	args := m.Called(ctx, principalID, data)
	return args.Error(0)
}

func (m *MockDocumentStore) Delete(ctx context.Context, principalID string) error {
	args := m.Called(ctx, principalID)
	return args.Error(0)
}

func (m *MockDocumentStore) DeleteBatch(ctx context.Context, principalIDs []string) error {
	args := m.Called(ctx, principalIDs)
	return args.Error(0)
}

// MockTokenVerifier implements useradmin.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Decode(rawToken string) (*useradmin.TokenClaims, error) {
	args := m.Called(rawToken)
	var c *useradmin.TokenClaims
	if v := args.Get(0); v != nil {
		c = v.(*useradmin.TokenClaims)
	}
	return c, args.Error(1)
}

func (m *MockTokenVerifier) Verify(ctx context.Context, rawToken string) (*useradmin.TokenClaims, error) {
	args := m.Called(ctx, rawToken)
	var c *useradmin.TokenClaims
	if v := args.Get(0); v != nil {
		c = v.(*useradmin.TokenClaims)
	}
	return c, args.Error(1)
}

// noopLogger keeps component logging out of test output
type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

const testSigningKey = "test-signing-key"

func newTestConfig() *useradmin.BaseConfig {
	return &useradmin.BaseConfig{
		Auth: &useradmin.AuthConfig{
			SigningKey:  testSigningKey,
			Issuer:      "test-issuer",
			Audience:    []string{"test-audience"},
			AdminEmails: []string{"admin@example.com"},
		},
	}
}

type testTokenOpts struct {
	subject  string
	email    string
	issuedAt time.Time
	expires  time.Time
	key      string
}

func signTestToken(opts testTokenOpts) string {
	if opts.key == "" {
		opts.key = testSigningKey
	}
	if opts.issuedAt.IsZero() {
		opts.issuedAt = time.Now().Add(-time.Minute)
	}
	if opts.expires.IsZero() {
		opts.expires = time.Now().Add(time.Hour)
	}

	claims := &useradmin.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opts.subject,
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(opts.issuedAt),
			ExpiresAt: jwt.NewNumericDate(opts.expires),
		},
		Email: opts.email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(opts.key))
	if err != nil {
		panic(err)
	}
	return signed
}
