package useradmin

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds service options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetIssuer() string
	GetAudience() []string
	GetAuthScheme() string
	GetAdminEmails() []string
	GetBulkWorkers() int
	GetRetryMaxAttempts() int
	GetRetryInitialInterval() time.Duration
}

// TokenVerifier validates bearer credentials and resolves the caller
type TokenVerifier interface {
	// Decode checks the token signature and registered claims only
	Decode(rawToken string) (*TokenClaims, error)
	// Verify decodes the token and confirms the principal can still
	// authenticate: it exists, is not disabled, and the token was
	// issued after the provider's revocation watermark
	Verify(ctx context.Context, rawToken string) (*TokenClaims, error)
}

// IdentityProvider is the contract this service requires from the
// credential backend. The provider owns principal records and their
// sessions; this service only reads and mutates through it.
type IdentityProvider interface {
	GetUser(ctx context.Context, id string) (*Principal, error)
	GetUserByEmail(ctx context.Context, email string) (*Principal, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*Principal, int, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*Principal, error)
	DeleteUser(ctx context.Context, id string) error
	RevokeSessions(ctx context.Context, id string) error
}

// DocumentStore holds mutable per-principal profile documents
type DocumentStore interface {
	Get(ctx context.Context, principalID string) (*ProfileDocument, error)
	Set(ctx context.Context, principalID string, data map[string]any) error
	Delete(ctx context.Context, principalID string) error
	// DeleteBatch removes every given document in a single atomic commit
	DeleteBatch(ctx context.Context, principalIDs []string) error
}

// RevocationStore manages tombstone records. Tombstones are permanent:
// there is no delete operation, and Upsert never removes a record.
type RevocationStore interface {
	Upsert(ctx context.Context, record *Tombstone) error
	Get(ctx context.Context, principalID string) (*Tombstone, error)
}

// Pinger is implemented by stores that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ADMIN "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ADMIN "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ADMIN "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ADMIN "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
