package useradmin

import (
	"time"

	"github.com/uptrace/bun"
)

// Principal is the identity provider's view of a user. This service
// never constructs one on its own, it only reads and mutates records
// through the IdentityProvider contract.
type Principal struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Disabled       bool       `json:"disabled"`
	CreationTime   *time.Time `json:"creation_time,omitempty"`
	LastSignInTime *time.Time `json:"last_sign_in_time,omitempty"`
	// TokensValidAfter is the provider-side session revocation
	// watermark: tokens issued before it are no longer valid
	TokensValidAfter *time.Time `json:"tokens_valid_after,omitempty"`
}

// SessionRevokedSince reports whether a token issued at the given time
// predates the principal's revocation watermark
func (p *Principal) SessionRevokedSince(issuedAt time.Time) bool {
	if p == nil || p.TokensValidAfter == nil {
		return false
	}
	return issuedAt.Before(*p.TokensValidAfter)
}

// Tombstone is the durable marker that a principal was administratively
// deleted. Once written it is never removed; a later upsert for the same
// principal refreshes the metadata only.
type Tombstone struct {
	bun.BaseModel `bun:"table:tombstones,alias:tmb"`

	PrincipalID string    `bun:"principal_id,pk" json:"principal_id"`
	Email       string    `bun:"email,notnull" json:"email"`
	DeletedAt   time.Time `bun:"deleted_at,notnull" json:"deleted_at"`
	DeletedBy   string    `bun:"deleted_by,notnull" json:"deleted_by"`
}

// ProfileDocument is the per-principal application document this service
// cleans up on deletion. It is never a source of truth for identity.
type ProfileDocument struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`

	PrincipalID string         `bun:"principal_id,pk" json:"principal_id"`
	Data        map[string]any `bun:"data,type:jsonb" json:"data"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// OperationStatus is the outcome of a lifecycle operation
type OperationStatus = string

const (
	// StatusDeleted means the identity record was removed from the provider
	StatusDeleted OperationStatus = "deleted"
	// StatusFailed means a fatal step of the operation failed
	StatusFailed OperationStatus = "failed"
	// StatusDisabled means the principal was disabled
	StatusDisabled OperationStatus = "disabled"
	// StatusEnabled means the principal was re-enabled
	StatusEnabled OperationStatus = "enabled"
)

// StepOutcomes records which steps of a deletion sequence succeeded
type StepOutcomes struct {
	TokensRevoked   bool `json:"tokens_revoked"`
	Tombstoned      bool `json:"tombstoned"`
	IdentityDeleted bool `json:"identity_deleted"`
	ProfileCleaned  bool `json:"profile_cleaned"`
}

// OperationResult is the per-target outcome of a lifecycle operation
type OperationResult struct {
	Ref    string          `json:"ref"`
	Status OperationStatus `json:"status"`
	Detail string          `json:"detail,omitempty"`
	Steps  StepOutcomes    `json:"steps"`
}

// BulkResult aggregates per-item results of a bulk operation. The counts
// are always derived from the result list, never stored separately.
type BulkResult struct {
	Results []OperationResult `json:"results"`
}

// SuccessCount returns how many items completed with a deleted status
func (b *BulkResult) SuccessCount() int {
	n := 0
	for _, r := range b.Results {
		if r.Status != StatusFailed {
			n++
		}
	}
	return n
}

// FailureCount returns how many items reported a failed status
func (b *BulkResult) FailureCount() int {
	return len(b.Results) - b.SuccessCount()
}
