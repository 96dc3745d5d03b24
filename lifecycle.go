package useradmin

import (
	"context"
	"net/mail"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LifecycleManager orchestrates the ordered multi-store sequence that
// deletes or disables a single principal. Step classification follows a
// table: token revocation, tombstone write, and profile cleanup are
// best-effort (retried, logged, never abort), identity deletion is
// fatal.
type LifecycleManager struct {
	provider   IdentityProvider
	tombstones RevocationStore
	docs       DocumentStore
	logger     Logger
	retry      RetryPolicy
}

type LifecycleOption func(*LifecycleManager)

func NewLifecycleManager(provider IdentityProvider, tombstones RevocationStore, docs DocumentStore, opts ...LifecycleOption) *LifecycleManager {
	m := &LifecycleManager{
		provider:   provider,
		tombstones: tombstones,
		docs:       docs,
		logger:     defLogger{},
		retry:      DefaultRetryPolicy(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func WithLifecycleLogger(l Logger) LifecycleOption {
	return func(m *LifecycleManager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithRetryPolicy(p RetryPolicy) LifecycleOption {
	return func(m *LifecycleManager) {
		m.retry = p
	}
}

type lifecycleStep struct {
	name  string
	fatal bool
	run   func(context.Context) error
	done  func(*StepOutcomes)
}

// DeleteUser resolves ref (principal id or email) and runs the deletion
// sequence. The tombstone write always precedes identity deletion so an
// accepted delete stays observable to session probes even when later
// steps fail. A not-found ref aborts before any side effect.
func (m *LifecycleManager) DeleteUser(ctx context.Context, ref string, revokeTokens bool) (*OperationResult, error) {
	principal, err := m.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	deletedBy := "system"
	if actor, ok := ActorFromContext(ctx); ok && actor.Email != "" {
		deletedBy = actor.Email
	}

	result := &OperationResult{
		Ref:    ref,
		Status: StatusDeleted,
	}

	steps := []lifecycleStep{
		{
			name: "revoke-sessions",
			run: func(ctx context.Context) error {
				if !revokeTokens {
					return nil
				}
				return m.provider.RevokeSessions(ctx, principal.ID)
			},
			done: func(s *StepOutcomes) { s.TokensRevoked = revokeTokens },
		},
		{
			name: "write-tombstone",
			run: func(ctx context.Context) error {
				return m.tombstones.Upsert(ctx, &Tombstone{
					PrincipalID: principal.ID,
					Email:       principal.Email,
					DeletedAt:   time.Now(),
					DeletedBy:   deletedBy,
				})
			},
			done: func(s *StepOutcomes) { s.Tombstoned = true },
		},
		{
			name:  "delete-identity",
			fatal: true,
			run: func(ctx context.Context) error {
				return m.provider.DeleteUser(ctx, principal.ID)
			},
			done: func(s *StepOutcomes) { s.IdentityDeleted = true },
		},
		{
			name: "clean-profile",
			run: func(ctx context.Context) error {
				return m.docs.DeleteBatch(ctx, []string{principal.ID})
			},
			done: func(s *StepOutcomes) { s.ProfileCleaned = true },
		},
	}

	for _, step := range steps {
		var stepErr error
		if step.fatal {
			stepErr = step.run(ctx)
		} else {
			stepErr = m.retry.run(ctx, func() error { return step.run(ctx) })
		}

		if stepErr != nil {
			if step.fatal {
				m.logger.Error("user deletion failed",
					"step", step.name,
					"principal_id", principal.ID,
					"error", stepErr,
				)
				result.Status = StatusFailed
				result.Detail = stepErr.Error()
				return result, goerrors.Wrap(stepErr, goerrors.CategoryOperation, "identity record deletion failed").
					WithMetadata(map[string]any{"principal_id": principal.ID})
			}

			m.logger.Warn("deletion step failed, continuing",
				"step", step.name,
				"principal_id", principal.ID,
				"error", stepErr,
			)
			continue
		}

		step.done(&result.Steps)
	}

	m.logger.Info("user deleted",
		"principal_id", principal.ID,
		"email", principal.Email,
		"deleted_by", deletedBy,
	)

	return result, nil
}

// ToggleStatus flips the principal's disabled flag. Disabling also
// revokes outstanding sessions best-effort; re-enabling never restores
// them. No tombstone is written, the principal still exists.
func (m *LifecycleManager) ToggleStatus(ctx context.Context, id string, disabled bool) (*OperationResult, error) {
	principal, err := m.provider.SetDisabled(ctx, id, disabled)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "status update failed")
	}

	result := &OperationResult{
		Ref:    id,
		Status: StatusEnabled,
	}

	if disabled {
		result.Status = StatusDisabled

		err := m.retry.run(ctx, func() error {
			return m.provider.RevokeSessions(ctx, principal.ID)
		})
		if err != nil {
			m.logger.Warn("session revocation failed while disabling",
				"principal_id", principal.ID,
				"error", err,
			)
		} else {
			result.Steps.TokensRevoked = true
		}
	}

	m.logger.Info("user status toggled",
		"principal_id", principal.ID,
		"disabled", disabled,
	)

	return result, nil
}

func (m *LifecycleManager) resolve(ctx context.Context, ref string) (*Principal, error) {
	ref = strings.TrimSpace(ref)

	var principal *Principal
	var err error

	if isEmail(ref) {
		principal, err = m.provider.GetUserByEmail(ctx, ref)
	} else {
		principal, err = m.provider.GetUser(ctx, ref)
	}

	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, goerrors.Wrap(err, ErrPrincipalNotFound.Category, ErrPrincipalNotFound.Message).
				WithTextCode(ErrPrincipalNotFound.TextCode).
				WithMetadata(map[string]any{"ref": ref})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "identity provider lookup failed")
	}

	return principal, nil
}

func isEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}
