package local

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	useradmin "github.com/stillwater-app/go-useradmin"
)

// UserModel is the Bun model for principal records.
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID               string     `bun:"id,pk"`
	Email            string     `bun:"email,notnull"`
	Disabled         bool       `bun:"disabled"`
	CreationTime     *time.Time `bun:"creation_time"`
	LastSignInTime   *time.Time `bun:"last_sign_in_time"`
	TokensValidAfter *time.Time `bun:"tokens_valid_after"`
}

// IdentityProvider implements useradmin.IdentityProvider using Bun.
type IdentityProvider struct {
	db *bun.DB
}

var _ useradmin.IdentityProvider = (*IdentityProvider)(nil)

// NewIdentityProvider creates a new SQL backed provider.
func NewIdentityProvider(db *bun.DB) *IdentityProvider {
	return &IdentityProvider{db: db}
}

// CreateUser registers a new principal. Mostly useful for seeding and
// tests; the admin surface itself never creates identities.
func (p *IdentityProvider) CreateUser(ctx context.Context, email string) (*useradmin.Principal, error) {
	now := time.Now()
	model := &UserModel{
		ID:           uuid.New().String(),
		Email:        email,
		CreationTime: &now,
	}

	if _, err := p.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create user").
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return p.toPrincipal(model), nil
}

// GetUser implements useradmin.IdentityProvider.
func (p *IdentityProvider) GetUser(ctx context.Context, id string) (*useradmin.Principal, error) {
	var model UserModel
	err := p.db.NewSelect().
		Model(&model).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, p.wrapLookupErr(err, "id", id)
	}

	return p.toPrincipal(&model), nil
}

// GetUserByEmail implements useradmin.IdentityProvider.
func (p *IdentityProvider) GetUserByEmail(ctx context.Context, email string) (*useradmin.Principal, error) {
	var model UserModel
	err := p.db.NewSelect().
		Model(&model).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, p.wrapLookupErr(err, "email", email)
	}

	return p.toPrincipal(&model), nil
}

// ListUsers implements useradmin.IdentityProvider.
func (p *IdentityProvider) ListUsers(ctx context.Context, limit, offset int) ([]*useradmin.Principal, int, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []UserModel
	total, err := p.db.NewSelect().
		Model(&models).
		Order("creation_time ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list users")
	}

	principals := make([]*useradmin.Principal, len(models))
	for i := range models {
		principals[i] = p.toPrincipal(&models[i])
	}

	return principals, total, nil
}

// SetDisabled implements useradmin.IdentityProvider.
func (p *IdentityProvider) SetDisabled(ctx context.Context, id string, disabled bool) (*useradmin.Principal, error) {
	res, err := p.db.NewUpdate().
		Model((*UserModel)(nil)).
		Set("disabled = ?", disabled).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update user status").
			WithMetadata(map[string]any{
				"id": id,
			})
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return nil, useradmin.ErrPrincipalNotFound
	}

	return p.GetUser(ctx, id)
}

// DeleteUser implements useradmin.IdentityProvider. The delete is hard:
// the row is gone, and only the tombstone remembers the principal.
func (p *IdentityProvider) DeleteUser(ctx context.Context, id string) error {
	res, err := p.db.NewDelete().
		Model((*UserModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete user").
			WithMetadata(map[string]any{
				"id": id,
			})
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return useradmin.ErrPrincipalNotFound
	}

	return nil
}

// RevokeSessions implements useradmin.IdentityProvider. It bumps the
// revocation watermark so every token issued before now stops
// verifying.
func (p *IdentityProvider) RevokeSessions(ctx context.Context, id string) error {
	now := time.Now()
	res, err := p.db.NewUpdate().
		Model((*UserModel)(nil)).
		Set("tokens_valid_after = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to revoke sessions").
			WithMetadata(map[string]any{
				"id": id,
			})
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return useradmin.ErrPrincipalNotFound
	}

	return nil
}

func (p *IdentityProvider) wrapLookupErr(err error, key, value string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return useradmin.ErrPrincipalNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load user").
		WithMetadata(map[string]any{
			key: value,
		})
}

func (p *IdentityProvider) toPrincipal(m *UserModel) *useradmin.Principal {
	return &useradmin.Principal{
		ID:               m.ID,
		Email:            m.Email,
		Disabled:         m.Disabled,
		CreationTime:     m.CreationTime,
		LastSignInTime:   m.LastSignInTime,
		TokensValidAfter: m.TokensValidAfter,
	}
}
