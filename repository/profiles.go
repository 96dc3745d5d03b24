package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	useradmin "github.com/stillwater-app/go-useradmin"
)

// ProfileRepository implements useradmin.DocumentStore using Bun.
type ProfileRepository struct {
	db *bun.DB
}

var _ useradmin.DocumentStore = (*ProfileRepository)(nil)

// NewProfileRepository creates a new repository.
func NewProfileRepository(db *bun.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get implements useradmin.DocumentStore.
func (r *ProfileRepository) Get(ctx context.Context, principalID string) (*useradmin.ProfileDocument, error) {
	var doc useradmin.ProfileDocument
	err := r.db.NewSelect().
		Model(&doc).
		Where("principal_id = ?", principalID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, useradmin.ErrProfileNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load profile document").
			WithMetadata(map[string]any{
				"principal_id": principalID,
			})
	}

	return &doc, nil
}

// Set implements useradmin.DocumentStore.
func (r *ProfileRepository) Set(ctx context.Context, principalID string, data map[string]any) error {
	doc := &useradmin.ProfileDocument{
		PrincipalID: principalID,
		Data:        data,
		UpdatedAt:   time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(doc).
		On("CONFLICT (principal_id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to write profile document").
			WithMetadata(map[string]any{
				"principal_id": principalID,
			})
	}

	return nil
}

// Delete implements useradmin.DocumentStore.
func (r *ProfileRepository) Delete(ctx context.Context, principalID string) error {
	_, err := r.db.NewDelete().
		Model((*useradmin.ProfileDocument)(nil)).
		Where("principal_id = ?", principalID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete profile document").
			WithMetadata(map[string]any{
				"principal_id": principalID,
			})
	}
	return nil
}

// DeleteBatch implements useradmin.DocumentStore. All documents go in
// one transaction so a bulk cleanup never half-applies.
func (r *ProfileRepository) DeleteBatch(ctx context.Context, principalIDs []string) error {
	if len(principalIDs) == 0 {
		return nil
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*useradmin.ProfileDocument)(nil)).
			Where("principal_id IN (?)", bun.In(principalIDs)).
			Exec(ctx)
		return err
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete profile documents").
			WithMetadata(map[string]any{
				"count": len(principalIDs),
			})
	}

	return nil
}
