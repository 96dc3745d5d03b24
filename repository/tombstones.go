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

// TombstoneRepository implements useradmin.RevocationStore using Bun.
// Tombstones are append-refresh only: a conflicting upsert updates the
// deletion metadata, and nothing ever removes a row.
type TombstoneRepository struct {
	db *bun.DB
}

var _ useradmin.RevocationStore = (*TombstoneRepository)(nil)
var _ useradmin.Pinger = (*TombstoneRepository)(nil)

// NewTombstoneRepository creates a new repository.
func NewTombstoneRepository(db *bun.DB) *TombstoneRepository {
	return &TombstoneRepository{db: db}
}

// Upsert implements useradmin.RevocationStore.
func (r *TombstoneRepository) Upsert(ctx context.Context, record *useradmin.Tombstone) error {
	if record == nil || record.PrincipalID == "" {
		return goerrors.New("tombstone requires a principal id", goerrors.CategoryBadInput)
	}

	if record.DeletedAt.IsZero() {
		record.DeletedAt = time.Now()
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (principal_id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("deleted_at = EXCLUDED.deleted_at").
		Set("deleted_by = EXCLUDED.deleted_by").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to write tombstone").
			WithMetadata(map[string]any{
				"principal_id": record.PrincipalID,
			})
	}

	return nil
}

// Get implements useradmin.RevocationStore.
func (r *TombstoneRepository) Get(ctx context.Context, principalID string) (*useradmin.Tombstone, error) {
	var record useradmin.Tombstone
	err := r.db.NewSelect().
		Model(&record).
		Where("principal_id = ?", principalID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, useradmin.ErrTombstoneNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load tombstone").
			WithMetadata(map[string]any{
				"principal_id": principalID,
			})
	}

	return &record, nil
}

// Ping reports database reachability for health checks.
func (r *TombstoneRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
