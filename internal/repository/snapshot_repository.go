package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/ndewijer/bondcalc/internal/model"
)

// SnapshotRepository records which refresh produced the current contents
// of each table.
type SnapshotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a new SnapshotRepository scoped to the provided transaction.
func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *SnapshotRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// SaveSnapshot upserts the snapshot row for s.Kind.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, s model.Snapshot) error {
	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO snapshot (kind, run_id, row_count, rejected, refreshed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			run_id = excluded.run_id,
			row_count = excluded.row_count,
			rejected = excluded.rejected,
			refreshed_at = excluded.refreshed_at
	`,
		string(s.Kind),
		s.RunID,
		s.Rows,
		s.Rejected,
		s.RefreshedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", s.Kind, err)
	}
	return nil
}

// GetSnapshot returns the snapshot row for kind.
func (r *SnapshotRepository) GetSnapshot(ctx context.Context, kind model.SnapshotKind) (model.Snapshot, error) {
	row := r.getQuerier().QueryRowContext(ctx, `
		SELECT kind, run_id, row_count, rejected, refreshed_at
		FROM snapshot
		WHERE kind = ?
	`, string(kind))

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, apperrors.ErrSnapshotNotFound
	}
	return s, err
}

// GetSnapshots returns all snapshot rows ordered by kind.
func (r *SnapshotRepository) GetSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `
		SELECT kind, run_id, row_count, rejected, refreshed_at
		FROM snapshot
		ORDER BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot table: %w", err)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (model.Snapshot, error) {
	var (
		s           model.Snapshot
		kind        string
		refreshedAt string
	)
	if err := row.Scan(&kind, &s.RunID, &s.Rows, &s.Rejected, &refreshedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Snapshot{}, err
		}
		return model.Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	s.Kind = model.SnapshotKind(kind)

	t, err := time.Parse(time.RFC3339Nano, refreshedAt)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse refreshed_at: %w", err)
	}
	s.RefreshedAt = t
	return s, nil
}
