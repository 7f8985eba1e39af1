package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"seminar-results-service/internal/domain"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FrozenResult is one immutable results snapshot.
type FrozenResult struct {
	bun.BaseModel `bun:"table:frozen_results"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	Kind     string    `bun:"kind,notnull"`
	TargetID int64     `bun:"target_id,notnull"`
	Data     []byte    `bun:"data,type:bytea,notnull"`
	FrozenAt time.Time `bun:"frozen_at,notnull"`
}

// SnapshotStore persists frozen results; the (kind, target_id) unique
// constraint makes Create at-most-once.
type SnapshotStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewSnapshotStore(db *bun.DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

func (s *SnapshotStore) Get(ctx context.Context, key domain.SnapshotKey) ([]byte, bool, error) {
	var row FrozenResult
	err := s.db.NewSelect().
		Model(&row).
		Column("data").
		Where("kind = ?", string(key.Kind)).
		Where("target_id = ?", key.ID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select snapshot: %w", err)
	}
	return row.Data, true, nil
}

func (s *SnapshotStore) Create(ctx context.Context, key domain.SnapshotKey, data []byte) error {
	row := &FrozenResult{
		ID:       uuid.New(),
		Kind:     string(key.Kind),
		TargetID: key.ID,
		Data:     data,
		FrozenAt: s.now().UTC(),
	}
	res, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (kind, target_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyFrozen
	}
	return nil
}
