// Package bunstore is the Postgres-backed prediction store.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/sahanirahul/bihar-election-2025/models"
	"github.com/sahanirahul/bihar-election-2025/store"
)

// Store implements store.Store on top of a bun.DB.
type Store struct {
	db *bun.DB
}

var _ store.Store = (*Store)(nil)

// New wraps the given database connection.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, search string, limit int) (store.ListResult, error) {
	var res store.ListResult

	total, err := s.db.NewSelect().
		Model((*models.Prediction)(nil)).
		Count(ctx)
	if err != nil {
		return res, fmt.Errorf("counting predictions: %w", err)
	}
	res.Total = total
	res.Filtered = total

	q := s.db.NewSelect().
		Model(&res.Predictions).
		OrderExpr("p.created_at DESC, p.id DESC").
		Limit(limit)

	if search != "" {
		pattern := fmt.Sprintf("%%%s%%", search)
		q = q.Where("p.name ILIKE ?", pattern)

		filtered, err := s.db.NewSelect().
			Model((*models.Prediction)(nil)).
			Where("name ILIKE ?", pattern).
			Count(ctx)
		if err != nil {
			return res, fmt.Errorf("counting filtered predictions: %w", err)
		}
		res.Filtered = filtered
	}

	if err := q.Scan(ctx); err != nil {
		return res, fmt.Errorf("listing predictions: %w", err)
	}
	if res.Predictions == nil {
		res.Predictions = []models.Prediction{}
	}
	return res, nil
}

// CountForIdentity implements store.Store.
func (s *Store) CountForIdentity(ctx context.Context, identity string) (int, error) {
	count, err := s.db.NewSelect().
		Model((*models.Prediction)(nil)).
		Where("ip = ?", identity).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting predictions for identity: %w", err)
	}
	return count, nil
}

// Create implements store.Store. An advisory transaction lock keyed on the
// identity serializes the count against the insert, so two concurrent
// submissions from one identity cannot both pass the quota check.
func (s *Store) Create(ctx context.Context, p *models.Prediction, max int) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?))", p.IP); err != nil {
			return fmt.Errorf("acquiring identity lock: %w", err)
		}

		count, err := tx.NewSelect().
			Model((*models.Prediction)(nil)).
			Where("ip = ?", p.IP).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("counting predictions for identity: %w", err)
		}
		if count >= max {
			return store.ErrQuotaExceeded
		}

		p.CreatedAt = time.Now().UTC()
		if _, err := tx.NewInsert().Model(p).Exec(ctx); err != nil {
			return fmt.Errorf("inserting prediction: %w", err)
		}
		return nil
	})
}

// Delete implements store.Store. Existence is checked before ownership so a
// missing id reports not-found rather than forbidden.
func (s *Store) Delete(ctx context.Context, identity string, id int64) error {
	p := &models.Prediction{}
	err := s.db.NewSelect().Model(p).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("loading prediction: %w", err)
	}
	if p.IP != identity {
		return store.ErrForbidden
	}

	if _, err := s.db.NewDelete().
		Model((*models.Prediction)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("deleting prediction: %w", err)
	}
	return nil
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
