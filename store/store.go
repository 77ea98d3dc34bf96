// Package store defines the persistence seam for predictions. Two
// implementations exist: a Postgres-backed store (bunstore) and the legacy
// JSON-document store (filestore). Both enforce the per-identity quota
// atomically inside Create so concurrent submissions cannot overshoot it.
package store

import (
	"context"
	"errors"

	"github.com/sahanirahul/bihar-election-2025/models"
)

var (
	// ErrNotFound is returned when no prediction exists for the given id.
	ErrNotFound = errors.New("prediction not found")
	// ErrForbidden is returned when a caller tries to delete a prediction
	// submitted from a different identity.
	ErrForbidden = errors.New("prediction owned by another identity")
	// ErrQuotaExceeded is returned by Create when the identity already
	// holds the maximum number of predictions.
	ErrQuotaExceeded = errors.New("prediction quota exceeded")
)

// ListResult carries a page of predictions plus the counts the list
// endpoint reports. Filtered is the number of rows matching the search,
// which can exceed len(Predictions) when the limit truncates.
type ListResult struct {
	Predictions []models.Prediction
	Total       int
	Filtered    int
}

// Store is the capability set the guard needs from persistence.
type Store interface {
	// List returns up to limit predictions, newest first, optionally
	// filtered to names containing search (case-insensitive).
	List(ctx context.Context, search string, limit int) (ListResult, error)

	// CountForIdentity returns how many predictions the identity holds.
	CountForIdentity(ctx context.Context, identity string) (int, error)

	// Create persists p, assigning id and creation time. It checks the
	// identity's count against max and inserts in one atomic step,
	// returning ErrQuotaExceeded when the cap is already reached.
	Create(ctx context.Context, p *models.Prediction, max int) error

	// Delete removes the prediction with the given id. Existence is
	// checked before ownership: ErrNotFound if the id does not exist,
	// ErrForbidden if it belongs to a different identity.
	Delete(ctx context.Context, identity string, id int64) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
