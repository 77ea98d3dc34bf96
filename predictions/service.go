// Package predictions holds the submission guard: input validation, the
// per-identity quota, and the derived-result snapshot taken at creation.
package predictions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahanirahul/bihar-election-2025/calc"
	"github.com/sahanirahul/bihar-election-2025/models"
	"github.com/sahanirahul/bihar-election-2025/store"
)

// DefaultListLimit caps List when the caller does not ask for one.
const DefaultListLimit = 20

// ValidationError marks user-correctable input problems. Its message is
// safe to return to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Submission is the strongly-typed POST body after JSON decoding. A nil
// transfer means the field was missing or not a JSON number; the guard
// reports that after the name checks to keep error ordering stable.
type Submission struct {
	Name           string
	NDATransfer    *float64
	MGBTransfer    *float64
	OthersTransfer *float64
}

// QuotaStatus reports an identity's standing against the cap. Remaining can
// go negative if the cap was lowered after submissions were accepted.
type QuotaStatus struct {
	Count     int `json:"count"`
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

// Service validates and orchestrates all prediction operations against a
// Store. It is safe for concurrent use.
type Service struct {
	store store.Store
	max   int
}

// New creates a Service enforcing the given per-identity cap.
func New(st store.Store, maxPerIdentity int) *Service {
	return &Service{store: st, max: maxPerIdentity}
}

// List returns up to limit predictions, newest first. Non-positive limits
// fall back to DefaultListLimit.
func (s *Service) List(ctx context.Context, search string, limit int) (store.ListResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.List(ctx, search, limit)
}

// Quota returns the identity's current count, the cap, and the difference.
func (s *Service) Quota(ctx context.Context, identity string) (QuotaStatus, error) {
	count, err := s.store.CountForIdentity(ctx, identity)
	if err != nil {
		return QuotaStatus{}, err
	}
	return QuotaStatus{Count: count, Max: s.max, Remaining: s.max - count}, nil
}

// Create validates the submission, derives the result snapshot and persists
// it. The checks run in a fixed order: name presence, name length, transfer
// types, transfer ranges, the all-zero rule, then the quota (enforced
// atomically by the store).
func (s *Service) Create(ctx context.Context, identity string, sub Submission) (*models.Prediction, error) {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	// Length is checked on the raw input, not the trimmed name.
	if len([]rune(sub.Name)) > 30 {
		return nil, validationf("name must be 30 characters or less")
	}

	if sub.NDATransfer == nil || sub.MGBTransfer == nil || sub.OthersTransfer == nil {
		return nil, validationf("invalid vote transfer values")
	}
	nda, mgb, others := *sub.NDATransfer, *sub.MGBTransfer, *sub.OthersTransfer

	for _, t := range []float64{nda, mgb, others} {
		if t < 0 || t > 100 {
			return nil, validationf("vote transfer values must be between 0 and 100")
		}
	}
	if nda == 0 && mgb == 0 && others == 0 {
		return nil, validationf("at least one vote transfer must be non-zero")
	}

	shares := calc.Results(nda, mgb, others)
	p := &models.Prediction{
		Name:           name,
		NDATransfer:    nda,
		MGBTransfer:    mgb,
		OthersTransfer: others,
		NDAResult:      shares.NDA,
		MGBResult:      shares.MGB,
		OthersResult:   shares.Others,
		JSPResult:      shares.JSP,
		IP:             identity,
	}

	if err := s.store.Create(ctx, p, s.max); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the identity's own prediction. store.ErrNotFound and
// store.ErrForbidden pass through for the handler to map.
func (s *Service) Delete(ctx context.Context, identity string, id int64) error {
	return s.store.Delete(ctx, identity, id)
}

// Max returns the configured per-identity cap.
func (s *Service) Max() int { return s.max }
