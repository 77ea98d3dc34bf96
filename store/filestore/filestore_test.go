package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahanirahul/bihar-election-2025/models"
	"github.com/sahanirahul/bihar-election-2025/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "predictions.json"))
	require.NoError(t, err)
	return s
}

func mustCreate(t *testing.T, s *Store, name, ip string) *models.Prediction {
	t.Helper()
	p := &models.Prediction{
		Name:        name,
		NDATransfer: 10, MGBTransfer: 20, OthersTransfer: 30,
		NDAResult: 37.26, MGBResult: 31.00, OthersResult: 13.90, JSPResult: 17.85,
		IP: ip,
	}
	require.NoError(t, s.Create(context.Background(), p, 100))
	return p
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	s := newTestStore(t)

	first := mustCreate(t, s, "one", "1.1.1.1")
	second := mustCreate(t, s, "two", "1.1.1.1")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestCreateEnforcesQuota(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p := &models.Prediction{Name: "p", NDATransfer: 10, IP: "9.9.9.9"}
		require.NoError(t, s.Create(ctx, p, 3))
	}

	over := &models.Prediction{Name: "p", NDATransfer: 10, IP: "9.9.9.9"}
	assert.ErrorIs(t, s.Create(ctx, over, 3), store.ErrQuotaExceeded)

	// A different identity is unaffected.
	other := &models.Prediction{Name: "p", NDATransfer: 10, IP: "8.8.8.8"}
	assert.NoError(t, s.Create(ctx, other, 3))

	count, err := s.CountForIdentity(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListNewestFirstWithSearchAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, "Anand", "1.1.1.1")
	mustCreate(t, s, "Priya", "1.1.1.1")
	mustCreate(t, s, "Ananya", "2.2.2.2")
	mustCreate(t, s, "Ananthan", "2.2.2.2")

	res, err := s.List(ctx, "", 20)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Filtered)
	require.Len(t, res.Predictions, 4)
	// Newest first, id breaks creation-time ties.
	assert.Equal(t, "Ananthan", res.Predictions[0].Name)
	assert.Equal(t, "Anand", res.Predictions[3].Name)

	res, err = s.List(ctx, "anan", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Filtered)
	assert.Len(t, res.Predictions, 2)
	assert.Equal(t, "Ananthan", res.Predictions[0].Name)
	assert.Equal(t, "Ananya", res.Predictions[1].Name)
}

func TestDeleteChecksExistenceThenOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustCreate(t, s, "mine", "1.1.1.1")

	assert.ErrorIs(t, s.Delete(ctx, "1.1.1.1", 999), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "2.2.2.2", p.ID), store.ErrForbidden)

	// Forbidden delete must leave the record in place.
	res, err := s.List(ctx, "", 20)
	require.NoError(t, err)
	assert.Len(t, res.Predictions, 1)

	require.NoError(t, s.Delete(ctx, "1.1.1.1", p.ID))
	assert.ErrorIs(t, s.Delete(ctx, "1.1.1.1", p.ID), store.ErrNotFound)
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	s, err := New(path)
	require.NoError(t, err)

	p := mustCreate(t, s, "durable", "1.1.1.1")

	reopened, err := New(path)
	require.NoError(t, err)

	res, err := reopened.List(context.Background(), "", 20)
	require.NoError(t, err)
	require.Len(t, res.Predictions, 1)
	assert.Equal(t, p.ID, res.Predictions[0].ID)

	// The id counter keeps climbing after a restart.
	next := mustCreate(t, reopened, "later", "1.1.1.1")
	assert.Equal(t, p.ID+1, next.ID)
}

func TestLoadsLegacyDocumentWithoutCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	legacy := `{
  "predictions": [
    {"id": 1755501234567, "name": "old timer", "ndaTransfer": 5, "ip": "1.2.3.4", "timestamp": "2025-08-18T07:13:54.567Z"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s, err := New(path)
	require.NoError(t, err)

	p := mustCreate(t, s, "new", "1.2.3.4")
	assert.Equal(t, int64(1755501234568), p.ID)

	count, err := s.CountForIdentity(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMalformedDocumentFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path)
	assert.Error(t, err)
}
