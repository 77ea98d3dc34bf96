// Package filestore is the legacy JSON-document backend. The whole store is
// one pretty-printed file, rewritten on every mutation, with a process-wide
// mutex serializing the quota check against the insert.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahanirahul/bihar-election-2025/models"
	"github.com/sahanirahul/bihar-election-2025/store"
)

// record is the on-disk shape of one prediction. The ip field lives here in
// plaintext; it is stripped when records are converted to models.Prediction
// responses by json:"-" on that struct.
type record struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	NDATransfer    float64   `json:"ndaTransfer"`
	MGBTransfer    float64   `json:"mgbTransfer"`
	OthersTransfer float64   `json:"othersTransfer"`
	NDAResult      float64   `json:"ndaResult"`
	MGBResult      float64   `json:"mgbResult"`
	OthersResult   float64   `json:"othersResult"`
	JSPResult      float64   `json:"jspResult"`
	IP             string    `json:"ip"`
	CreatedAt      time.Time `json:"timestamp"`
}

type document struct {
	LastID      int64    `json:"lastId"`
	Predictions []record `json:"predictions"`
}

// Store persists predictions in a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) the document at path and validates it.
func New(path string) (*Store, error) {
	s := &Store{path: path}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(doc); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Predictions: []record{}}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if doc.Predictions == nil {
		doc.Predictions = []record{}
	}
	// Legacy documents predate the lastId counter.
	for _, r := range doc.Predictions {
		if r.ID > doc.LastID {
			doc.LastID = r.ID
		}
	}
	return doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, search string, limit int) (store.ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return store.ListResult{}, err
	}

	matched := make([]record, 0, len(doc.Predictions))
	needle := strings.ToLower(search)
	for _, r := range doc.Predictions {
		if search == "" || strings.Contains(strings.ToLower(r.Name), needle) {
			matched = append(matched, r)
		}
	}

	// Newest first, higher id wins a timestamp tie.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	res := store.ListResult{
		Total:    len(doc.Predictions),
		Filtered: len(matched),
	}
	if limit < len(matched) {
		matched = matched[:limit]
	}
	res.Predictions = make([]models.Prediction, len(matched))
	for i, r := range matched {
		res.Predictions[i] = toModel(r)
	}
	return res, nil
}

// CountForIdentity implements store.Store.
func (s *Store) CountForIdentity(ctx context.Context, identity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	return countByIP(doc, identity), nil
}

// Create implements store.Store. The mutex makes the count-then-append
// sequence a critical section, so two racing submissions from one identity
// cannot both slip under the cap.
func (s *Store) Create(ctx context.Context, p *models.Prediction, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if countByIP(doc, p.IP) >= max {
		return store.ErrQuotaExceeded
	}

	doc.LastID++
	p.ID = doc.LastID
	p.CreatedAt = time.Now().UTC()
	doc.Predictions = append(doc.Predictions, toRecord(*p))

	return s.save(doc)
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, identity string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	idx := -1
	for i, r := range doc.Predictions {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return store.ErrNotFound
	}
	if doc.Predictions[idx].IP != identity {
		return store.ErrForbidden
	}

	doc.Predictions = append(doc.Predictions[:idx], doc.Predictions[idx+1:]...)
	return s.save(doc)
}

// Ping implements store.Store.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}

// All returns every stored record as a model, ips included, in insertion
// order. Used by cmd/migrate to move a legacy file into Postgres.
func (s *Store) All(ctx context.Context) ([]models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Prediction, len(doc.Predictions))
	for i, r := range doc.Predictions {
		out[i] = toModel(r)
	}
	return out, nil
}

func countByIP(doc *document, ip string) int {
	n := 0
	for _, r := range doc.Predictions {
		if r.IP == ip {
			n++
		}
	}
	return n
}

func toModel(r record) models.Prediction {
	return models.Prediction{
		ID:             r.ID,
		Name:           r.Name,
		NDATransfer:    r.NDATransfer,
		MGBTransfer:    r.MGBTransfer,
		OthersTransfer: r.OthersTransfer,
		NDAResult:      r.NDAResult,
		MGBResult:      r.MGBResult,
		OthersResult:   r.OthersResult,
		JSPResult:      r.JSPResult,
		IP:             r.IP,
		CreatedAt:      r.CreatedAt,
	}
}

func toRecord(p models.Prediction) record {
	return record{
		ID:             p.ID,
		Name:           p.Name,
		NDATransfer:    p.NDATransfer,
		MGBTransfer:    p.MGBTransfer,
		OthersTransfer: p.OthersTransfer,
		NDAResult:      p.NDAResult,
		MGBResult:      p.MGBResult,
		OthersResult:   p.OthersResult,
		JSPResult:      p.JSPResult,
		IP:             p.IP,
		CreatedAt:      p.CreatedAt,
	}
}
