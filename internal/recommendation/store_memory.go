package recommendation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carepath/pkg/platform/sentinel"
)

type memoryRecord struct {
	Recommendation
	seq int64
}

// InMemoryStore keeps recommendations in memory for tests and development.
// Insertion order is preserved so same-day reads return labels in the order
// the rules produced them.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextSeq int64
	records map[string]*memoryRecord
}

// NewInMemoryStore constructs an empty in-memory recommendation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*memoryRecord)}
}

func (s *InMemoryStore) Save(_ context.Context, rec *Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.records[rec.ID] = &memoryRecord{Recommendation: *rec, seq: s.nextSeq}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		copied := rec.Recommendation
		return &copied, nil
	}
	return nil, fmt.Errorf("recommendation %q: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListByPatientBetween(_ context.Context, patientID int64, from, to time.Time) ([]*Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(rec *memoryRecord) bool {
		if rec.PatientID != patientID {
			return false
		}
		return !rec.CreatedAt.Before(from) && rec.CreatedAt.Before(to)
	}), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*memoryRecord) bool { return true }), nil
}

func (s *InMemoryStore) collect(match func(*memoryRecord) bool) []*Recommendation {
	var matched []*memoryRecord
	for _, rec := range s.records {
		if match(rec) {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	out := make([]*Recommendation, 0, len(matched))
	for _, rec := range matched {
		copied := rec.Recommendation
		out = append(out, &copied)
	}
	return out
}
