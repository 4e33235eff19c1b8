package patient

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"carepath/pkg/platform/sentinel"
)

// InMemoryStore keeps patients in memory for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	patients map[string]*Patient
}

// NewInMemoryStore constructs an empty in-memory patient store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, patients: make(map[string]*Patient)}
}

func identityKey(firstName, lastName string) string {
	return firstName + "\x00" + lastName
}

func (s *InMemoryStore) FindByName(_ context.Context, firstName, lastName string) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.patients[identityKey(firstName, lastName)]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, fmt.Errorf("patient %q %q: %w", firstName, lastName, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Create(_ context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := identityKey(p.FirstName, p.LastName)
	if _, ok := s.patients[key]; ok {
		return fmt.Errorf("patient %q %q: %w", p.FirstName, p.LastName, sentinel.ErrConflict)
	}
	p.ID = s.nextID
	s.nextID++
	copied := *p
	s.patients[key] = &copied
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := identityKey(p.FirstName, p.LastName)
	if _, ok := s.patients[key]; !ok {
		return fmt.Errorf("patient %q %q: %w", p.FirstName, p.LastName, sentinel.ErrNotFound)
	}
	copied := *p
	s.patients[key] = &copied
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Patient, 0, len(s.patients))
	for _, p := range s.patients {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
