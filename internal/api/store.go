package api

import (
	"slices"
	"sync"

	"github.com/samcharles93/chunkmul/internal/report"
)

// RunStore keeps the reports of completed multiply calls in memory. Result
// matrices are not retained.
type RunStore struct {
	mu    sync.Mutex
	runs  map[string]report.Report
	order []string
	limit int
}

// NewRunStore creates a store that remembers at most limit runs, evicting the
// oldest first. limit <= 0 means unbounded.
func NewRunStore(limit int) *RunStore {
	return &RunStore{
		runs:  make(map[string]report.Report),
		limit: limit,
	}
}

func (s *RunStore) Put(r report.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.runs[r.ID] = r
	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *RunStore) Get(id string) (report.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *RunStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true
}

// List returns runs in insertion order.
func (s *RunStore) List() []report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.Report, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id])
	}
	return out
}
