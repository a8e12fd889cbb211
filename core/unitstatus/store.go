package unitstatus

import (
	"sort"
	"sync"
	"time"

	"github.com/gridsentry/upswatch/core/model"
)

// Status captures the last known state of a unit: the reading that was
// evaluated and the prediction it produced.
type Status struct {
	UnitID     string           `json:"unit_id"`
	State      model.Status     `json:"state"`
	Reading    model.Reading    `json:"reading"`
	Prediction model.Prediction `json:"prediction"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Filter narrows List results.
type Filter struct {
	State model.Status
}

// Store is the in-process view the HTTP API reads from.
type Store interface {
	Set(Status)
	Get(unitID string) (Status, bool)
	List(Filter) []Status
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.UnitID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) Get(unitID string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[unitID]
	return st, ok
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.State != "" && st.State != f.State {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UnitID < res[j].UnitID })
	return res
}
