package unitstatus

import (
	"testing"
	"time"

	"github.com/gridsentry/upswatch/core/model"
)

func status(unit string, state model.Status) Status {
	return Status{
		UnitID:    unit,
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("ups0001"); ok {
		t.Fatal("empty store reported a unit")
	}
	s.Set(status("ups0001", model.StatusHealthy))
	got, ok := s.Get("ups0001")
	if !ok || got.State != model.StatusHealthy {
		t.Fatalf("get = %+v, ok=%v", got, ok)
	}

	// A later cycle overwrites the unit in place.
	s.Set(status("ups0001", model.StatusCritical))
	got, _ = s.Get("ups0001")
	if got.State != model.StatusCritical {
		t.Fatalf("state = %q after overwrite, want critical", got.State)
	}
	if len(s.List(Filter{})) != 1 {
		t.Fatal("overwrite grew the store")
	}
}

func TestMemoryStoreListSortedAndFiltered(t *testing.T) {
	s := NewMemoryStore()
	s.Set(status("ups0003", model.StatusAtRisk))
	s.Set(status("ups0001", model.StatusHealthy))
	s.Set(status("ups0002", model.StatusCritical))

	all := s.List(Filter{})
	if len(all) != 3 {
		t.Fatalf("list = %d entries, want 3", len(all))
	}
	for i, want := range []string{"ups0001", "ups0002", "ups0003"} {
		if all[i].UnitID != want {
			t.Errorf("list[%d] = %s, want %s", i, all[i].UnitID, want)
		}
	}

	critical := s.List(Filter{State: model.StatusCritical})
	if len(critical) != 1 || critical[0].UnitID != "ups0002" {
		t.Fatalf("critical filter = %+v", critical)
	}
}
