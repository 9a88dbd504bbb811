package engine

import "testing"

func TestStore_PutGetRemove(t *testing.T) {
	t.Parallel()

	s := newStore(100, 4)
	n := qnode(0)
	if !s.put(1, n) {
		t.Fatalf("put into an empty store must succeed")
	}
	if got, ok := s.get(1); !ok || got != n {
		t.Fatalf("get must return the stored node")
	}
	if s.len() != 1 {
		t.Fatalf("len must be 1")
	}

	if got, ok := s.remove(1); !ok || got != n {
		t.Fatalf("remove must return the stored node")
	}
	if _, ok := s.get(1); ok || s.len() != 0 {
		t.Fatalf("removed id must be gone")
	}
	if _, ok := s.remove(1); ok {
		t.Fatalf("double remove must report absence")
	}
}

func TestStore_CapacityBound(t *testing.T) {
	t.Parallel()

	s := newStore(2, 1)
	if !s.put(1, qnode(1)) || !s.put(2, qnode(2)) {
		t.Fatalf("puts under capacity must succeed")
	}
	if s.put(3, qnode(3)) {
		t.Fatalf("put over capacity must be rejected")
	}
	// Replacing a tracked id is not a growth and stays allowed.
	if !s.put(2, qnode(4)) {
		t.Fatalf("replacing a tracked id must succeed at capacity")
	}
	if s.len() != 2 {
		t.Fatalf("len must remain at capacity, got %d", s.len())
	}
}

func TestStore_ShardDistribution(t *testing.T) {
	t.Parallel()

	s := newStore(10_000, 8)
	for i := PageID(0); i < 10_000; i++ {
		if !s.put(i, qnode(uint64(i))) {
			t.Fatalf("put %d failed", i)
		}
	}
	if s.len() != 10_000 {
		t.Fatalf("len mismatch")
	}
	for _, m := range s.shards {
		// FNV over sequential ids should spread far better than this.
		if len(m) == 0 || len(m) > 5000 {
			t.Fatalf("pathological shard distribution: %d", len(m))
		}
	}
}
