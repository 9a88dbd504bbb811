package engine

import (
	"github.com/lysgoup/adaptived/internal/util"
)

// store maps PageID to its resident node. Capacity is bounded the way the
// host-side metadata map is: once full, new pages simply go untracked.
//
// The map is split into power-of-two shards keyed by an FNV-1a hash of the
// identifier. Hooks for one cgroup arrive serially, so shards need no
// locks; sharding only bounds per-map size and growth pauses on the hot
// path when millions of entries are resident.
type store struct {
	shards   []map[PageID]*node
	mask     uint64
	capacity int
	size     int
}

// defaultStoreShards keeps individual maps below a few hundred thousand
// entries at the reference capacity.
const defaultStoreShards = 16

func newStore(capacity, shards int) *store {
	if shards <= 0 {
		shards = defaultStoreShards
	}
	shards = int(util.NextPow2(uint64(shards)))
	s := &store{
		shards:   make([]map[PageID]*node, shards),
		mask:     uint64(shards - 1),
		capacity: capacity,
	}
	for i := range s.shards {
		s.shards[i] = make(map[PageID]*node)
	}
	return s
}

func (s *store) shard(id PageID) map[PageID]*node {
	return s.shards[util.Fnv64a(uint64(id))&s.mask]
}

// get returns the node for id if tracked.
func (s *store) get(id PageID) (*node, bool) {
	n, ok := s.shard(id)[id]
	return n, ok
}

// put tracks n under id. Returns false when the store is at capacity and
// id is not already present; the page then goes untracked.
func (s *store) put(id PageID, n *node) bool {
	m := s.shard(id)
	if _, ok := m[id]; !ok {
		if s.size >= s.capacity {
			return false
		}
		s.size++
	}
	m[id] = n
	return true
}

// remove untracks id and returns the node that was present.
func (s *store) remove(id PageID) (*node, bool) {
	m := s.shard(id)
	n, ok := m[id]
	if !ok {
		return nil, false
	}
	delete(m, id)
	s.size--
	return n, true
}

// len is the number of tracked pages.
func (s *store) len() int { return s.size }
