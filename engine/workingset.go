package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// workingSet approximates the working set as the set of recently observed
// inodes. Capacity is fixed; inserting into a full set silently drops the
// least recently observed inode. This is the only internal eviction in
// the engine that is unrelated to page lifecycle.
type workingSet struct {
	inodes *lru.Cache[uint64, struct{}]
}

func newWorkingSet(capacity int) (*workingSet, error) {
	c, err := lru.New[uint64, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &workingSet{inodes: c}, nil
}

// observe marks an inode as recently seen.
func (w *workingSet) observe(inode uint64) {
	w.inodes.Add(inode, struct{}{})
}

// size is the current working-set estimate in distinct inodes.
func (w *workingSet) size() int {
	return w.inodes.Len()
}
