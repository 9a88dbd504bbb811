// Package policytest provides in-memory test doubles for exercising
// eviction kernels without an engine.
package policytest

import "github.com/lysgoup/adaptived/policy"

// Page is a plain-value policy.Page.
type Page struct {
	Ino        uint64
	Off        uint64
	IsUptodate bool
	IsRecent   bool
	IsDirty    bool
}

func (p *Page) Inode() uint64      { return p.Ino }
func (p *Page) Offset() uint64     { return p.Off }
func (p *Page) Uptodate() bool     { return p.IsUptodate }
func (p *Page) RecentlyUsed() bool { return p.IsRecent }
func (p *Page) Dirty() bool        { return p.IsDirty }

// ValidPage returns a page that passes the kernels' validity check.
func ValidPage(ino, off uint64) *Page {
	return &Page{Ino: ino, Off: off, IsUptodate: true, IsRecent: true}
}

// Node pairs a page with mutable metadata.
type Node struct {
	P *Page
	M policy.Meta
}

func (n *Node) Page() policy.Page  { return n.P }
func (n *Node) Meta() *policy.Meta { return &n.M }

// Queue is a slice-backed policy.Queue. Walks iterate over a snapshot, so
// kernels may move or remove the visited node mid-walk.
type Queue struct {
	Name  string
	Nodes []policy.Node
}

func (q *Queue) PushFront(n policy.Node) {
	q.Nodes = append([]policy.Node{n}, q.Nodes...)
}

func (q *Queue) PushBack(n policy.Node) {
	q.Nodes = append(q.Nodes, n)
}

func (q *Queue) MoveToFront(n policy.Node) {
	if q.remove(n) {
		q.PushFront(n)
	}
}

func (q *Queue) MoveToBack(n policy.Node) {
	if q.remove(n) {
		q.PushBack(n)
	}
}

func (q *Queue) Remove(n policy.Node) { q.remove(n) }

func (q *Queue) remove(n policy.Node) bool {
	for i, cand := range q.Nodes {
		if cand == n {
			q.Nodes = append(q.Nodes[:i], q.Nodes[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) Len() int { return len(q.Nodes) }

func (q *Queue) Ascend(fn func(policy.Node) bool) {
	for _, n := range append([]policy.Node(nil), q.Nodes...) {
		if !fn(n) {
			return
		}
	}
}

func (q *Queue) Descend(fn func(policy.Node) bool) {
	snap := append([]policy.Node(nil), q.Nodes...)
	for i := len(snap) - 1; i >= 0; i-- {
		if !fn(snap[i]) {
			return
		}
	}
}

// Hooks hands out named queues and a fixed cache size estimate.
type Hooks struct {
	CacheSize uint64
	Queues    map[string]*Queue
}

// NewHooks creates hooks with the given cache size estimate.
func NewHooks(cacheSize uint64) *Hooks {
	return &Hooks{CacheSize: cacheSize, Queues: make(map[string]*Queue)}
}

func (h *Hooks) NewQueue(name string) policy.Queue {
	q := &Queue{Name: name}
	h.Queues[name] = q
	return q
}

func (h *Hooks) CacheSizeEstimate() uint64 { return h.CacheSize }

// Sink collects submitted victims up to a budget.
type Sink struct {
	Budget  int
	Victims []policy.Node
}

func (s *Sink) Submit(n policy.Node) bool {
	if len(s.Victims) >= s.Budget {
		return false
	}
	s.Victims = append(s.Victims, n)
	return len(s.Victims) < s.Budget
}
