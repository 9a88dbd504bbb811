package engine

import "github.com/lysgoup/adaptived/policy"

// queue is an intrusive doubly linked list implementing policy.Queue.
// Kernels decide what front and back mean; the engine only guarantees
// O(1) linking and stable walks.
//
// Concurrency: queues are mutated exclusively on the hook path, which the
// host serializes per cgroup, so no locking is performed here.
type queue struct {
	name string
	head *node
	tail *node
	size int
}

// pushFront inserts n at the head in O(1).
func (q *queue) pushFront(n *node) {
	n.prev = nil
	n.next = q.head
	if q.head != nil {
		q.head.prev = n
	}
	q.head = n
	if q.tail == nil {
		q.tail = n
	}
	n.owner = q
	q.size++
}

// pushBack inserts n at the tail in O(1).
func (q *queue) pushBack(n *node) {
	n.next = nil
	n.prev = q.tail
	if q.tail != nil {
		q.tail.next = n
	}
	q.tail = n
	if q.head == nil {
		q.head = n
	}
	n.owner = q
	q.size++
}

// unlink detaches n from the list in O(1). No-op bookkeeping is left to
// the callers; n.owner is cleared.
func (q *queue) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if q.head == n {
		q.head = n.next
	}
	if q.tail == n {
		q.tail = n.prev
	}
	n.prev, n.next = nil, nil
	n.owner = nil
	q.size--
}

// ---- policy.Queue ----

func (q *queue) PushFront(pn policy.Node) { q.pushFront(pn.(*node)) }
func (q *queue) PushBack(pn policy.Node)  { q.pushBack(pn.(*node)) }

func (q *queue) MoveToFront(pn policy.Node) {
	n := pn.(*node)
	if n == q.head || n.owner != q {
		return
	}
	q.unlink(n)
	q.pushFront(n)
}

func (q *queue) MoveToBack(pn policy.Node) {
	n := pn.(*node)
	if n == q.tail || n.owner != q {
		return
	}
	q.unlink(n)
	q.pushBack(n)
}

// Remove detaches the node; silently ignored if the node lives elsewhere.
func (q *queue) Remove(pn policy.Node) {
	n := pn.(*node)
	if n.owner != q {
		return
	}
	q.unlink(n)
}

func (q *queue) Len() int { return q.size }

// Ascend walks head to tail. The successor is captured before fn runs, so
// fn may unlink or re-queue the visited node.
func (q *queue) Ascend(fn func(policy.Node) bool) {
	for n := q.head; n != nil; {
		next := n.next
		if !fn(n) {
			return
		}
		n = next
	}
}

// Descend walks tail to head with the same mid-walk mutation guarantee.
func (q *queue) Descend(fn func(policy.Node) bool) {
	for n := q.tail; n != nil; {
		prev := n.prev
		if !fn(n) {
			return
		}
		n = prev
	}
}

// registry tracks every queue created by the bound kernels so the engine
// can cross-check resident counts against the metadata store.
type registry struct {
	queues []*queue
}

func (r *registry) newQueue(name string) *queue {
	q := &queue{name: name}
	r.queues = append(r.queues, q)
	return q
}

// residents returns the sum of all queue sizes.
func (r *registry) residents() int {
	total := 0
	for _, q := range r.queues {
		total += q.size
	}
	return total
}
