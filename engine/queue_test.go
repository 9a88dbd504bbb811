package engine

import (
	"testing"

	"github.com/lysgoup/adaptived/policy"
)

func qnode(off uint64) *node {
	return &node{page: PageInfo{PageID: PageID(off + 1), Ino: 1, Off: off,
		IsUptodate: true, IsRecent: true}}
}

func order(q *queue) []*node {
	var out []*node
	for n := q.head; n != nil; n = n.next {
		out = append(out, n)
	}
	return out
}

func TestQueue_PushAndMove(t *testing.T) {
	t.Parallel()

	var r registry
	q := r.newQueue("q")
	a, b, c := qnode(0), qnode(1), qnode(2)
	q.PushBack(a)
	q.PushBack(b)
	q.PushFront(c)

	got := order(q)
	if len(got) != 3 || got[0] != c || got[1] != a || got[2] != b {
		t.Fatalf("want [c a b], got %v", got)
	}
	if a.owner != q || q.Len() != 3 {
		t.Fatalf("ownership/len bookkeeping broken")
	}

	q.MoveToBack(c)
	q.MoveToFront(b)
	got = order(q)
	if got[0] != b || got[1] != a || got[2] != c {
		t.Fatalf("want [b a c], got %v", got)
	}

	// Moving the node already at the end is a no-op.
	q.MoveToFront(b)
	if q.head != b || q.tail != c {
		t.Fatalf("no-op move corrupted the list")
	}
}

func TestQueue_RemoveClearsOwnership(t *testing.T) {
	t.Parallel()

	var r registry
	q := r.newQueue("q")
	a, b := qnode(0), qnode(1)
	q.PushBack(a)
	q.PushBack(b)

	q.Remove(a)
	if a.owner != nil || a.next != nil || a.prev != nil {
		t.Fatalf("removed node must be fully detached")
	}
	if q.Len() != 1 || q.head != b || q.tail != b {
		t.Fatalf("remaining list inconsistent")
	}

	// Removing through the wrong queue is silently ignored.
	other := r.newQueue("other")
	other.Remove(b)
	if q.Len() != 1 || b.owner != q {
		t.Fatalf("foreign Remove must be a no-op")
	}
}

func TestQueue_AscendAllowsMidWalkRequeue(t *testing.T) {
	t.Parallel()

	var r registry
	src := r.newQueue("src")
	dst := r.newQueue("dst")
	a, b, c := qnode(0), qnode(1), qnode(2)
	src.PushBack(a)
	src.PushBack(b)
	src.PushBack(c)

	var visited []*node
	src.Ascend(func(pn policy.Node) bool {
		n := pn.(*node)
		visited = append(visited, n)
		if n == b {
			src.Remove(n)
			dst.PushBack(n)
		}
		return true
	})

	if len(visited) != 3 {
		t.Fatalf("walk must visit all three nodes, got %d", len(visited))
	}
	if src.Len() != 2 || dst.Len() != 1 || b.owner != dst {
		t.Fatalf("mid-walk requeue broke the lists")
	}
	if r.residents() != 3 {
		t.Fatalf("registry must count nodes across queues")
	}
}
