package lhd

import (
	"testing"

	"github.com/lysgoup/adaptived/policy"
	"github.com/lysgoup/adaptived/policy/policytest"
)

func newKernel(t *testing.T) (policy.Kernel, *policytest.Queue) {
	t.Helper()
	h := policytest.NewHooks(1000)
	k := New().New(h)
	return k, h.Queues["lhd"]
}

// Admission zeroes the hit age; an access records the gap since the
// previous access without reordering the queue.
func TestLHD_RecordsHitAge(t *testing.T) {
	t.Parallel()

	k, q := newKernel(t)
	a := &policytest.Node{P: policytest.ValidPage(1, 0)}
	b := &policytest.Node{P: policytest.ValidPage(1, 1)}
	a.M.LastHitAge = 99
	k.OnAdd(a, 5)
	k.OnAdd(b, 6)
	if a.M.LastHitAge != 0 {
		t.Fatalf("admission must zero the hit age")
	}

	a.M.LastAccessAt = 5
	k.OnAccess(a, 12)
	if a.M.LastHitAge != 7 {
		t.Fatalf("hit age must be now - previous access, got %d", a.M.LastHitAge)
	}
	if q.Nodes[0] != a {
		t.Fatalf("access must not reorder the queue")
	}
}

// Eviction keeps the simplified FIFO order despite the recorded ages.
func TestLHD_Evict_FIFOOrder(t *testing.T) {
	t.Parallel()

	k, _ := newKernel(t)
	a := &policytest.Node{P: policytest.ValidPage(1, 0)}
	b := &policytest.Node{P: policytest.ValidPage(1, 1)}
	k.OnAdd(a, 1)
	k.OnAdd(b, 2)
	a.M.LastAccessAt = 1
	k.OnAccess(a, 10) // a looks hotter, order must not change

	sink := &policytest.Sink{Budget: 1}
	k.Evict(sink)

	if len(sink.Victims) != 1 || sink.Victims[0] != a {
		t.Fatalf("oldest node must still be nominated first")
	}
}
