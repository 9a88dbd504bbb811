package s3fifo

import (
	"testing"

	"github.com/lysgoup/adaptived/policy"
	"github.com/lysgoup/adaptived/policy/policytest"
)

func newKernel(t *testing.T, cacheSize uint64) (policy.Kernel, *policytest.Queue, *policytest.Queue) {
	t.Helper()
	h := policytest.NewHooks(cacheSize)
	k := New().New(h)
	return k, h.Queues["s3fifo-small"], h.Queues["s3fifo-main"]
}

// Admissions land in small with a zeroed hit counter.
func TestS3FIFO_OnAdd_IntoSmall(t *testing.T) {
	t.Parallel()

	k, small, main := newKernel(t, 10)
	n := &policytest.Node{P: policytest.ValidPage(1, 0)}
	n.M.Freq = 2 // stale value from a previous residency must reset
	n.M.InMain = true
	k.OnAdd(n, 1)

	if small.Len() != 1 || main.Len() != 0 {
		t.Fatalf("node must be admitted into small")
	}
	if n.M.Freq != 0 || n.M.InMain {
		t.Fatalf("admission must reset Freq/InMain, got freq=%d inMain=%v", n.M.Freq, n.M.InMain)
	}
}

// The hit counter saturates at FreqMax.
func TestS3FIFO_OnAccess_Saturates(t *testing.T) {
	t.Parallel()

	k, _, _ := newKernel(t, 10)
	n := &policytest.Node{P: policytest.ValidPage(1, 0)}
	k.OnAdd(n, 1)
	for i := 0; i < 10; i++ {
		k.OnAccess(n, uint64(2+i))
	}

	if n.M.Freq != FreqMax {
		t.Fatalf("freq must saturate at %d, got %d", FreqMax, n.M.Freq)
	}
}

// Hot pages promote out of the small sweep; cold ones are nominated.
// Ten pages, p1 hit three times, p2 once, p3..p10 never: the sweep must
// promote p1 to main and nominate the other nine.
func TestS3FIFO_SmallSweep_PromotionAndEviction(t *testing.T) {
	t.Parallel()

	// Cache estimate 10 -> small sweeps whenever it holds > 1 page.
	k, small, main := newKernel(t, 10)
	nodes := make([]*policytest.Node, 10)
	for i := range nodes {
		nodes[i] = &policytest.Node{P: policytest.ValidPage(1, uint64(i))}
		k.OnAdd(nodes[i], uint64(i))
	}
	for i := 0; i < 3; i++ {
		k.OnAccess(nodes[0], uint64(20+i))
	}
	k.OnAccess(nodes[1], 30)

	sink := &policytest.Sink{Budget: 10}
	k.Evict(sink)

	if !nodes[0].M.InMain || main.Len() != 1 || main.Nodes[0] != nodes[0] {
		t.Fatalf("p1 must be promoted to main")
	}
	// Nominations stay resident (and queued) until the host reports
	// them evicted; only the promotion leaves small.
	if small.Len() != 9 {
		t.Fatalf("want 9 nodes left in small, got %d", small.Len())
	}
	if len(sink.Victims) != 9 {
		t.Fatalf("want 9 victims, got %d", len(sink.Victims))
	}
	if sink.Victims[0] != nodes[1] {
		t.Fatalf("p2 (freq=1) must be the first nomination")
	}
}

// The main sweep spends one credit per surviving node and nominates the
// ones that run dry.
func TestS3FIFO_MainSweep_DecrementsAndEvicts(t *testing.T) {
	t.Parallel()

	// Large estimate keeps small under its bound, forcing a main sweep.
	k, small, main := newKernel(t, 1000)
	hot := &policytest.Node{P: policytest.ValidPage(1, 0)}
	cold := &policytest.Node{P: policytest.ValidPage(1, 1)}
	hot.M.Freq = 2
	cold.M.Freq = 0
	hot.M.InMain = true
	cold.M.InMain = true
	main.PushBack(hot)
	main.PushBack(cold)
	_ = small

	sink := &policytest.Sink{Budget: 10}
	k.Evict(sink)

	if hot.M.Freq != 1 {
		t.Fatalf("surviving node must spend one credit, freq=%d", hot.M.Freq)
	}
	if len(sink.Victims) != 1 || sink.Victims[0] != cold {
		t.Fatalf("only the drained node is nominated, got %v", sink.Victims)
	}
}
