package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/lysgoup/adaptived/policy"
)

func TestAdapter_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "adaptived", "test", nil)

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(false)
	a.Evict(true)
	a.Switch(policy.MRU, policy.FIFO)
	a.Size(42)

	require.Equal(t, 2.0, testutil.ToFloat64(a.hits))
	require.Equal(t, 1.0, testutil.ToFloat64(a.misses))
	require.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("clean")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("dirty")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.switches.WithLabelValues("MRU", "FIFO")))
	require.Equal(t, 42.0, testutil.ToFloat64(a.resident))
}

func TestAdapter_RegistersAllCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "adaptived", "test", prometheus.Labels{"cgroup": "demo"})
	a.Hit()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
