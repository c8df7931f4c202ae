package bufmgr

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks pin/unpin traffic for one BufMgr instance. Each BufMgr
// owns its own registry rather than registering on the global default one,
// so opening many indices in the same process (as the benchmark tool does)
// never panics on a duplicate-registration collision.
type Metrics struct {
	Registry  *prometheus.Registry
	pins      prometheus.Counter
	unpins    prometheus.Counter
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	flushes   prometheus.Counter
}

func newMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		pins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bufmgr_pins_total", Help: "Pages pinned.",
		}),
		unpins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bufmgr_unpins_total", Help: "Pages unpinned.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bufmgr_cache_hits_total", Help: "Page fetches satisfied by a resident frame.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bufmgr_cache_misses_total", Help: "Page fetches that required a disk read.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bufmgr_evictions_total", Help: "Frames evicted to make room for a new page.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bufmgr_dirty_flushes_total", Help: "Dirty pages written back to the paged file.",
		}),
	}
	reg.MustRegister(m.pins, m.unpins, m.hits, m.misses, m.evictions, m.flushes)
	return m
}
