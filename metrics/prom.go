package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const siteLabel = "site"

// Prom holds Prometheus vectors shared by all dispatch sites. Each site gets
// its own label value through Site.
type Prom struct {
	hit       *prometheus.CounterVec
	miss      *prometheus.CounterVec
	insert    *prometheus.CounterVec
	collision *prometheus.CounterVec
	rearrange *prometheus.CounterVec
	tableSize *prometheus.GaugeVec
	logSize   *prometheus.GaugeVec
}

// NewProm creates the vectors and registers them on reg. Registering twice on
// the same registerer panics, so call it once per process or registry.
func NewProm(reg prometheus.Registerer, namespace string) *Prom {
	makeC := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      name,
			Help:      help,
		}, []string{siteLabel})
	}
	makeG := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      name,
			Help:      help,
		}, []string{siteLabel})
	}

	p := &Prom{
		hit:       makeC("hit_total", "Number of fast-path cache hits (hit tracing only)"),
		miss:      makeC("miss_total", "Number of cache misses"),
		insert:    makeC("insert_total", "Number of identities added to the table"),
		collision: makeC("collision_total", "Number of misses on a slot held by another identity"),
		rearrange: makeC("rearrange_total", "Number of cache rearrangements"),
		tableSize: makeG("table_size", "Number of identities in the table"),
		logSize:   makeG("log_size", "Base-2 logarithm of the cache size"),
	}

	reg.MustRegister(
		p.hit, p.miss, p.insert, p.collision, p.rearrange, p.tableSize, p.logSize,
	)
	return p
}

// Site returns the metrics sink for one dispatch site.
func (p *Prom) Site(name string) Interface {
	return promSite{
		hit:       p.hit.WithLabelValues(name),
		miss:      p.miss.WithLabelValues(name),
		insert:    p.insert.WithLabelValues(name),
		collision: p.collision.WithLabelValues(name),
		rearrange: p.rearrange.WithLabelValues(name),
		tableSize: p.tableSize.WithLabelValues(name),
		logSize:   p.logSize.WithLabelValues(name),
	}
}

type promSite struct {
	hit       prometheus.Counter
	miss      prometheus.Counter
	insert    prometheus.Counter
	collision prometheus.Counter
	rearrange prometheus.Counter
	tableSize prometheus.Gauge
	logSize   prometheus.Gauge
}

func (s promSite) IncHit()       { s.hit.Inc() }
func (s promSite) IncMiss()      { s.miss.Inc() }
func (s promSite) IncInsert()    { s.insert.Inc() }
func (s promSite) IncCollision() { s.collision.Inc() }
func (s promSite) IncRearrange() { s.rearrange.Inc() }

func (s promSite) SetTableSize(n int) {
	if n >= 0 {
		s.tableSize.Set(float64(n))
	}
}

func (s promSite) SetLogSize(n int) {
	if n >= 0 {
		s.logSize.Set(float64(n))
	}
}
