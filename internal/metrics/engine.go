package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
)

var (
	ComplaintsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "complaints_total",
			Help:      "Complaints filed, by context and whether a new entry was inserted",
		},
		[]string{"context", "result"}, // "inserted" / "refreshed"
	)

	MemberBlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "member_blocks_total",
			Help:      "Group members blocked automatically",
		},
	)

	SweepRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "sweep_removed_ids_total",
			Help:      "Stale relationship ids removed by the sweeper",
		},
		[]string{"step"},
	)

	SweepOwnersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "sweep_owners_total",
			Help:      "Profiles reconciled by the sweeper",
		},
		[]string{"status"}, // "ok" / "failed"
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers the engine counters. Call once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ComplaintsTotal)
	prometheus.MustRegister(MemberBlocksTotal)
	prometheus.MustRegister(SweepRemovedTotal)
	prometheus.MustRegister(SweepOwnersTotal)
	engineMetricsRegistered = true
}

// Engine feeds the counters from engine callbacks.
type Engine struct{}

func (Engine) ComplaintFiled(kind enums.ComplaintContext, inserted bool) {
	result := "refreshed"
	if inserted {
		result = "inserted"
	}
	ComplaintsTotal.WithLabelValues(string(kind), result).Inc()
}

func (Engine) MemberBlocked() {
	MemberBlocksTotal.Inc()
}

func (Engine) OwnerSwept(removed map[string]int, failed bool) {
	status := "ok"
	if failed {
		status = "failed"
	}
	SweepOwnersTotal.WithLabelValues(status).Inc()
	for step, n := range removed {
		if n > 0 {
			SweepRemovedTotal.WithLabelValues(step).Add(float64(n))
		}
	}
}
