package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_rooms_created_total",
		Help: "Rooms created since process start.",
	})
	RoomsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_rooms_destroyed_total",
		Help: "Rooms destroyed after pruning to zero members.",
	})
	Spins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_spins_total",
		Help: "Wheel spins processed.",
	})
	MembersPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_members_pruned_total",
		Help: "Members removed by inactivity pruning.",
	})
	SnapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_snapshot_failures_total",
		Help: "Best-effort snapshot saves/deletes that failed.",
	})
	BroadcastDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_broadcast_drops_total",
		Help: "Outbound events dropped because a member channel was full.",
	})
)
