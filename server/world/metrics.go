package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics surfaced alongside the tick loop: tick duration, loaded
// chunk count and the ticks-per-second implied by the configured tick
// interval, each labelled by dimension so a
// server running Overworld/Nether/End side by side reports them separately.
var (
	metricTickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxel_world_tick_duration_seconds",
		Help:    "Time spent executing a single world tick.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dimension"})

	metricLoadedChunks = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voxel_world_loaded_chunks",
		Help: "Chunks currently resident in a World.",
	}, []string{"dimension"})

	metricTPS = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voxel_world_tps",
		Help: "Ticks per second implied by the configured tick interval, set once per tick; ticks that overrun are not reflected.",
	}, []string{"dimension"})
)

// recordTick updates the tick-loop metrics for one completed tick that took
// d to run, against the World's configured tick interval.
func (w *World) recordTick(d time.Duration) {
	dim := w.conf.Dim.String()
	metricTickDuration.WithLabelValues(dim).Observe(d.Seconds())
	metricLoadedChunks.WithLabelValues(dim).Set(float64(w.LoadedChunkCount()))
	if interval := w.tickRate.Interval(); interval > 0 {
		metricTPS.WithLabelValues(dim).Set(float64(time.Second) / float64(interval))
	}
}
