// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload cycles by result: success, error or skipped
var UploadCycles = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "osem_upload_cycles_total",
		Help: "The total number of upload cycles, by result",
	},
	[]string{"result"},
)

// Successful uploads, including empty-payload short circuits
var Uploads = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "osem_uploads_total",
		Help: "The total number of successful uploads",
	},
)

// Upload failures by kind: availability, timeout, http, transport, panic
var UploadErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "osem_upload_errors_total",
		Help: "The total number of failed upload cycles, by error kind",
	},
	[]string{"kind"},
)

var CycleDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name: "osem_cycle_duration_seconds",
		Help: "Duration of a full availability-check/collect/upload cycle",
		// The network call dominates; 30s is the client timeout ceiling
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
	},
)

var PayloadSize = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name: "osem_payload_values",
		Help: "Number of sensor values per upload payload",
		// At most five measurement channels per box
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	},
)

// Handler exposes the prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
