package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailies_server_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailies_server_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dailies_server_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	CatalogImportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailies_server_catalog_imports_total",
			Help: "Total number of catalog import passes",
		},
	)

	CatalogFilesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailies_server_catalog_files_imported_total",
			Help: "Total number of files catalogued across import passes",
		},
	)

	CatalogProbeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailies_server_catalog_probe_errors_total",
			Help: "Total number of metadata probe failures during import",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailies_server_thumbnail_generations_total",
			Help: "Total number of thumbnail generation attempts by outcome",
		},
		[]string{"status"}, // "generated", "skipped", "error"
	)
)

// Project metrics
var (
	ProjectsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dailies_server_projects_total",
			Help: "Number of registered projects",
		},
	)
)

// Streaming metrics
var (
	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dailies_server_video_streams_active",
			Help: "Number of video streams currently being served",
		},
	)

	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailies_server_video_stream_bytes_total",
			Help: "Total bytes delivered by the video streaming endpoints",
		},
	)
)

// Compression metrics
var (
	CompressionJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailies_server_compression_jobs_total",
			Help: "Total number of compression jobs by outcome",
		},
		[]string{"status"}, // "success", "failed", "skipped"
	)

	CompressionJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dailies_server_compression_job_duration_seconds",
			Help:    "Compression job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

// Application info metric
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "dailies_server_app_info",
		Help: "Application information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
