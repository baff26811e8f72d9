package metrics

import (
	"net/http"
	"time"

	"dailies-server/internal/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve starts the Prometheus metrics endpoint on its own port so scrapes
// never contend with media traffic. Blocks; run in a goroutine.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logging.Info("metrics server listening on :%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Error("metrics server error: %v", err)
	}
}
