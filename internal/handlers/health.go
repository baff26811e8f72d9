package handlers

import (
	"net/http"

	"dailies-server/internal/startup"
)

// Health reports liveness plus coarse catalog counts.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	videoCount := 0
	if h.legacy != nil {
		videoCount = h.legacy.Len()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"videoCount":   videoCount,
		"projectCount": len(h.registry.List()),
		"version":      startup.Version,
	})
}

// Version returns full build information.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, startup.GetBuildInfo())
}
