package handlers

import (
	"errors"
	"net/http"
	"os"

	"dailies-server/internal/errs"
)

// RunAudit performs a fresh filesystem audit and returns the report.
func (h *Handlers) RunAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.monitor.Run()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}

// GetLatestAudit returns the most recently persisted report without walking
// the tree again.
func (h *Handlers) GetLatestAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.monitor.GetLatest()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, errs.NotFound("monitoring report", h.monitor.ReportPath()))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
