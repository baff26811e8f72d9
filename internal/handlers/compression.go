package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dailies-server/internal/compress"
	"dailies-server/internal/errs"
	"dailies-server/internal/project"
)

// compressorForRequest resolves which compressor a compression request
// targets: the project named by the ?project= query, or the legacy
// flat-directory compressor when unscoped.
func (h *Handlers) compressorForRequest(w http.ResponseWriter, r *http.Request) *compress.Compressor {
	if slug := r.URL.Query().Get("project"); slug != "" {
		comp, err := h.compressorFor(r.Context(), slug)
		if err != nil {
			writeError(w, err)
			return nil
		}
		return comp
	}

	if h.legacyCompressor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Success: false,
			Error:   http.StatusText(http.StatusServiceUnavailable),
			Message: "legacy video directory is not available",
		})
		return nil
	}
	return h.legacyCompressor
}

// requireCompression rejects requests when no profiles are loaded.
func requireCompression(w http.ResponseWriter, comp *compress.Compressor) bool {
	if !comp.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Success: false,
			Error:   http.StatusText(http.StatusServiceUnavailable),
			Message: "compression is not configured",
		})
		return false
	}
	return true
}

type compressRequest struct {
	Profile string `json:"profile,omitempty"`
}

// GetCompressionProfiles lists every loaded profile and the default.
func (h *Handlers) GetCompressionProfiles(w http.ResponseWriter, r *http.Request) {
	comp := h.compressorForRequest(w, r)
	if comp == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"enabled":  comp.Enabled(),
		"default":  comp.DefaultProfile(),
		"profiles": comp.Profiles(),
	})
}

// GetWorkspaceProfiles lists only the workspace-category profiles.
func (h *Handlers) GetWorkspaceProfiles(w http.ResponseWriter, r *http.Request) {
	comp := h.compressorForRequest(w, r)
	if comp == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"profiles": comp.WorkspaceProfiles(),
	})
}

// CompressVideo compresses one catalog entry with the requested (or
// default) profile.
func (h *Handlers) CompressVideo(w http.ResponseWriter, r *http.Request) {
	comp := h.compressorForRequest(w, r)
	if comp == nil || !requireCompression(w, comp) {
		return
	}

	var req compressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := comp.CompressOne(r.Context(), mux.Vars(r)["id"], req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// CompressBatch compresses every catalog entry sequentially. Individual
// failures are reported per entry without aborting the batch.
func (h *Handlers) CompressBatch(w http.ResponseWriter, r *http.Request) {
	comp := h.compressorForRequest(w, r)
	if comp == nil || !requireCompression(w, comp) {
		return
	}

	var req compressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	batch, err := comp.CompressAll(r.Context(), req.Profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"batch":   batch,
	})
}

// CompressWorkspace compresses one entry with a workspace-category profile,
// defaulting to the target project's configured workspace profile.
func (h *Handlers) CompressWorkspace(w http.ResponseWriter, r *http.Request) {
	comp := h.compressorForRequest(w, r)
	if comp == nil || !requireCompression(w, comp) {
		return
	}

	var req compressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profileName := req.Profile
	if profileName == "" {
		if slug := r.URL.Query().Get("project"); slug != "" {
			proj, err := h.registry.Get(slug)
			if err != nil {
				writeError(w, err)
				return
			}
			profileName = proj.WorkspaceProfile()
		}
	}
	if profileName == "" {
		profileName = project.DefaultWorkspaceProfile
	}
	if _, ok := comp.WorkspaceProfiles()[profileName]; !ok {
		writeError(w, errs.NotFound("workspace profile", profileName))
		return
	}

	result, err := comp.CompressOne(r.Context(), mux.Vars(r)["id"], profileName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// CompressStatus returns the live progress of in-flight compression jobs.
func (h *Handlers) CompressStatus(w http.ResponseWriter, r *http.Request) {
	comp := h.compressorForRequest(w, r)
	if comp == nil {
		return
	}
	jobs := comp.Tracker().Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobs":    jobs,
		"count":   len(jobs),
	})
}
