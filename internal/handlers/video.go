package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"dailies-server/internal/catalog"
	"dailies-server/internal/errs"
	"dailies-server/internal/logging"
	"dailies-server/internal/streaming"
)

// ListVideos returns a project's catalog entries in index order.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalogFor(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	listVideos(w, cat)
}

// GetVideo returns one catalog entry by filename.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat, err := h.catalogFor(r.Context(), vars["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	getVideo(w, cat, vars["id"])
}

// VideoExists reports whether a filename is catalogued and whether its
// source file is still on disk.
func (h *Handlers) VideoExists(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat, err := h.catalogFor(r.Context(), vars["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	videoExists(w, cat, vars["id"])
}

// StreamVideo serves a project video with byte-range support.
func (h *Handlers) StreamVideo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat, err := h.catalogFor(r.Context(), vars["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	streamVideo(w, r, cat, vars["id"])
}

// GetProjectIndex serves the raw filename-to-entry index with key order
// preserved.
func (h *Handlers) GetProjectIndex(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalogFor(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat.Index())
}

// Legacy single-directory endpoints. These serve the flat VIDEO_DIR catalog
// with the same semantics as the project-scoped routes.

func (h *Handlers) legacyCatalog(w http.ResponseWriter) *catalog.Catalog {
	if h.legacy == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Success: false,
			Error:   http.StatusText(http.StatusServiceUnavailable),
			Message: "legacy video directory is not available",
		})
		return nil
	}
	return h.legacy
}

// ListLegacyVideos returns the flat-directory catalog entries.
func (h *Handlers) ListLegacyVideos(w http.ResponseWriter, r *http.Request) {
	if cat := h.legacyCatalog(w); cat != nil {
		listVideos(w, cat)
	}
}

// GetLegacyVideo returns one flat-directory entry by filename.
func (h *Handlers) GetLegacyVideo(w http.ResponseWriter, r *http.Request) {
	if cat := h.legacyCatalog(w); cat != nil {
		getVideo(w, cat, mux.Vars(r)["id"])
	}
}

// LegacyVideoExists reports catalog and on-disk presence for a
// flat-directory file.
func (h *Handlers) LegacyVideoExists(w http.ResponseWriter, r *http.Request) {
	if cat := h.legacyCatalog(w); cat != nil {
		videoExists(w, cat, mux.Vars(r)["id"])
	}
}

// StreamLegacyVideo serves a flat-directory video with byte-range support.
func (h *Handlers) StreamLegacyVideo(w http.ResponseWriter, r *http.Request) {
	if cat := h.legacyCatalog(w); cat != nil {
		streamVideo(w, r, cat, mux.Vars(r)["id"])
	}
}

// GetLegacyIndex serves the flat-directory index.
func (h *Handlers) GetLegacyIndex(w http.ResponseWriter, r *http.Request) {
	if cat := h.legacyCatalog(w); cat != nil {
		writeJSON(w, http.StatusOK, cat.Index())
	}
}

// RefreshLegacy rebuilds the flat-directory catalog.
func (h *Handlers) RefreshLegacy(w http.ResponseWriter, r *http.Request) {
	cat := h.legacyCatalog(w)
	if cat == nil {
		return
	}
	if err := cat.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	logging.Info("refreshed legacy catalog: %d entries", cat.Len())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   cat.Len(),
	})
}

// Shared catalog-agnostic implementations.

func listVideos(w http.ResponseWriter, cat *catalog.Catalog) {
	videos := cat.Values()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"videos":  videos,
		"count":   len(videos),
	})
}

func getVideo(w http.ResponseWriter, cat *catalog.Catalog, id string) {
	entry := cat.Get(id)
	if entry == nil {
		writeError(w, errs.NotFound("video", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"video":   entry,
	})
}

func videoExists(w http.ResponseWriter, cat *catalog.Catalog, id string) {
	catalogued := cat.Has(id)
	onDisk := false
	if catalogued {
		_, err := os.Stat(cat.VideoPath(id))
		onDisk = err == nil
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"id":         id,
		"catalogued": catalogued,
		"exists":     onDisk,
	})
}

// streamVideo distinguishes an uncatalogued id from a catalogued entry whose
// source file has gone missing since the last refresh.
func streamVideo(w http.ResponseWriter, r *http.Request, cat *catalog.Catalog, id string) {
	if !cat.Has(id) {
		writeError(w, errs.NotFound("video", id))
		return
	}

	err := streaming.ServeVideo(w, r, cat.VideoPath(id))
	if err == nil {
		return
	}
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, errs.NotFound("video file", id))
		return
	}
	if errors.Is(err, streaming.ErrClientGone) {
		logging.Debug("client disconnected during stream of %s", id)
		return
	}
	// Headers are likely already sent; nothing more to do than log.
	logging.Error("error streaming %s: %v", id, err)
}
