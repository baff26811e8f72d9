package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dailies-server/internal/errs"
	"dailies-server/internal/logging"
	"dailies-server/internal/metrics"
)

type createProjectRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type updateProjectRequest struct {
	Name string `json:"name"`
}

// ListProjects returns every registered project in creation order.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects := h.registry.List()
	metrics.ProjectsTotal.Set(float64(len(projects)))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"projects": projects,
		"count":    len(projects),
	})
}

// CreateProject registers a new project and seeds its workspace. The slug is
// derived from the name unless the request supplies its own.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, errs.Validationf("project name is required"))
		return
	}

	proj, err := h.registry.Create(req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Info("created project %q (%s)", proj.Name, proj.Slug)
	metrics.ProjectsTotal.Set(float64(len(h.registry.List())))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"project": proj,
	})
}

// GetProject returns one project with merged preferences, derived paths and
// live filesystem stats.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	proj, err := h.registry.Get(slug)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := h.registry.Stats(slug)
	if err != nil {
		writeError(w, err)
		return
	}

	h.registry.Touch(slug)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"project": proj,
		"stats":   stats,
	})
}

// UpdateProject renames a project. The slug never changes after creation.
func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var req updateProjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, errs.Validationf("project name is required"))
		return
	}

	if err := h.registry.Rename(slug, req.Name); err != nil {
		writeError(w, err)
		return
	}

	proj, err := h.registry.Get(slug)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Info("renamed project %s to %q", slug, req.Name)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"project": proj,
	})
}

// DeleteProject removes a project's registry entry and its entire workspace
// directory, and drops any cached catalog.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	if err := h.registry.Delete(slug); err != nil {
		writeError(w, err)
		return
	}

	h.invalidate(slug)
	logging.Info("deleted project %s", slug)
	metrics.ProjectsTotal.Set(float64(len(h.registry.List())))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "project deleted",
	})
}

// RefreshProject rebuilds a project's catalog from the current directory
// contents and persists the fresh index.
func (h *Handlers) RefreshProject(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	cat, err := h.catalogFor(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := cat.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	logging.Info("refreshed catalog for project %s: %d entries", slug, cat.Len())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   cat.Len(),
	})
}
