package handlers

import (
	"context"
	"sync"

	"dailies-server/internal/catalog"
	"dailies-server/internal/command"
	"dailies-server/internal/compress"
	"dailies-server/internal/errs"
	"dailies-server/internal/monitor"
	"dailies-server/internal/probe"
	"dailies-server/internal/project"
	"dailies-server/internal/startup"
	"dailies-server/internal/thumbnail"
)

// Handlers carries the shared dependencies of all HTTP handlers. Catalogs
// are built lazily per project slug and cached until invalidated, so there
// is no global mutable catalog.
type Handlers struct {
	registry *project.Registry
	prober   *probe.Prober
	thumbs   *thumbnail.Generator
	runner   command.Runner
	monitor  *monitor.Monitor

	compressConfig *compress.Config
	workdir        string

	// legacy is the flat-directory catalog backing the unscoped endpoints.
	// Nil when legacy mode is disabled.
	legacy           *catalog.Catalog
	legacyCompressor *compress.Compressor

	connections *connectionTracker

	mu          sync.Mutex
	catalogs    map[string]*catalog.Catalog
	compressors map[string]*compress.Compressor
}

// New wires the handler set from its dependencies.
func New(registry *project.Registry, prober *probe.Prober, thumbs *thumbnail.Generator, runner command.Runner, mon *monitor.Monitor, compressConfig *compress.Config, legacy *catalog.Catalog, config *startup.Config) *Handlers {
	h := &Handlers{
		registry:       registry,
		prober:         prober,
		thumbs:         thumbs,
		runner:         runner,
		monitor:        mon,
		compressConfig: compressConfig,
		workdir:        config.WorkDir,
		legacy:         legacy,
		connections:    newConnectionTracker(),
		catalogs:       make(map[string]*catalog.Catalog),
		compressors:    make(map[string]*compress.Compressor),
	}
	if legacy != nil {
		h.legacyCompressor = compress.New(runner, legacy, compressConfig, config.WorkDir)
	}
	return h
}

// catalogFor returns the cached catalog for slug, building and loading it on
// first access. Accessing a project bumps its lastAccessed timestamp.
func (h *Handlers) catalogFor(ctx context.Context, slug string) (*catalog.Catalog, error) {
	if !h.registry.Exists(slug) {
		return nil, errs.NotFound("project", slug)
	}

	h.mu.Lock()
	cat, ok := h.catalogs[slug]
	h.mu.Unlock()
	if ok {
		h.registry.Touch(slug)
		return cat, nil
	}

	cat = catalog.New(
		h.prober,
		h.thumbs,
		slug,
		h.registry.DailiesDir(slug),
		h.registry.ThumbnailsDir(slug),
		h.registry.DatabasePath(slug),
	)
	if err := cat.Load(ctx); err != nil {
		return nil, err
	}

	h.mu.Lock()
	// Another request may have built it concurrently; keep the first one.
	if existing, ok := h.catalogs[slug]; ok {
		cat = existing
	} else {
		h.catalogs[slug] = cat
	}
	h.mu.Unlock()

	h.registry.Touch(slug)
	return cat, nil
}

// compressorFor returns the cached compressor for slug, building its catalog
// first when needed.
func (h *Handlers) compressorFor(ctx context.Context, slug string) (*compress.Compressor, error) {
	cat, err := h.catalogFor(ctx, slug)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if comp, ok := h.compressors[slug]; ok {
		return comp, nil
	}
	comp := compress.New(h.runner, cat, h.compressConfig, h.workdir)
	h.compressors[slug] = comp
	return comp, nil
}

// invalidate drops the cached catalog and compressor for slug so the next
// access rebuilds from disk.
func (h *Handlers) invalidate(slug string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.catalogs, slug)
	delete(h.compressors, slug)
}
