package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"dailies-server/internal/catalog"
	"dailies-server/internal/command"
	"dailies-server/internal/compress"
	"dailies-server/internal/handlers"
	"dailies-server/internal/logging"
	"dailies-server/internal/metrics"
	"dailies-server/internal/middleware"
	"dailies-server/internal/monitor"
	"dailies-server/internal/probe"
	"dailies-server/internal/project"
	"dailies-server/internal/startup"
	"dailies-server/internal/thumbnail"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Project registry
	registryStart := time.Now()
	registry, err := project.NewRegistry(config.WorkspaceDir)
	if err != nil {
		logging.Fatal("Failed to initialize project registry: %v", err)
	}
	startup.LogRegistryInit(len(registry.List()), time.Since(registryStart))
	metrics.ProjectsTotal.Set(float64(len(registry.List())))

	// External tools
	startup.LogToolsInit(config.FFmpegPath, config.FFprobePath)
	runner := command.NewExecRunner()
	prober := probe.New(runner, config.FFprobePath)
	thumbs := thumbnail.New(runner, config.FFmpegPath)

	// Compression profiles
	compressConfig := compress.LoadConfig(config.CompressionConfig)
	startup.LogCompressionInit(len(compressConfig.Profiles) > 0, len(compressConfig.Profiles))

	// Legacy flat-directory catalog
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	var legacy *catalog.Catalog
	if config.LegacyModeEnabled {
		legacy = catalog.New(
			prober,
			thumbs,
			"",
			config.VideoDir,
			filepath.Join(config.VideoDir, "thumbnails"),
			filepath.Join(config.VideoDir, "database.json"),
		)
		if err := legacy.Load(rootCtx); err != nil {
			logging.Warn("Failed to load legacy catalog: %v", err)
		}
		if config.WatchFiles {
			go legacy.Watch(rootCtx)
		}
	}

	mon := monitor.New(config.WorkspaceDir, config.MonitoringDir)

	h := handlers.New(registry, prober, thumbs, runner, mon, compressConfig, legacy, config)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	// Middleware chain: connections -> metrics -> logging -> gzip -> routes
	var handler http.Handler = router
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}
	handler = h.TrackConnections(handler)

	if config.MetricsEnabled {
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
		go metrics.Serve(config.MetricsPort)
	}

	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Streams and batch compression can run long; no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, rootCancel)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health and version
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.HandleFunc("/version", h.Version).Methods("GET")
	r.HandleFunc("/connections", h.Connections).Methods("GET")

	// Project registry
	r.HandleFunc("/projects", h.ListProjects).Methods("GET")
	r.HandleFunc("/projects", h.CreateProject).Methods("POST")
	r.HandleFunc("/projects/{slug}", h.GetProject).Methods("GET")
	r.HandleFunc("/projects/{slug}", h.UpdateProject).Methods("PUT")
	r.HandleFunc("/projects/{slug}", h.DeleteProject).Methods("DELETE")
	r.HandleFunc("/projects/{slug}/refresh", h.RefreshProject).Methods("POST")

	// Project-scoped catalog
	r.HandleFunc("/projects/{slug}/videos", h.ListVideos).Methods("GET")
	r.HandleFunc("/projects/{slug}/project", h.GetProjectIndex).Methods("GET")
	r.HandleFunc("/projects/{slug}/video/{id}", h.GetVideo).Methods("GET")
	r.HandleFunc("/projects/{slug}/video/{id}/exists", h.VideoExists).Methods("GET")
	r.HandleFunc("/projects/{slug}/video/{id}/stream", h.StreamVideo).Methods("GET")

	// Legacy flat-directory catalog
	r.HandleFunc("/videos", h.ListLegacyVideos).Methods("GET")
	r.HandleFunc("/video/{id}", h.GetLegacyVideo).Methods("GET")
	r.HandleFunc("/video/{id}/exists", h.LegacyVideoExists).Methods("GET")
	r.HandleFunc("/video/{id}/stream", h.StreamLegacyVideo).Methods("GET")
	r.HandleFunc("/project", h.GetLegacyIndex).Methods("GET")
	r.HandleFunc("/refresh", h.RefreshLegacy).Methods("POST")

	// Compression
	r.HandleFunc("/compression/profiles", h.GetCompressionProfiles).Methods("GET")
	r.HandleFunc("/compression/workspace", h.GetWorkspaceProfiles).Methods("GET")
	r.HandleFunc("/compress/status", h.CompressStatus).Methods("GET")
	r.HandleFunc("/compress/batch", h.CompressBatch).Methods("POST")
	r.HandleFunc("/compress/workspace/{id}", h.CompressWorkspace).Methods("POST")
	r.HandleFunc("/compress/{id}", h.CompressVideo).Methods("POST")

	// Monitoring
	r.HandleFunc("/monitoring/files", h.RunAudit).Methods("GET")
	r.HandleFunc("/monitoring/files/json", h.GetLatestAudit).Methods("GET")

	return r
}

func handleShutdown(srv *http.Server, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, ctxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer ctxCancel()

	startup.LogShutdownStep("Stopping background watchers")
	cancel()
	startup.LogShutdownStepComplete("Background watchers stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
