package compress

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dailies-server/internal/catalog"
	"dailies-server/internal/command"
	"dailies-server/internal/errs"
	"dailies-server/internal/logging"
	"dailies-server/internal/metrics"
)

// Result describes the outcome of compressing one catalog entry.
type Result struct {
	VideoID          string `json:"videoId"`
	Profile          string `json:"profile"`
	InputPath        string `json:"inputPath,omitempty"`
	OutputPath       string `json:"outputPath,omitempty"`
	InputSize        int64  `json:"inputSize,omitempty"`
	OutputSize       int64  `json:"outputSize,omitempty"`
	CompressionRatio string `json:"compressionRatio,omitempty"`
	Skipped          bool   `json:"skipped,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Error            string `json:"error,omitempty"`
	Success          bool   `json:"success"`
}

// BatchResult aggregates a sequential compress-all run.
type BatchResult struct {
	Profile    string   `json:"profile"`
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Compressor applies named profiles to catalog entries by invoking the
// external transcoding tool, one file at a time.
type Compressor struct {
	runner  command.Runner
	catalog *catalog.Catalog
	config  *Config
	workdir string
	parser  ProgressParser
	tracker *Tracker
}

// New creates a Compressor over the given catalog. workdir anchors the
// relative output directory from the config.
func New(runner command.Runner, cat *catalog.Catalog, config *Config, workdir string) *Compressor {
	return &Compressor{
		runner:  runner,
		catalog: cat,
		config:  config,
		workdir: workdir,
		parser:  NewTimeMarkerParser(),
		tracker: NewTracker(),
	}
}

// Enabled reports whether any profiles were loaded. With an absent config
// file compression degrades to a disabled state instead of crashing.
func (c *Compressor) Enabled() bool {
	return len(c.config.Profiles) > 0
}

// Profiles returns all loaded profiles.
func (c *Compressor) Profiles() map[string]Profile {
	return c.config.Profiles
}

// WorkspaceProfiles returns the workspace-category profiles.
func (c *Compressor) WorkspaceProfiles() map[string]Profile {
	return c.config.WorkspaceProfiles()
}

// DefaultProfile returns the configured default profile name.
func (c *Compressor) DefaultProfile() string {
	return c.config.DefaultProfile
}

// Tracker exposes the in-flight progress snapshots.
func (c *Compressor) Tracker() *Tracker {
	return c.tracker
}

// OutputPath returns where a compressed rendition of videoID under
// profileName is written.
func (c *Compressor) OutputPath(videoID, profileName string) string {
	base := strings.TrimSuffix(videoID, filepath.Ext(videoID))
	return filepath.Join(c.workdir, c.config.OutputDir, profileName, base+"_"+profileName+".mp4")
}

// CompressOne applies a profile to a single catalog entry. An empty
// profileName falls back to the configured default. When the output already
// exists and overwriting is disallowed, the call short-circuits with a
// skipped result instead of re-encoding. A non-zero tool exit surfaces as an
// ExternalToolError carrying the exit code.
func (c *Compressor) CompressOne(ctx context.Context, videoID, profileName string) (*Result, error) {
	if profileName == "" {
		profileName = c.config.DefaultProfile
	}

	profile, ok := c.config.Profiles[profileName]
	if !ok {
		return nil, errs.NotFound("compression profile", profileName)
	}
	if !c.catalog.Has(videoID) {
		return nil, errs.NotFound("video", videoID)
	}

	inputPath := c.catalog.VideoPath(videoID)
	outputPath := c.OutputPath(videoID, profileName)

	if _, err := os.Stat(outputPath); err == nil && !c.config.OverwriteExisting {
		logging.Info("skipping %s: output already exists at %s", videoID, outputPath)
		metrics.CompressionJobsTotal.WithLabelValues("skipped").Inc()
		return &Result{
			VideoID:    videoID,
			Profile:    profileName,
			InputPath:  inputPath,
			OutputPath: outputPath,
			Skipped:    true,
			Reason:     "output already exists",
			Success:    true,
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var totalSeconds float64
	if entry := c.catalog.Get(videoID); entry != nil {
		totalSeconds = entry.DurationSeconds
	}

	logging.Info("starting compression: %s -> %s", videoID, profileName)
	started := time.Now()
	defer c.tracker.Clear(videoID)

	args := buildArgs(inputPath, outputPath, profile)
	result, err := c.runner.RunStream(ctx, func(line string) {
		if elapsed, ok := c.parser.Parse(line); ok && totalSeconds > 0 {
			c.tracker.Set(videoID, profileName, elapsed, totalSeconds)
		}
	}, c.config.FFmpegPath, args...)
	if err != nil {
		metrics.CompressionJobsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	if result.ExitCode != 0 {
		metrics.CompressionJobsTotal.WithLabelValues("failed").Inc()
		return nil, &errs.ExternalToolError{
			Tool:     c.config.FFmpegPath,
			ExitCode: result.ExitCode,
			Stderr:   tail(result.Stderr, 1024),
		}
	}

	metrics.CompressionJobsTotal.WithLabelValues("success").Inc()
	metrics.CompressionJobDuration.Observe(time.Since(started).Seconds())

	out := &Result{
		VideoID:    videoID,
		Profile:    profileName,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Success:    true,
	}
	if stat, err := os.Stat(inputPath); err == nil {
		out.InputSize = stat.Size()
	}
	if stat, err := os.Stat(outputPath); err == nil {
		out.OutputSize = stat.Size()
	}
	if out.InputSize > 0 {
		reduction := float64(out.InputSize-out.OutputSize) / float64(out.InputSize) * 100
		out.CompressionRatio = fmt.Sprintf("%.2f%%", reduction)
	}

	logging.Info("compression completed: %s (%s reduction)", videoID, out.CompressionRatio)
	return out, nil
}

// CompressAll applies a profile to every catalog entry, strictly
// sequentially: one file fully completes before the next starts, and a
// single failure is captured in its result entry without halting the batch.
func (c *Compressor) CompressAll(ctx context.Context, profileName string) (*BatchResult, error) {
	if profileName == "" {
		profileName = c.config.DefaultProfile
	}
	if _, ok := c.config.Profiles[profileName]; !ok {
		return nil, errs.NotFound("compression profile", profileName)
	}

	entries := c.catalog.Values()
	logging.Info("starting batch compression of %d videos with profile %s", len(entries), profileName)

	batch := &BatchResult{
		Profile: profileName,
		Results: make([]Result, 0, len(entries)),
	}
	for _, entry := range entries {
		result, err := c.CompressOne(ctx, entry.Filename, profileName)
		if err != nil {
			logging.Error("failed to compress %s: %v", entry.Filename, err)
			batch.Results = append(batch.Results, Result{
				VideoID: entry.Filename,
				Profile: profileName,
				Error:   err.Error(),
				Success: false,
			})
			batch.Failed++
			continue
		}
		batch.Results = append(batch.Results, *result)
		batch.Successful++
	}
	batch.Total = len(batch.Results)

	logging.Info("batch compression completed: %d successful, %d failed", batch.Successful, batch.Failed)
	return batch, nil
}

// tail returns the last max bytes of s for error reporting.
func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
