package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dailies-server/internal/command"
	"dailies-server/internal/errs"
	"dailies-server/internal/logging"

	"github.com/disintegration/imaging"
)

// DefaultMaxWidth bounds generated thumbnails. Source dailies are commonly
// 4K; serving full-resolution frames to a grid view is wasteful.
const DefaultMaxWidth = 480

// frameTimestamp is where the poster frame is taken from. One second in
// avoids black lead-in frames on most camera files.
const frameTimestamp = "00:00:01.000"

// Generator produces JPEG thumbnails for video files by extracting a frame
// with ffmpeg and downscaling it.
type Generator struct {
	runner   command.Runner
	tool     string
	maxWidth int
}

// New creates a Generator. tool is the ffmpeg executable path or name.
func New(runner command.Runner, tool string) *Generator {
	if tool == "" {
		tool = "ffmpeg"
	}
	return &Generator{runner: runner, tool: tool, maxWidth: DefaultMaxWidth}
}

// PathFor returns the thumbnail path for a video filename: same base name
// with a .jpg extension inside thumbnailsDir.
func PathFor(thumbnailsDir, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return filepath.Join(thumbnailsDir, base+".jpg")
}

// Generate creates a thumbnail for videoPath at thumbPath unless one already
// exists. Existing thumbnails are never regenerated. Returns true when a new
// thumbnail was written.
func (g *Generator) Generate(ctx context.Context, videoPath, thumbPath string) (bool, error) {
	if _, err := os.Stat(thumbPath); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0o755); err != nil {
		return false, fmt.Errorf("failed to create thumbnails directory: %w", err)
	}

	framePath := thumbPath + ".frame.jpg"
	defer func() {
		if err := os.Remove(framePath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp frame %s: %v", framePath, err)
		}
	}()

	result, err := g.runner.Run(ctx, g.tool,
		"-y",
		"-i", videoPath,
		"-ss", frameTimestamp,
		"-vframes", "1",
		framePath,
	)
	if err != nil {
		return false, err
	}
	if result.ExitCode != 0 {
		return false, &errs.ExternalToolError{Tool: g.tool, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	frame, err := imaging.Open(framePath)
	if err != nil {
		return false, fmt.Errorf("failed to open extracted frame for %s: %w", videoPath, err)
	}

	if frame.Bounds().Dx() > g.maxWidth {
		frame = imaging.Resize(frame, g.maxWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(frame, thumbPath, imaging.JPEGQuality(85)); err != nil {
		return false, fmt.Errorf("failed to save thumbnail %s: %w", thumbPath, err)
	}

	logging.Debug("generated thumbnail %s", thumbPath)
	return true, nil
}
