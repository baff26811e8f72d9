package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"dailies-server/internal/command"
	"dailies-server/internal/errs"
)

// Stream describes a single media stream reported by ffprobe.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	RFrameRate   string `json:"r_frame_rate,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	SampleRate   string `json:"sample_rate,omitempty"`
	Channels     int    `json:"channels,omitempty"`
	BitRate      string `json:"bit_rate,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// Format describes the container-level metadata reported by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// Info is the parsed output of a probe run.
type Info struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// VideoStream returns the first video stream, or nil if there is none.
func (i *Info) VideoStream() *Stream {
	for idx := range i.Streams {
		if i.Streams[idx].CodecType == "video" {
			return &i.Streams[idx]
		}
	}
	return nil
}

// AudioStream returns the first audio stream, or nil if there is none.
func (i *Info) AudioStream() *Stream {
	for idx := range i.Streams {
		if i.Streams[idx].CodecType == "audio" {
			return &i.Streams[idx]
		}
	}
	return nil
}

// DurationSeconds returns the container duration in seconds, or 0 when
// ffprobe did not report one.
func (i *Info) DurationSeconds() float64 {
	if i.Format.Duration == "" {
		return 0
	}
	d, err := strconv.ParseFloat(i.Format.Duration, 64)
	if err != nil {
		return 0
	}
	return d
}

// CreationTime returns the creation_time format tag, falling back to the
// given time when the tag is absent or unparsable.
func (i *Info) CreationTime(fallback time.Time) time.Time {
	raw, ok := i.Format.Tags["creation_time"]
	if !ok {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000000Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

// FrameRate evaluates an ffprobe rational frame rate ("30000/1001") to a
// float. Returns 0 for empty or malformed input.
func FrameRate(rational string) float64 {
	var num, den float64
	if _, err := fmt.Sscanf(rational, "%g/%g", &num, &den); err == nil && den != 0 {
		return num / den
	}
	if v, err := strconv.ParseFloat(rational, 64); err == nil {
		return v
	}
	return 0
}

// Prober extracts media metadata by invoking ffprobe through a Runner.
type Prober struct {
	runner command.Runner
	tool   string
}

// New creates a Prober. tool is the ffprobe executable path or name.
func New(runner command.Runner, tool string) *Prober {
	if tool == "" {
		tool = "ffprobe"
	}
	return &Prober{runner: runner, tool: tool}
}

// Probe runs ffprobe against the file and parses its JSON output.
func (p *Prober) Probe(ctx context.Context, path string) (*Info, error) {
	result, err := p.runner.Run(ctx, p.tool,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, &errs.ExternalToolError{Tool: p.tool, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	var info Info
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}
	return &info, nil
}
