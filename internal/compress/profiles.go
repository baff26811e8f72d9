package compress

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"dailies-server/internal/logging"
)

// VideoSettings are the video-side encoder parameters of a profile.
type VideoSettings struct {
	Codec      string  `json:"codec,omitempty"`
	Bitrate    string  `json:"bitrate,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	Framerate  float64 `json:"framerate,omitempty"`
	Preset     string  `json:"preset,omitempty"`
}

// AudioSettings are the audio-side encoder parameters of a profile.
type AudioSettings struct {
	Codec   string `json:"codec,omitempty"`
	Bitrate string `json:"bitrate,omitempty"`
}

// Profile is one named compression configuration. Profiles are loaded once
// at startup and are read-only at runtime.
type Profile struct {
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Video       *VideoSettings `json:"video,omitempty"`
	Audio       *AudioSettings `json:"audio,omitempty"`
	// Options are extra ffmpeg arguments appended verbatim after the
	// profile-derived ones.
	Options []string `json:"options,omitempty"`
}

// Config is the content of compression-config.json.
type Config struct {
	FFmpegPath        string             `json:"ffmpegPath,omitempty"`
	OutputDir         string             `json:"outputDir,omitempty"`
	OverwriteExisting bool               `json:"overwriteExisting,omitempty"`
	DefaultProfile    string             `json:"defaultProfile,omitempty"`
	Profiles          map[string]Profile `json:"profiles"`
}

// DefaultOutputDir is where compressed files land relative to the working
// directory when the config does not say otherwise.
const DefaultOutputDir = "var/work/compressed"

// LoadConfig reads the compression configuration. An absent or unreadable
// file degrades compression to a disabled/empty state rather than failing
// startup.
func LoadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn("compression config file not found: %s", path)
		} else {
			logging.Error("error loading compression config: %v", err)
		}
		return &Config{Profiles: map[string]Profile{}}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.Error("error parsing compression config %s: %v", path, err)
		return &Config{Profiles: map[string]Profile{}}
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = "web"
	}

	logging.Info("loaded compression profiles: %s", strings.Join(profileNames(cfg.Profiles), ", "))
	return &cfg
}

// WorkspaceProfiles returns the subset of profiles meant for in-workspace
// proxies: category "workspace" or a workspace_ name prefix.
func (c *Config) WorkspaceProfiles() map[string]Profile {
	workspace := make(map[string]Profile)
	for name, profile := range c.Profiles {
		if profile.Category == "workspace" || strings.HasPrefix(name, "workspace_") {
			workspace[name] = profile
		}
	}
	return workspace
}

func profileNames(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildArgs translates a profile into the ffmpeg argument vector for one
// input/output pair.
func buildArgs(inputPath, outputPath string, profile Profile) []string {
	args := []string{"-y", "-i", inputPath}

	if v := profile.Video; v != nil {
		if v.Codec != "" {
			args = append(args, "-c:v", v.Codec)
		}
		if v.Bitrate != "" {
			args = append(args, "-b:v", v.Bitrate)
		}
		if v.Resolution != "" {
			args = append(args, "-s", v.Resolution)
		}
		if v.Framerate > 0 {
			args = append(args, "-r", fmt.Sprintf("%g", v.Framerate))
		}
		if v.Preset != "" {
			args = append(args, "-preset", v.Preset)
		}
	}

	if a := profile.Audio; a != nil {
		if a.Codec != "" {
			args = append(args, "-c:a", a.Codec)
		}
		if a.Bitrate != "" {
			args = append(args, "-b:a", a.Bitrate)
		}
	}

	args = append(args, profile.Options...)
	return append(args, outputPath)
}
