package project

import "time"

// DefaultWorkspaceProfile is the compression profile assumed when a project
// has no explicit preference.
const DefaultWorkspaceProfile = "workspace_basic"

// Settings are the per-project tunables stored in preferences.json.
type Settings struct {
	VideoFormat            string `json:"videoFormat"`
	CompressionProfile     string `json:"compressionProfile"`
	ThumbnailQuality       string `json:"thumbnailQuality"`
	AutoGenerateThumbnails bool   `json:"autoGenerateThumbnails"`
}

// Metadata is free-form descriptive information about a project.
type Metadata struct {
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	Collaborators []string `json:"collaborators"`
}

// Preferences is the content of a project's preferences.json.
type Preferences struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Created  time.Time `json:"created"`
	Settings Settings  `json:"settings"`
	Metadata Metadata  `json:"metadata"`
}

// DefaultPreferences returns the seed preferences for a new project.
func DefaultPreferences(name, slug string) Preferences {
	return Preferences{
		Name:    name,
		Slug:    slug,
		Created: time.Now().UTC(),
		Settings: Settings{
			VideoFormat:            "MP4",
			CompressionProfile:     DefaultWorkspaceProfile,
			ThumbnailQuality:       "medium",
			AutoGenerateThumbnails: true,
		},
		Metadata: Metadata{
			Tags:          []string{},
			Collaborators: []string{},
		},
	}
}

// WorkspaceProfile returns the project's preferred compression profile,
// falling back to the default when unset.
func (p *Project) WorkspaceProfile() string {
	if p.Preferences.Settings.CompressionProfile != "" {
		return p.Preferences.Settings.CompressionProfile
	}
	return DefaultWorkspaceProfile
}
