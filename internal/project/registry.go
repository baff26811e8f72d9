package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"dailies-server/internal/errs"
	"dailies-server/internal/logging"
	"dailies-server/internal/ordered"
)

const (
	registryFileName    = "projects.json"
	databaseFileName    = "database.json"
	preferencesFileName = "preferences.json"
	dailiesDirName      = "dailies"
	thumbnailsDirName   = "thumbnails"

	// MaxSlugLength bounds generated and supplied slugs.
	MaxSlugLength = 50
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Record is the registry entry persisted in projects.json.
type Record struct {
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Created      time.Time `json:"created"`
	LastAccessed time.Time `json:"lastAccessed"`
	Path         string    `json:"path"`
}

// Summary is the shape returned by List.
type Summary struct {
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Created      time.Time `json:"created"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// Paths holds the filesystem layout of a project workspace.
type Paths struct {
	Root        string `json:"root"`
	Dailies     string `json:"dailies"`
	Thumbnails  string `json:"thumbnails"`
	Database    string `json:"database"`
	Preferences string `json:"preferences"`
}

// Project is a registry record merged with its preferences file and derived
// paths, as returned by Get.
type Project struct {
	Record
	Preferences Preferences `json:"preferences"`
	Paths       Paths       `json:"paths"`
}

// Stats reports live filesystem and catalog counts for a project.
type Stats struct {
	Videos          int `json:"videos"`
	Thumbnails      int `json:"thumbnails"`
	DatabaseEntries int `json:"databaseEntries"`
}

// Registry maps project slugs to isolated workspace directories under a
// single root. The backing projects.json file keeps insertion order.
type Registry struct {
	root         string
	registryFile string

	mu       sync.Mutex
	projects *ordered.Map[*Record]
}

// NewRegistry loads (or initializes) the registry at workspaceRoot.
// A corrupt projects.json is logged and treated as empty.
func NewRegistry(workspaceRoot string) (*Registry, error) {
	if err := os.MkdirAll(workspaceRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}

	r := &Registry{
		root:         workspaceRoot,
		registryFile: filepath.Join(workspaceRoot, registryFileName),
		projects:     ordered.NewMap[*Record](),
	}

	data, err := os.ReadFile(r.registryFile)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read projects registry: %w", err)
	}
	if err := json.Unmarshal(data, r.projects); err != nil {
		logging.Warn("error loading projects file, starting empty: %v", err)
		r.projects = ordered.NewMap[*Record]()
	}
	return r, nil
}

// Root returns the workspace root directory.
func (r *Registry) Root() string {
	return r.root
}

// GenerateSlug derives a slug from a display name: lowercased, runs of
// non-alphanumerics collapsed to single hyphens, trimmed, truncated to
// MaxSlugLength. The result is not guaranteed valid (an all-symbol name
// yields an empty slug); Create validates it.
func GenerateSlug(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return slug
}

// ValidSlug reports whether slug matches the slug grammar.
func ValidSlug(slug string) bool {
	return len(slug) <= MaxSlugLength && slugPattern.MatchString(slug)
}

// Dir returns the workspace directory for a slug.
func (r *Registry) Dir(slug string) string {
	return filepath.Join(r.root, slug)
}

// DailiesDir returns the source media directory for a slug.
func (r *Registry) DailiesDir(slug string) string {
	return filepath.Join(r.Dir(slug), dailiesDirName)
}

// ThumbnailsDir returns the derived thumbnails directory for a slug.
func (r *Registry) ThumbnailsDir(slug string) string {
	return filepath.Join(r.Dir(slug), thumbnailsDirName)
}

// DatabasePath returns the catalog index file for a slug.
func (r *Registry) DatabasePath(slug string) string {
	return filepath.Join(r.Dir(slug), databaseFileName)
}

// PreferencesPath returns the preferences file for a slug.
func (r *Registry) PreferencesPath(slug string) string {
	return filepath.Join(r.Dir(slug), preferencesFileName)
}

func (r *Registry) paths(slug string) Paths {
	return Paths{
		Root:        r.Dir(slug),
		Dailies:     r.DailiesDir(slug),
		Thumbnails:  r.ThumbnailsDir(slug),
		Database:    r.DatabasePath(slug),
		Preferences: r.PreferencesPath(slug),
	}
}

// Exists reports whether a project with the slug is registered.
func (r *Registry) Exists(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects.Has(slug)
}

// Create allocates a new project workspace. When customSlug is empty a slug
// is derived from name. The directory tree and seed files are created before
// the project is registered; on any failure the partial tree is removed so no
// orphaned state remains.
func (r *Registry) Create(name, customSlug string) (*Project, error) {
	slug := customSlug
	if slug == "" {
		slug = GenerateSlug(name)
	}
	if !ValidSlug(slug) {
		return nil, errs.Validationf("invalid project slug: %q (lowercase letters, numbers, and hyphens only, max %d chars)", slug, MaxSlugLength)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.projects.Has(slug) {
		return nil, errs.Conflictf("project with slug '%s' already exists", slug)
	}

	projectDir := r.Dir(slug)
	if err := r.seedWorkspace(name, slug); err != nil {
		if rmErr := os.RemoveAll(projectDir); rmErr != nil {
			logging.Warn("failed to clean up partial project %s: %v", slug, rmErr)
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	now := time.Now().UTC()
	record := &Record{
		Name:         name,
		Slug:         slug,
		Created:      now,
		LastAccessed: now,
		Path:         projectDir,
	}
	r.projects.Set(slug, record)

	if err := r.save(); err != nil {
		r.projects.Delete(slug)
		if rmErr := os.RemoveAll(projectDir); rmErr != nil {
			logging.Warn("failed to clean up partial project %s: %v", slug, rmErr)
		}
		return nil, err
	}

	logging.Info("created project '%s' with slug '%s'", name, slug)
	return &Project{
		Record:      *record,
		Preferences: DefaultPreferences(name, slug),
		Paths:       r.paths(slug),
	}, nil
}

// seedWorkspace creates the directory tree and the two seed files.
func (r *Registry) seedWorkspace(name, slug string) error {
	for _, dir := range []string{r.Dir(slug), r.DailiesDir(slug), r.ThumbnailsDir(slug)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	prefs := DefaultPreferences(name, slug)
	prefsJSON, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.PreferencesPath(slug), prefsJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	if err := os.WriteFile(r.DatabasePath(slug), []byte("{}"), 0o644); err != nil {
		return fmt.Errorf("failed to write empty catalog index: %w", err)
	}
	return nil
}

// Get returns a project with its preferences merged in. A missing or corrupt
// preferences file is logged and yields the defaults.
func (r *Registry) Get(slug string) (*Project, error) {
	r.mu.Lock()
	record, ok := r.projects.Get(slug)
	r.mu.Unlock()
	if !ok {
		return nil, errs.NotFound("project", slug)
	}

	prefs := DefaultPreferences(record.Name, slug)
	data, err := os.ReadFile(r.PreferencesPath(slug))
	if err == nil {
		if err := json.Unmarshal(data, &prefs); err != nil {
			logging.Warn("error loading preferences for project '%s': %v", slug, err)
		}
	} else if !os.IsNotExist(err) {
		logging.Warn("error reading preferences for project '%s': %v", slug, err)
	}

	return &Project{
		Record:      *record,
		Preferences: prefs,
		Paths:       r.paths(slug),
	}, nil
}

// List returns project summaries in registry insertion order.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.projects.Values()
	summaries := make([]Summary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, Summary{
			Slug:         record.Slug,
			Name:         record.Name,
			Created:      record.Created,
			LastAccessed: record.LastAccessed,
		})
	}
	return summaries
}

// Rename updates the display name only; the slug and paths are immutable.
// The preferences file is kept in sync when present.
func (r *Registry) Rename(slug, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.projects.Get(slug)
	if !ok {
		return errs.NotFound("project", slug)
	}
	record.Name = newName
	if err := r.save(); err != nil {
		return err
	}

	prefsPath := r.PreferencesPath(slug)
	data, err := os.ReadFile(prefsPath)
	if err == nil {
		var prefs Preferences
		if err := json.Unmarshal(data, &prefs); err == nil {
			prefs.Name = newName
			if prefsJSON, err := json.MarshalIndent(prefs, "", "  "); err == nil {
				if err := os.WriteFile(prefsPath, prefsJSON, 0o644); err != nil {
					logging.Warn("failed to update preferences name for '%s': %v", slug, err)
				}
			}
		}
	}

	logging.Info("renamed project '%s' to '%s'", slug, newName)
	return nil
}

// Delete removes the project workspace recursively and drops the registry
// entry. This is irreversible.
func (r *Registry) Delete(slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.projects.Has(slug) {
		return errs.NotFound("project", slug)
	}

	if err := os.RemoveAll(r.Dir(slug)); err != nil {
		return fmt.Errorf("failed to delete project workspace: %w", err)
	}
	r.projects.Delete(slug)
	if err := r.save(); err != nil {
		return err
	}

	logging.Info("deleted project '%s'", slug)
	return nil
}

// Touch updates the project's last-accessed timestamp and persists it
// immediately. Unknown slugs are ignored.
func (r *Registry) Touch(slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.projects.Get(slug)
	if !ok {
		return
	}
	record.LastAccessed = time.Now().UTC()
	if err := r.save(); err != nil {
		logging.Warn("failed to persist last-accessed for '%s': %v", slug, err)
	}
}

// videoExtensions mirrors the catalog's eligibility allow-list.
var videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".avi": true}

// Stats recomputes counts from the filesystem and the catalog index on every
// call; nothing is cached.
func (r *Registry) Stats(slug string) (Stats, error) {
	if !r.Exists(slug) {
		return Stats{}, errs.NotFound("project", slug)
	}

	var stats Stats

	if entries, err := os.ReadDir(r.DailiesDir(slug)); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				stats.Videos++
			}
		}
	}

	if entries, err := os.ReadDir(r.ThumbnailsDir(slug)); err == nil {
		for _, entry := range entries {
			name := strings.ToLower(entry.Name())
			if strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".png") {
				stats.Thumbnails++
			}
		}
	}

	if data, err := os.ReadFile(r.DatabasePath(slug)); err == nil {
		index := ordered.NewMap[json.RawMessage]()
		if err := json.Unmarshal(data, index); err == nil {
			stats.DatabaseEntries = index.Len()
		} else {
			logging.Warn("error reading catalog index for stats of '%s': %v", slug, err)
		}
	}

	return stats, nil
}

// save writes projects.json. Callers must hold r.mu.
func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.projects, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode projects registry: %w", err)
	}
	if err := os.WriteFile(r.registryFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write projects registry: %w", err)
	}
	return nil
}
