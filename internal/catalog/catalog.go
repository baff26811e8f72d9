package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dailies-server/internal/logging"
	"dailies-server/internal/metrics"
	"dailies-server/internal/ordered"
	"dailies-server/internal/probe"
	"dailies-server/internal/thumbnail"
)

// mediaExtensions is the case-insensitive allow-list of eligible source
// files.
var mediaExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

// Eligible reports whether a filename is a catalogable media file.
func Eligible(filename string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Catalog maps filenames in a dailies directory to extracted metadata and
// persists that mapping as a flat JSON index. It is parameterized by its
// root paths, so the legacy single-directory mode is just a Catalog whose
// dailies directory is the flat media directory.
//
// The entry set is a function of the directory listing at the last import:
// a file removed from disk leaves a stale entry until the next refresh, and
// a refresh silently drops entries for removed files.
type Catalog struct {
	prober *probe.Prober
	thumbs *thumbnail.Generator

	projectSlug   string
	dailiesDir    string
	thumbnailsDir string
	indexPath     string

	mu      sync.RWMutex
	entries *ordered.Map[*Entry]
}

// New creates a catalog over the given paths. projectSlug may be empty for
// the legacy single-directory mode. thumbnailsDir may be empty to disable
// thumbnail generation.
func New(prober *probe.Prober, thumbs *thumbnail.Generator, projectSlug, dailiesDir, thumbnailsDir, indexPath string) *Catalog {
	return &Catalog{
		prober:        prober,
		thumbs:        thumbs,
		projectSlug:   projectSlug,
		dailiesDir:    dailiesDir,
		thumbnailsDir: thumbnailsDir,
		indexPath:     indexPath,
		entries:       ordered.NewMap[*Entry](),
	}
}

// Load reads the persisted index. When the index file is absent or cannot be
// parsed, it falls back to a full Import followed by a Save; a parse failure
// is logged and never propagated.
func (c *Catalog) Load(ctx context.Context) error {
	data, err := os.ReadFile(c.indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("error reading catalog index %s: %v", c.indexPath, err)
		} else {
			logging.Debug("catalog index does not exist: %s", c.indexPath)
		}
		return c.Refresh(ctx)
	}

	loaded := ordered.NewMap[*Entry]()
	if err := json.Unmarshal(data, loaded); err != nil {
		logging.Warn("error parsing catalog index %s, rebuilding: %v", c.indexPath, err)
		return c.Refresh(ctx)
	}

	c.mu.Lock()
	c.entries = loaded
	c.mu.Unlock()
	return nil
}

// Import rebuilds the in-memory entry set from the current directory
// listing. For each eligible file it generates a thumbnail if one does not
// exist yet and probes the file's metadata. A per-file probe failure yields
// a degraded entry with an error field instead of aborting the pass.
// The result is not persisted; use Refresh for import-and-save.
func (c *Catalog) Import(ctx context.Context) error {
	files, err := c.listMediaFiles()
	if err != nil {
		return err
	}

	fresh := ordered.NewMap[*Entry]()
	for _, filename := range files {
		fullPath := c.VideoPath(filename)

		if c.thumbs != nil && c.thumbnailsDir != "" {
			generated, err := c.thumbs.Generate(ctx, fullPath, c.ThumbnailPath(filename))
			if err != nil {
				logging.Error("failed to generate thumbnail for %s: %v", filename, err)
				metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
			} else if generated {
				metrics.ThumbnailGenerationsTotal.WithLabelValues("generated").Inc()
			} else {
				metrics.ThumbnailGenerationsTotal.WithLabelValues("skipped").Inc()
			}
		}

		info, err := c.prober.Probe(ctx, fullPath)
		if err != nil {
			logging.Error("error processing video info for %s: %v", filename, err)
			metrics.CatalogProbeErrors.Inc()
			fresh.Set(filename, errorEntry(filename, c.projectSlug, err))
			continue
		}

		entry := entryFromProbe(filename, c.projectSlug, info)
		if entry.FileSize == 0 {
			if stat, statErr := os.Stat(fullPath); statErr == nil {
				entry.FileSize = stat.Size()
			}
		}
		fresh.Set(filename, entry)
	}

	c.mu.Lock()
	c.entries = fresh
	c.mu.Unlock()

	metrics.CatalogImportsTotal.Inc()
	metrics.CatalogFilesImported.Add(float64(fresh.Len()))
	return nil
}

// Refresh re-imports unconditionally and persists the result. This is a full
// rebuild, not an incremental diff.
func (c *Catalog) Refresh(ctx context.Context) error {
	if err := c.Import(ctx); err != nil {
		return err
	}
	return c.Save()
}

// Save serializes the full entry mapping to the index file, creating parent
// directories as needed. The write is unconditional: last writer wins.
func (c *Catalog) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode catalog index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.indexPath), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := os.WriteFile(c.indexPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog index: %w", err)
	}
	return nil
}

// Get returns the entry for filename, or nil when absent.
func (c *Catalog) Get(filename string) *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, _ := c.entries.Get(filename)
	return entry
}

// Has reports whether filename is catalogued.
func (c *Catalog) Has(filename string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Has(filename)
}

// Values returns all entries in insertion order from the last load/import.
func (c *Catalog) Values() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Values()
}

// Index returns a snapshot of the full filename-to-entry mapping with key
// order preserved, for handlers that serve the raw index.
func (c *Catalog) Index() *ordered.Map[*Entry] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := ordered.NewMap[*Entry]()
	for _, key := range c.entries.Keys() {
		entry, _ := c.entries.Get(key)
		snapshot.Set(key, entry)
	}
	return snapshot
}

// Len returns the number of catalogued entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Len()
}

// VideoPath returns the full path of a source file under the dailies
// directory.
func (c *Catalog) VideoPath(filename string) string {
	return filepath.Join(c.dailiesDir, filename)
}

// ThumbnailPath returns where the thumbnail for filename lives.
func (c *Catalog) ThumbnailPath(filename string) string {
	return thumbnail.PathFor(c.thumbnailsDir, filename)
}

// HasThumbnail reports whether a thumbnail file exists for filename.
func (c *Catalog) HasThumbnail(filename string) bool {
	if c.thumbnailsDir == "" {
		return false
	}
	_, err := os.Stat(c.ThumbnailPath(filename))
	return err == nil
}

// listMediaFiles returns the eligible filenames in the dailies directory.
// A missing directory is treated as empty rather than an error so a project
// whose dailies folder was removed still loads.
func (c *Catalog) listMediaFiles() ([]string, error) {
	entries, err := os.ReadDir(c.dailiesDir)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("dailies directory does not exist: %s", c.dailiesDir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dailies directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if Eligible(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
