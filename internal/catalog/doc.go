// Package catalog builds and persists the per-project media index: a flat
// JSON mapping from filename to metadata extracted with ffprobe, with
// thumbnails generated lazily on import.
package catalog
