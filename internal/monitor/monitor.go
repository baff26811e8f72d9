package monitor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dailies-server/internal/logging"
)

const reportFileName = "filesizes.json"

// topCount is how many entries the largest-files and most-lines lists keep.
const topCount = 10

// textExtensions are the file types that get line counts in addition to
// sizes. Binary media files only report size.
var textExtensions = map[string]bool{
	".go": true, ".js": true, ".ts": true, ".json": true, ".md": true,
	".html": true, ".css": true, ".txt": true, ".yaml": true, ".yml": true,
	".sh": true, ".sql": true, ".xml": true, ".csv": true,
}

// defaultExcludes are path segments skipped during the walk.
var defaultExcludes = []string{
	".git", "node_modules", "var", "thumbnails",
}

// FileStat describes one audited file.
type FileStat struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Lines int    `json:"lines,omitempty"`
}

// ExtensionStats aggregates files sharing an extension.
type ExtensionStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"totalSize"`
	Lines     int   `json:"lines,omitempty"`
}

// DirectoryStats aggregates files under one top-level directory.
type DirectoryStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"totalSize"`
}

// Report is one complete audit of the monitored tree.
type Report struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Root        string                    `json:"root"`
	TotalFiles  int                       `json:"totalFiles"`
	TotalSize   int64                     `json:"totalSize"`
	TotalLines  int                       `json:"totalLines"`
	ByExtension map[string]ExtensionStats `json:"byExtension"`
	ByDirectory map[string]DirectoryStats `json:"byDirectory"`
	Largest     []FileStat                `json:"largestFiles"`
	MostLines   []FileStat                `json:"mostLines"`
}

// Monitor audits a directory tree and persists the results for later
// retrieval.
type Monitor struct {
	root      string
	outputDir string
	excludes  []string
}

// New creates a Monitor over root. Reports are written under outputDir.
func New(root, outputDir string) *Monitor {
	return &Monitor{
		root:      root,
		outputDir: outputDir,
		excludes:  defaultExcludes,
	}
}

// ReportPath returns where the latest report is persisted.
func (m *Monitor) ReportPath() string {
	return filepath.Join(m.outputDir, reportFileName)
}

// Run walks the monitored tree, builds a fresh report, and persists it.
func (m *Monitor) Run() (*Report, error) {
	start := time.Now()

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Root:        m.root,
		ByExtension: make(map[string]ExtensionStats),
		ByDirectory: make(map[string]DirectoryStats),
	}

	var files []FileStat

	err := filepath.Walk(m.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Warn("skipping %s during audit: %v", path, err)
			return nil
		}
		if info.IsDir() {
			if m.excluded(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		relPath, relErr := filepath.Rel(m.root, path)
		if relErr != nil {
			relPath = path
		}

		stat := FileStat{Path: filepath.ToSlash(relPath), Size: info.Size()}

		ext := strings.ToLower(filepath.Ext(info.Name()))
		if textExtensions[ext] {
			stat.Lines = countLines(path)
		}

		files = append(files, stat)
		report.TotalFiles++
		report.TotalSize += stat.Size
		report.TotalLines += stat.Lines

		extStats := report.ByExtension[ext]
		extStats.Count++
		extStats.TotalSize += stat.Size
		extStats.Lines += stat.Lines
		report.ByExtension[ext] = extStats

		dir := topLevelDir(relPath)
		dirStats := report.ByDirectory[dir]
		dirStats.Count++
		dirStats.TotalSize += stat.Size
		report.ByDirectory[dir] = dirStats

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", m.root, err)
	}

	report.Largest = topBy(files, func(a, b FileStat) bool { return a.Size > b.Size })
	report.MostLines = topBy(files, func(a, b FileStat) bool { return a.Lines > b.Lines })

	if err := m.save(report); err != nil {
		return nil, err
	}

	logging.Info("filesystem audit completed: %d files, %d bytes in %v",
		report.TotalFiles, report.TotalSize, time.Since(start).Round(time.Millisecond))
	return report, nil
}

// GetLatest reads the most recently persisted report. A missing report file
// returns os.ErrNotExist for the handler to translate.
func (m *Monitor) GetLatest() (*Report, error) {
	data, err := os.ReadFile(m.ReportPath())
	if err != nil {
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report file: %w", err)
	}
	return &report, nil
}

func (m *Monitor) save(report *Report) error {
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create monitoring directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.ReportPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func (m *Monitor) excluded(name string) bool {
	for _, e := range m.excludes {
		if name == e {
			return true
		}
	}
	return false
}

// topLevelDir returns the first path segment of a relative path, or "." for
// files directly under the root.
func topLevelDir(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	if i := strings.IndexByte(relPath, '/'); i >= 0 {
		return relPath[:i]
	}
	return "."
}

// topBy returns the first topCount files ordered by the given comparison.
func topBy(files []FileStat, less func(a, b FileStat) bool) []FileStat {
	sorted := make([]FileStat, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > topCount {
		sorted = sorted[:topCount]
	}
	return sorted
}

// countLines counts newline-delimited lines, tolerating a missing trailing
// newline. Unreadable files count as zero lines.
func countLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Debug("failed to close %s: %v", path, err)
		}
	}()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	return lines
}
