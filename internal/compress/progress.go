package compress

import (
	"regexp"
	"strconv"
	"sync"
	"time"
)

// ProgressParser extracts elapsed encode time from a line of transcoder
// output. It exists as an interface so a tool with a structured progress
// channel can replace the text scraper without touching callers.
type ProgressParser interface {
	// Parse returns the elapsed seconds encoded so far and whether the line
	// carried a recognizable marker.
	Parse(line string) (float64, bool)
}

// timeMarkerParser scrapes ffmpeg's "time=HH:MM:SS.cc" status markers.
// Best effort only: a line without a marker simply produces no update.
type timeMarkerParser struct {
	re *regexp.Regexp
}

// NewTimeMarkerParser returns the default ffmpeg stderr scraper.
func NewTimeMarkerParser() ProgressParser {
	return &timeMarkerParser{
		re: regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2}(?:\.\d+)?)`),
	}
}

func (p *timeMarkerParser) Parse(line string) (float64, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	return hours*3600 + minutes*60 + seconds, true
}

// Update is a point-in-time progress snapshot for one compression job.
type Update struct {
	VideoID        string    `json:"videoId"`
	Profile        string    `json:"profile"`
	Progress       int       `json:"progress"` // 0-100
	CurrentSeconds float64   `json:"currentSeconds"`
	TotalSeconds   float64   `json:"totalSeconds"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Tracker holds the progress of in-flight compression jobs for the status
// endpoint.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*Update
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]*Update)}
}

// Set records progress for a job.
func (t *Tracker) Set(videoID, profile string, currentSeconds, totalSeconds float64) {
	progress := 0
	if totalSeconds > 0 {
		progress = int(currentSeconds / totalSeconds * 100)
		if progress > 100 {
			progress = 100
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[videoID] = &Update{
		VideoID:        videoID,
		Profile:        profile,
		Progress:       progress,
		CurrentSeconds: currentSeconds,
		TotalSeconds:   totalSeconds,
		UpdatedAt:      time.Now().UTC(),
	}
}

// Clear drops a finished job from the tracker.
func (t *Tracker) Clear(videoID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, videoID)
}

// Snapshot returns a copy of all in-flight job updates.
func (t *Tracker) Snapshot() []Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	updates := make([]Update, 0, len(t.jobs))
	for _, u := range t.jobs {
		updates = append(updates, *u)
	}
	return updates
}
