package catalog

import (
	"strconv"
	"time"

	"dailies-server/internal/probe"
)

// VideoStream is the extracted video stream summary for an entry.
type VideoStream struct {
	Codec     string  `json:"codec"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frameRate"`
	BitRate   int64   `json:"bitRate,omitempty"`
}

// AudioStream is the extracted audio stream summary for an entry.
type AudioStream struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sampleRate,omitempty"`
	Channels   int    `json:"channels"`
	BitRate    int64  `json:"bitRate,omitempty"`
}

// Entry is one catalogued media file. Entries whose metadata extraction
// failed carry only the identifying fields plus Error; the catalog is
// complete-but-possibly-degraded rather than partial-but-clean.
type Entry struct {
	Filename        string       `json:"filename"`
	Project         string       `json:"project,omitempty"`
	Video           *VideoStream `json:"video,omitempty"`
	Audio           *AudioStream `json:"audio,omitempty"`
	DurationSeconds float64      `json:"durationSeconds,omitempty"`
	FileSize        int64        `json:"fileSize,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	Error           string       `json:"error,omitempty"`
}

// entryFromProbe builds a catalog entry from ffprobe output.
func entryFromProbe(filename, projectSlug string, info *probe.Info) *Entry {
	entry := &Entry{
		Filename:        filename,
		Project:         projectSlug,
		DurationSeconds: info.DurationSeconds(),
		FileSize:        parseInt64(info.Format.Size),
		CreatedAt:       info.CreationTime(time.Now().UTC()),
	}

	if vs := info.VideoStream(); vs != nil {
		rate := probe.FrameRate(vs.RFrameRate)
		if rate == 0 {
			rate = probe.FrameRate(vs.AvgFrameRate)
		}
		entry.Video = &VideoStream{
			Codec:     vs.CodecName,
			Width:     vs.Width,
			Height:    vs.Height,
			FrameRate: rate,
			BitRate:   parseInt64(vs.BitRate),
		}
	}

	if as := info.AudioStream(); as != nil {
		entry.Audio = &AudioStream{
			Codec:      as.CodecName,
			SampleRate: int(parseInt64(as.SampleRate)),
			Channels:   as.Channels,
			BitRate:    parseInt64(as.BitRate),
		}
	}

	return entry
}

// errorEntry builds the degraded entry recorded when probing fails.
func errorEntry(filename, projectSlug string, err error) *Entry {
	return &Entry{
		Filename:  filename,
		Project:   projectSlug,
		CreatedAt: time.Now().UTC(),
		Error:     err.Error(),
	}
}

func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
