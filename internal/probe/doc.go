// Package probe extracts media metadata (streams, duration, creation time)
// from video files using the external ffprobe tool.
package probe
