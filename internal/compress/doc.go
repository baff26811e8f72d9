// Package compress applies named ffmpeg profiles to catalog entries.
//
// Profiles come from a configuration file loaded once at startup; a missing
// file disables compression rather than failing the process. Batch runs are
// strictly sequential so at most one external encode runs at a time, and
// progress is scraped best-effort from the tool's stderr time markers.
package compress
