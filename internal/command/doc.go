// Package command provides a narrow abstraction for invoking external tools
// (ffmpeg, ffprobe) with argument vectors instead of shell strings.
//
// Routing every invocation through the Runner interface keeps shell
// interpolation out of the codebase and lets tests substitute a fake runner
// for deterministic behavior without the tools installed.
package command
