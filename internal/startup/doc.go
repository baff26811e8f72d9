// Package startup owns process bring-up: environment configuration, banner
// and system-info logging, directory and external-tool checks, and the
// structured startup/shutdown log sections.
package startup
