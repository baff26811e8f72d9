// Package monitor audits the workspace tree: file sizes, line counts for
// text files, per-extension and per-directory rollups, and top-10 lists.
// Each run overwrites the persisted report, which the monitoring endpoints
// read back.
package monitor
