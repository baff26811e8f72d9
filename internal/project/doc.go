// Package project manages the multi-project workspace: slug derivation and
// validation, the projects.json registry, per-project directory trees
// (dailies, thumbnails, catalog index, preferences), and live statistics.
//
// Slugs are immutable once created; renaming a project only changes its
// display name. Deleting a project removes its directory tree and is not
// recoverable.
package project
