// Package ordered provides a JSON object type that preserves key insertion
// order, used for the projects registry and per-project catalog index files.
package ordered
