// Package handlers implements the HTTP API: project registry CRUD,
// per-project video catalogs with byte-range streaming, profile-driven
// compression, filesystem audits, and the legacy flat-directory endpoints.
//
// Catalogs are built lazily per project and cached by slug; refresh and
// delete invalidate the cache explicitly. Errors cross the HTTP boundary as
// a uniform {success:false, error, message} envelope.
package handlers
