// Package errs defines the error taxonomy shared across the application and
// its mapping to HTTP status codes.
package errs
