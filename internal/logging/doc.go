// Package logging provides leveled logging on top of the standard logger.
//
// The level is resolved once at startup from the DEBUG and LOG_LEVEL
// environment variables and can be overridden with SetLevel (used by tests).
package logging
