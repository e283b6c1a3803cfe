// Package log provides simple leveled logging for cdnsift.
//
// This package implements a lightweight logging system with colored output
// and support for different log levels: DEBUG, INFO, WARN, and ERROR.
// All messages go to stderr, because stdout carries the tool's data stream.
//
// # Log Levels
//
//   - DEBUG: Detailed diagnostic information
//   - INFO: General informational messages
//   - WARN: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures and exceptions
//
// By default only errors are emitted: a non-verbose pipeline run must stay
// quiet except for fatal conditions. SetVerbose(true) lowers the floor to
// DEBUG; commands that are not part of a pipe (refresh, serve) lower it to
// INFO themselves.
//
// # Example Usage
//
// Basic logging:
//
//	log.Infof("Updating CIDR ranges")
//	log.Warnf("Failed to fetch %s: %v", url, err)
//	log.Errorf("Failed to load cache: %v", err)
//
// Enabling verbose mode for debug output:
//
//	log.SetVerbose(true)
//	log.Debugf("Skipping %s: %v", host, err)
//
// Fatal errors that exit the application:
//
//	if err != nil {
//	    log.Fatalf("Critical error: %v", err) // Exits with code 1
//	}
//
// The package uses global state for simplicity but is safe for concurrent
// writers: each message is written with a single Write call.
package log
