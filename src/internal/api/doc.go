// Package api provides the REST API server for cdnsift.
//
// The server exposes the classification pipeline over HTTP, so other tools
// can check single hosts or trigger a CIDR cache refresh without shelling
// out to the CLI. It provides:
//   - Single-host classification with the same output policy as the CLI
//   - CIDR cache status monitoring
//   - Forced cache refresh
//   - Health checks
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "error_code",
//	    "message": "Human-readable error message"
//	  }
//	}
//
// # Concurrency
//
// The in-memory CIDR set is shared between check requests and refreshes. A
// refresh builds the new set off to the side and swaps it in atomically, so
// checks never observe a half-loaded set.
package api
