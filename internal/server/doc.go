// Package server implements the keyhost HTTP surface and key storage.
//
// Owns:
//   - the key resource (GET, POST, DELETE on /api/gemini-key)
//   - static file serving with single-page-app fallback
//   - the Store implementations (JSON file, SQLite, memory)
//
// Invariants:
//   - ReservedPathGuard wraps the router, so /data is refused before any
//     route or static lookup runs
//   - no Store persists an empty or whitespace-only key
//   - handlers never echo store errors to clients, and logs carry only the
//     key fingerprint
package server
