// Package history persists a record of settled worker calls.
//
// The daemon writes one row per call (method, timing, outcome kind) so the
// UI and `clipcap history` can show recent activity and recurring failures
// without scraping logs. Storage is a small SQLite database in WAL mode.
package history
