// Package bridge turns the worker's raw stdio line stream into a
// call/progress abstraction for the rest of the app.
//
// A Bridge owns the request-correlation table and the per-request progress
// subscriptions. Outbound requests funnel through a single writer goroutine
// so concurrent callers never interleave bytes on the wire; inbound lines
// are consumed by a single reader goroutine that parses, classifies, and
// settles. Every call settles exactly once: with the matching result, with
// a classified worker error, or with a termination error when the worker
// dies while the call is outstanding.
//
// Worker error strings are free-form; Classify maps them onto a stable Kind
// taxonomy at this boundary so callers branch on kinds, never on raw text.
package bridge
