// Package daemon runs the long-lived clipcap host process.
//
// The daemon supervises exactly one worker, owns the bridge that speaks to
// it, and exposes the call/progress surface the desktop UI consumes: an
// HTTP endpoint for RPC calls and a WebSocket feed for progress and log
// events. A file lock enforces single-instance execution, and every
// settled call is recorded in the history store.
package daemon
