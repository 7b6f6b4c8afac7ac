// Package protocol defines the line-delimited JSON messages exchanged with
// the clipcap worker over its standard streams, plus the parameter and
// result DTOs for the worker's RPC methods.
//
// Every message is exactly one UTF-8 line terminated by '\n'. Requests flow
// to the worker's stdin; progress events, log events, and terminal
// result/error messages flow back on stdout. Field names are camelCase to
// match the worker's serializer.
//
// Reuse these types when adding worker methods so the wire format stays
// consistent between the bridge, the daemon API, and the CLI.
package protocol
