// Package main hosts the clipcap CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the clipcapd daemon: raw worker RPCs, model management,
// status and history inspection, and configuration scaffolding. It
// centralizes configuration resolution and daemon address discovery so
// subcommands can focus on user experience instead of wiring.
package main
