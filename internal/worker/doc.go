// Package worker locates, launches, and observes the clipcap worker
// process.
//
// The worker is a separately built binary that performs transcription,
// caption rendering, and muxing; this package treats it as a black box
// that speaks line-delimited JSON on its standard streams. Locate probes
// the development build output and the packaged-application layouts in a
// fixed order. Start wires the pipes the bridge needs, points the worker
// at the bundled FFmpeg, and reports process exit on a channel.
package worker
