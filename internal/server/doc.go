// Package server exposes an editing session over HTTP.
//
// The API mirrors the host events a browser front-end would forward to the
// editor: palette drops, pointer events and scrolling, plus direct block and
// connection operations and whole-document export and import. Every route
// speaks JSON; errors are returned as {"code": ..., "error": ...} with a
// status derived from the error code.
//
// Prometheus metrics for editor, template cache and template server events
// are served on /metrics.
package server
