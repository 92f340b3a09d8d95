// Package form is the adapter between an input surface (REST session,
// WebSocket connection) and the pure KPI core.
//
// A Form owns the text of the three inputs and the current validation
// snapshot. Every event runs one complete pass and hands the result to a
// Sink:
//
//	KeyDown(field, key) — refuse decimal/exponent keys on room counts; no pass
//	Change(field, text) — revenue is live-truncated; then compute
//	Commit(field)       — normalize all fields, then compute
//	Refresh()           — compute only (initial load, display settings change)
//
// A Form is not safe for concurrent use. Each surface serializes the events
// of one form (the WebSocket read loop, the store's per-session lock).
package form
