// Package api implements the HTTP REST surface of innstack-server.
//
// New(store, formatting, observer, clients) returns an http.Handler that serves:
//
//	POST   /api/v1/kpi                  — one stateless pass over three fields
//	POST   /api/v1/sessions             — create a form session (initial render)
//	GET    /api/v1/sessions/{id}        — current display of a session
//	DELETE /api/v1/sessions/{id}        — drop a session
//	POST   /api/v1/sessions/{id}/events — apply keydown | change | commit
//	GET    /api/v1/health               — status, session and WebSocket counts
//
// All endpoints respond with Content-Type: application/json, return 405 for
// unsupported methods and {"error": "..."} bodies on failure. Field values
// may be sent as JSON strings or numbers. No external HTTP framework is used.
package api
