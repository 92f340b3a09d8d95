// Package auth provides the API key middleware for the innstack HTTP
// surfaces.
//
// Middleware(mode, header, key) wraps an http.Handler. When mode is "apikey"
// and a key is configured, every request must present the key in header or,
// for browser WebSocket clients that cannot set headers, in the api_key
// query parameter. Otherwise requests pass through unchanged.
package auth
