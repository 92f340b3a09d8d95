// Package ws implements the WebSocket form endpoint for innstack-server.
//
// Every connection owns one calculator form. The hub sends the rendered
// display immediately on connect, then one display frame per change,
// commit or refresh event received from the client.
//
// New(formatting, observer, readLimit) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all active
// connections.
// Hub.RefreshAll re-renders every connected form after a config reload.
//
// Frames sent to clients:
//
//	{"event": "display", "data": { /* same schema as the REST display */ }}
//	{"event": "keydown", "data": {"allowed": true}}
//	{"event": "error",   "data": {"error": "..."}}
//
// Client frames use the REST event schema:
//
//	{"type": "change", "field": "rooms_sold", "value": "70"}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/form by the server.
package ws
