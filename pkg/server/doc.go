// Package server hosts mvu applications over HTTP and WebSocket.
//
// Each page load prerenders a throwaway instance for first paint. When the
// thin client connects to the socket, the server creates a fresh instance
// whose Document is the socket itself: every primitive call becomes one op
// frame, and every event frame from the client becomes one Dispatch.
//
// # Routes
//
//	GET /                 page with the prerendered first paint
//	GET /ws               websocket endpoint
//	GET /_mvu/client.js   embedded thin client
//	GET /metrics          Prometheus metrics (when a gatherer is configured)
//	GET /healthz          liveness probe
//
// # Failure Handling
//
// An unknown event id is reported to the client with an error frame and the
// session continues. A failed primitive leaves the browser out of step, so
// the session resyncs: the whole root content is sent again. Any other cycle
// failure is reported with a fatal error frame and the socket is closed.
package server
