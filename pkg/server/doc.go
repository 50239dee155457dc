// Package server exposes the view-state codec over HTTP and keeps browser
// sessions in step over WebSocket.
//
// # HTTP API
//
//	POST /api/v1/url-state          application state -> {state, url, path}
//	GET  /api/v1/url-state/{state}  encoded state -> {state, app}
//	GET  /state/{state}             same as above, browser-shaped path
//	GET  /ws                        live session
//	GET  /metrics                   Prometheus metrics
//	GET  /healthz                   liveness
//
// # Live sessions
//
// A client opens /ws and sends a hello message with its session id (empty
// for a new session) and its current location:
//
//	{"type":"hello","session":"","location":"/state/{\"topologyId\":\"hosts\"}"}
//
// The server answers with the session id and the application state to start
// from, restored from the location or, failing that, from the store:
//
//	{"type":"welcome","session":"6c1b...","restore":{...}}
//
// After every state change the client sends its application state:
//
//	{"type":"state","state":{...}}
//
// and the server replies with the history update to perform, if any:
//
//	{"type":"navigate","mode":"push","path":"/state/...","state":{...},"dispatch":false}
//
// When the browser changes location by itself (Back, Forward), it reports
// the new location before its next state so the server's copy of the
// history follows:
//
//	{"type":"location","location":"/state/..."}
//
// Sessions outlive their connection for the resume window so a reconnecting
// client keeps its history and persisted state.
package server
