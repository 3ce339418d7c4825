// Package http exposes the reservation agent over a JSON API.
//
// Routes:
//
//	POST /sessions              run a session (?wait=false runs it in the background)
//	GET  /sessions/{id}         final state of a recent session
//	GET  /sessions/{id}/events  server-sent step and route events
//	GET  /graph                 workflow graph as JSON, or Mermaid with ?format=mermaid
//	GET  /healthz, /info        liveness and version
//	GET  /metrics               Prometheus exposition, when a handler is configured
package http
