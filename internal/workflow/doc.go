// Package workflow implements the reservation workflow: its step handlers,
// the routers at each branch point, the availability negotiation and intent
// completion loops, and the assembly of the canonical graph.
//
// Handlers talk to collaborators through pkg/ports only and record every
// failure on the session state. How much is spoken between steps is governed
// by a single Verbosity setting.
package workflow
