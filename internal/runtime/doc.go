// Package runtime executes workflow graphs built with pkg/dsl.
//
// The Engine walks one session at a time through the graph, so exactly one
// step handler holds the state at any moment. Handlers never fail the run:
// panics are recovered into failures on the state, routers turn the failures
// into control flow, and every run ends in a terminal status followed by a
// single end-of-session notification.
package runtime
