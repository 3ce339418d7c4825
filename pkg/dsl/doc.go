/*
Package dsl provides a fluent builder for workflow graphs.

A graph is a set of named steps. Each step runs a handler on the session and
then leaves through a static edge (Go), a router-guarded conditional edge
(Route + Branch), or its error edge (OnError) when the handler recorded a
failure. Terminal steps end the session. Build validates the graph before any
session runs: unknown targets, unreachable steps and graphs without a
terminal step are rejected.

Example usage:

	b := dsl.New()

	b.Add("greet", greet).
		Go("ask")

	b.Add("ask", ask).
		OnError("recover").
		Route(func(s *domain.SessionState) string {
			if s.Declined {
				return "no"
			}
			return "yes"
		}).
		Branch("yes", "done").
		Branch("no", "stop")

	b.Add("recover", recover).
		Route(retryOrStop).
		BranchWith("retry", dsl.Resume, consumeRetry).
		Branch("stop", "stop")

	b.Add("done", finish).Terminal()
	b.Add("stop", abort).Terminal()

	graph, err := b.Build()
*/
package dsl
