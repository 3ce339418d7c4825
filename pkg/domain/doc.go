/*
Package domain contains the core models of a HiyaDrive reservation session.

It defines the single record that the workflow mutates step by step, the
vocabulary of steps and routes, and the error taxonomy. This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - SessionState: the mutable snapshot of one negotiation (fields, candidates, outcome, diagnostics).
  - Fields: the five requested parameters (party size, category, location, date, time).
  - Extraction: a partial update produced by a field extractor.
  - RetryBudget: the bounded counter consulted by the error-recovery router.
  - Failure: a classified error entry recorded by a step.
  - LifecycleHooks: callbacks for observing step execution.
*/
package domain
