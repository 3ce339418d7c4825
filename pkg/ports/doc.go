/*
Package ports defines the driven ports (interfaces) for the HiyaDrive workflow.

These interfaces decouple the reservation workflow from the concrete backends,
so that mock and real implementations can be selected at construction time
and injected explicitly.

# Key Interfaces

  - FieldExtractor: turns free text into a partial update of the requested fields.
  - AvailabilityChecker: reports whether the requester is free at a date and time.
  - CandidateSearcher: finds providers for a category near a location.
  - ContactDialer and ConversationDriver: reach a provider and negotiate the booking.
  - Speaker and Listener: the speech boundary with the requester.
  - Notifier: receives the final session exactly once.
  - DistributedLocker: coordinates sessions of the same requester across replicas.
*/
package ports
