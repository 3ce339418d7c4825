/*
Package hiyadrive is a voice-first reservation agent for drivers.

A driver speaks a request such as "a table for four at an Italian place near
downtown tomorrow at 7pm". The agent extracts the booking details, asks for
whatever is missing, negotiates a slot that fits the driver's calendar,
searches for restaurants, calls the chosen one and reports the outcome.

# Architecture

The workflow is a graph of steps (pkg/dsl) executed by a deterministic engine
(internal/runtime). Every step reads and writes a single SessionState
(pkg/domain). Backends are reached through small ports (pkg/ports), with
mock, console, Claude, Places, calendar and Redis adapters under pkg/adapters.

# Usage

	agent, err := hiyadrive.New(hiyadrive.Collaborators{
		Extractor:    mock.NewExtractor(),
		Calendar:     mock.NewCalendar(),
		Searcher:     mock.NewSearcher(),
		Dialer:       mock.Dialer{},
		Conversation: mock.NewConversation(),
		Speaker:      mock.NewSpeaker(nil),
		Listener:     mock.NewListener(),
	})
	if err != nil {
		log.Fatal(err)
	}

	s, err := agent.Run(ctx, "driver-1", "Italian for 4 near downtown tomorrow at 7pm")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(s.Status, s.ConfirmationToken)

Run never reports workflow failures as errors: they are recorded on the
returned state, whose Status is one of completed, failed, timeout or cancelled.
*/
package hiyadrive
