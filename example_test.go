package hiyadrive_test

import (
	"context"
	"fmt"
	"log"

	"github.com/Myangsun/HiyaDrive"
	"github.com/Myangsun/HiyaDrive/pkg/adapters/mock"
)

func ExampleAgent_Run() {
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

	s, err := agent.Run(context.Background(), "driver-1",
		"Book a table for 4 at an Italian place in Boston on 2024-11-22 at 7pm")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(s.Status)
	fmt.Println(s.Selected.Name, s.ConfirmationToken)
	// Output:
	// completed
	// Bella Vista 4892
}
