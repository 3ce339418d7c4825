package http_test

import (
	"testing"
	"time"

	httpadapter "github.com/Myangsun/HiyaDrive/pkg/adapters/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamManager_FinishDeliversPastFullBuffer(t *testing.T) {
	sm := httpadapter.NewStreamManager(nil)
	ch, unsubscribe := sm.Subscribe("s1")
	defer unsubscribe()

	// Fill the buffer past capacity; the overflow is dropped.
	for i := 0; i < 40; i++ {
		sm.Broadcast("s1", "step_enter", map[string]int{"i": i})
	}

	finished := make(chan struct{})
	go func() {
		sm.Finish("s1", httpadapter.EventOutcome, map[string]string{"status": "completed"})
		close(finished)
	}()

	var last httpadapter.Message
	count := 0
	for msg := range ch {
		last = msg
		count++
	}
	<-finished

	assert.Equal(t, 33, count)
	assert.Equal(t, httpadapter.EventOutcome, last.Event)
	assert.JSONEq(t, `{"status":"completed"}`, string(last.Data))
	assert.Zero(t, sm.Subscribers("s1"))
}

func TestStreamManager_FinishSkipsDepartedSubscriber(t *testing.T) {
	sm := httpadapter.NewStreamManager(nil)
	_, unsubscribe := sm.Subscribe("s1")
	for i := 0; i < 40; i++ {
		sm.Broadcast("s1", "step_enter", i)
	}
	unsubscribe()
	unsubscribe()

	done := make(chan struct{})
	go func() {
		sm.Finish("s1", httpadapter.EventOutcome, "done")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(httpadapter.FinalEventTimeout / 2):
		t.Fatal("Finish waited on a subscriber that already left")
	}
}

func TestStreamManager_BroadcastIsScopedToSession(t *testing.T) {
	sm := httpadapter.NewStreamManager(nil)
	a, unsubA := sm.Subscribe("a")
	defer unsubA()
	b, unsubB := sm.Subscribe("b")
	defer unsubB()

	sm.Broadcast("a", "step_enter", 1)
	sm.Finish("a", httpadapter.EventOutcome, 2)

	var events []string
	for msg := range a {
		events = append(events, msg.Event)
	}
	assert.Equal(t, []string{"step_enter", httpadapter.EventOutcome}, events)

	require.Equal(t, 1, sm.Subscribers("b"))
	select {
	case msg := <-b:
		t.Fatalf("unexpected event %q", msg.Event)
	default:
	}
}
