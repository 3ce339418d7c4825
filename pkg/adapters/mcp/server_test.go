package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	graph     *dsl.Graph
	err       error
	requester string
	utterance string
}

func (f *fakeAgent) Run(_ context.Context, requesterID, utterance string) (*domain.SessionState, error) {
	f.requester, f.utterance = requesterID, utterance
	if f.err != nil {
		return nil, f.err
	}
	s := domain.NewSessionState(requesterID, utterance)
	s.Fields = domain.Fields{PartySize: domain.Int(4), Date: domain.String("2024-11-22"), Time: domain.String("19:00")}
	_ = s.Select(domain.Candidate{Name: "Bella Vista", Contact: "+1-555-0200"})
	_ = s.RecordConversation(domain.ConversationResult{BookingConfirmed: true, ConfirmationToken: "4892"})
	_ = s.Finish(domain.StatusCompleted)
	return s, nil
}

func (f *fakeAgent) Graph() *dsl.Graph { return f.graph }

func newAgent(t *testing.T) *fakeAgent {
	t.Helper()
	b := dsl.New()
	b.Add("work", func(context.Context, *domain.SessionState) {}).Go("done")
	b.Add("done", func(context.Context, *domain.SessionState) {}).Terminal()
	g, err := b.Build()
	require.NoError(t, err)
	return &fakeAgent{graph: g}
}

func call(t *testing.T, s *Server, msg string) string {
	t.Helper()
	resp := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(msg))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func TestBookReservation(t *testing.T) {
	agent := newAgent(t)
	s := NewServer(agent, "1.0.0", "driver")

	out := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"book_reservation","arguments":{"utterance":"Italian  for 4 tomorrow"}}}`)

	assert.Equal(t, "driver", agent.requester)
	assert.Equal(t, "Italian for 4 tomorrow", agent.utterance)
	assert.Contains(t, out, "Bella Vista")
	assert.Contains(t, out, "4892")
	assert.NotContains(t, out, `"isError":true`)
}

func TestBookReservation_Failure(t *testing.T) {
	agent := newAgent(t)
	agent.err = errors.New("lock busy")
	s := NewServer(agent, "1.0.0", "driver")

	out := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"book_reservation","arguments":{"utterance":"hi","requester_id":"r-9"}}}`)

	assert.Equal(t, "r-9", agent.requester)
	assert.Contains(t, out, "lock busy")
	assert.Contains(t, out, `"isError":true`)
}

func TestGetGraphTool(t *testing.T) {
	s := NewServer(newAgent(t), "1.0.0", "driver")

	out := call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_graph","arguments":{}}}`)
	assert.Contains(t, out, `\"start\":\"work\"`)
}

func TestResources(t *testing.T) {
	s := NewServer(newAgent(t), "1.0.0", "driver")

	out := call(t, s, `{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"hiyadrive://graph"}}`)
	assert.Contains(t, out, `\"id\":\"work\"`)

	out = call(t, s, `{"jsonrpc":"2.0","id":5,"method":"resources/read","params":{"uri":"hiyadrive://graph.mmd"}}`)
	assert.Contains(t, out, "graph TD")
}
