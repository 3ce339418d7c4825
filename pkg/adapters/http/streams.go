package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  []byte
}

// FinalEventTimeout bounds how long Finish waits for a subscriber with a full buffer.
const FinalEventTimeout = time.Second

type subscriber struct {
	ch   chan Message
	done chan struct{}
	once sync.Once
}

func (sub *subscriber) leave() {
	sub.once.Do(func() { close(sub.done) })
}

// StreamManager fans lifecycle events out to SSE subscribers, per session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StreamManager{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for the session's events. The channel is
// closed after Finish delivers the final event. The returned function
// unsubscribes.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sub := &subscriber{ch: make(chan Message, 32), done: make(chan struct{})}
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[*subscriber]struct{})
	}
	sm.subscribers[sessionID][sub] = struct{}{}

	return sub.ch, func() {
		sm.mu.Lock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
		sm.mu.Unlock()
		sub.leave()
	}
}

// Subscribers returns the number of subscribers of a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends an event to every subscriber of the session. Slow
// subscribers lose events instead of blocking the workflow.
func (sm *StreamManager) Broadcast(sessionID, event string, payload any) {
	data, ok := sm.encode(event, payload)
	if !ok {
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for sub := range sm.subscribers[sessionID] {
		select {
		case sub.ch <- Message{Event: event, Data: data}:
		default:
			sm.logger.Warn("stream buffer full, dropping event", "session_id", sessionID, "event", event)
		}
	}
}

// Finish delivers the session's final event and closes every subscriber
// channel. A full buffer delays delivery by at most FinalEventTimeout.
func (sm *StreamManager) Finish(sessionID, event string, payload any) {
	sm.mu.Lock()
	subs := sm.subscribers[sessionID]
	delete(sm.subscribers, sessionID)
	sm.mu.Unlock()

	data, ok := sm.encode(event, payload)
	for sub := range subs {
		if ok {
			sm.deliver(sessionID, sub, Message{Event: event, Data: data})
		}
		close(sub.ch)
	}
}

func (sm *StreamManager) deliver(sessionID string, sub *subscriber, msg Message) {
	timer := time.NewTimer(FinalEventTimeout)
	defer timer.Stop()
	select {
	case sub.ch <- msg:
	case <-sub.done:
	case <-timer.C:
		sm.logger.Warn("stream subscriber stalled, final event lost", "session_id", sessionID, "event", msg.Event)
	}
}

func (sm *StreamManager) encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		sm.logger.Error("failed to encode stream event", "event", event, "err", err)
		return nil, false
	}
	return data, true
}

// Hooks returns lifecycle hooks that broadcast engine events.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			sm.Broadcast(e.SessionID, string(e.Type), e)
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			sm.Broadcast(e.SessionID, string(e.Type), e)
		},
		OnRoute: func(_ context.Context, e *domain.RouteEvent) {
			sm.Broadcast(e.SessionID, string(e.Type), e)
		},
		OnSessionEnd: func(_ context.Context, e *domain.SessionEvent) {
			sm.Broadcast(e.SessionID, string(e.Type), e)
		},
	}
}
