package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/Myangsun/HiyaDrive/internal/dto"
	"github.com/Myangsun/HiyaDrive/internal/presentation/graph"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/Myangsun/HiyaDrive/pkg/input"
	"github.com/Myangsun/HiyaDrive/pkg/notify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultRequesterID is used when a request names no requester.
const DefaultRequesterID = "driver"

// Stream events sent by the server itself. Either one ends the stream.
const (
	EventOutcome = "outcome"
	EventAborted = "aborted"
)

// Agent is the part of the reservation agent the server drives.
type Agent interface {
	NewSession(requesterID, utterance string) *domain.SessionState
	RunSession(ctx context.Context, s *domain.SessionState) error
	Graph() *dsl.Graph
}

// SessionRequest is the body of POST /sessions.
type SessionRequest struct {
	RequesterID string `json:"requester_id"`
	Utterance   string `json:"utterance"`
}

// SessionResponse is returned for a finished session.
type SessionResponse struct {
	Outcome notify.Outcome       `json:"outcome"`
	Message string               `json:"message"`
	State   *domain.SessionState `json:"state"`
}

// Server serves the agent over HTTP.
type Server struct {
	agent    Agent
	streams  *StreamManager
	sessions *sessionStore
	metrics  http.Handler
	version  string
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Server.
type Option func(*Server)

// WithStreams sets the manager whose hooks the agent publishes to.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.streams = sm }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHistory bounds how many finished sessions are kept for GET /sessions/{id}.
func WithHistory(n int) Option {
	return func(s *Server) { s.sessions = newSessionStore(n) }
}

// NewServer creates a Server for agent.
func NewServer(agent Agent, opts ...Option) *Server {
	s := &Server{
		agent:    agent,
		sessions: newSessionStore(defaultHistory),
		version:  "dev",
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/graph", s.getGraph)
	r.Post("/sessions", s.postSession)
	r.Get("/sessions/{id}", s.getSession)
	r.Get("/sessions/{id}/events", s.subscribeEvents)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return otelhttp.NewHandler(enableCORS(r), "hiyadrive.http")
}

// Close cancels background sessions and waits for them to finish.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) postSession(w http.ResponseWriter, r *http.Request) {
	var body SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("postSession: invalid request body", "err", err)
		return
	}
	utterance, err := input.Sanitize(body.Utterance)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid utterance: %v", err), http.StatusBadRequest)
		s.logger.Warn("postSession: utterance rejected", "err", err, "size", len(body.Utterance))
		return
	}
	requester := body.RequesterID
	if requester == "" {
		requester = DefaultRequesterID
	}

	wait := true
	if v := r.URL.Query().Get("wait"); v != "" {
		if wait, err = strconv.ParseBool(v); err != nil {
			http.Error(w, "Invalid wait parameter", http.StatusBadRequest)
			return
		}
	}

	state := s.agent.NewSession(requester, utterance)
	s.sessions.start(state.ID)

	if !wait {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(s.ctx, state)
		}()
		w.Header().Set("Location", "/sessions/"+state.ID)
		writeJSON(w, http.StatusAccepted, map[string]string{"id": state.ID, "status": string(domain.StatusActive)}, s.logger)
		return
	}

	if err := s.run(r.Context(), state); err != nil {
		http.Error(w, fmt.Sprintf("Session could not start: %v", err), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, response(state), s.logger)
}

func (s *Server) run(ctx context.Context, state *domain.SessionState) error {
	err := s.agent.RunSession(ctx, state)
	if err != nil {
		s.logger.Error("session did not run", "session_id", state.ID, "err", err)
		s.sessions.drop(state.ID)
		s.streams.Finish(state.ID, EventAborted, map[string]string{"error": err.Error()})
		return err
	}
	s.sessions.finish(state)
	s.streams.Finish(state.ID, EventOutcome, notify.Summarize(state))
	return nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, known := s.sessions.get(id)
	switch {
	case !known:
		http.Error(w, "Session not found", http.StatusNotFound)
	case state == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": string(domain.StatusActive)}, s.logger)
	default:
		writeJSON(w, http.StatusOK, response(state), s.logger)
	}
}

// subscribeEvents streams the events published after subscription, ending
// with the session outcome.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := chi.URLParam(r, "id")
	state, known := s.sessions.get(id)
	if !known {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	ch, unsubscribe := s.streams.Subscribe(id)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	if state == nil {
		// The session may have ended between the lookup and the subscription.
		if state, known = s.sessions.get(id); !known {
			fmt.Fprintf(w, "event: %s\ndata: {\"error\":\"session did not run\"}\n\n", EventAborted)
			flusher.Flush()
			return
		}
	}
	if state != nil {
		data, _ := json.Marshal(notify.Summarize(state))
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventOutcome, data)
		flusher.Flush()
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
			if msg.Event == EventOutcome || msg.Event == EventAborted {
				return
			}
		}
	}
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	g := s.agent.Graph()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateMermaid(g, nil)))
		return
	}
	writeJSON(w, http.StatusOK, dto.FromGraph(g), s.logger)
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) getInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"app": "hiyadrive-http", "version": s.version}, s.logger)
}

func response(state *domain.SessionState) SessionResponse {
	return SessionResponse{Outcome: notify.Summarize(state), Message: notify.Sentence(state), State: state}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
