// Package mcp exposes the reservation agent as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Myangsun/HiyaDrive/internal/dto"
	"github.com/Myangsun/HiyaDrive/internal/presentation/graph"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/Myangsun/HiyaDrive/pkg/input"
	"github.com/Myangsun/HiyaDrive/pkg/notify"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI   = "hiyadrive://graph"
	mermaidURI = "hiyadrive://graph.mmd"
)

// BookingResponse is the structured result of the book_reservation tool.
type BookingResponse struct {
	Outcome notify.Outcome `json:"outcome" jsonschema_description:"Summary of the finished session"`
	Message string         `json:"message" jsonschema_description:"Sentence spoken to the requester"`
}

// Agent is the part of the reservation agent the MCP server drives.
type Agent interface {
	Run(ctx context.Context, requesterID, utterance string) (*domain.SessionState, error)
	Graph() *dsl.Graph
}

// Server wraps the agent and exposes it as an MCP Server.
type Server struct {
	agent     Agent
	requester string
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server. Requests that name no requester use defaultRequester.
func NewServer(agent Agent, version, defaultRequester string) *Server {
	s := &Server{
		agent:     agent,
		requester: defaultRequester,
		mcpServer: server.NewMCPServer("hiyadrive-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	bookTool := mcp.NewTool("book_reservation",
		mcp.WithDescription("Book a restaurant table from a spoken request, e.g. 'Italian for 4 near downtown tomorrow at 7pm'."),
		mcp.WithString("utterance", mcp.Required(), mcp.Description("What the requester said")),
		mcp.WithString("requester_id", mcp.Description("Who the booking is for (optional)")),
		mcp.WithOutputSchema[BookingResponse](),
	)
	s.mcpServer.AddTool(bookTool, mcp.NewStructuredToolHandler(s.handleBook))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the reservation workflow graph for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(dto.FromGraph(s.agent.Graph()))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleBook(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (BookingResponse, error) {
	raw, _ := args["utterance"].(string)
	utterance, err := input.Sanitize(raw)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("invalid utterance: %w", err)
	}
	requester, _ := args["requester_id"].(string)
	if requester == "" {
		requester = s.requester
	}

	state, err := s.agent.Run(ctx, requester, utterance)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("session could not start: %w", err)
	}
	return BookingResponse{Outcome: notify.Summarize(state), Message: notify.Sentence(state)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Reservation workflow graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(dto.FromGraph(s.agent.Graph()))
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: graphURI, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "Reservation workflow diagram",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: mermaidURI, MIMEType: "text/vnd.mermaid", Text: graph.GenerateMermaid(s.agent.Graph(), nil)},
		}, nil
	})
}
