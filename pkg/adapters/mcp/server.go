// Package mcp exposes the engine to model-context-protocol clients: chain
// planning as a tool and the status graph as a resource.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/stateline"
	"github.com/aretw0/stateline/pkg/domain"
)

// PlanResponse is the structured result of the plan_chain tool.
type PlanResponse struct {
	Ready  bool               `json:"ready" jsonschema_description:"True when the target status is already satisfied"`
	Chain  domain.Chain       `json:"chain" jsonschema_description:"Ordered prerequisite chain toward the target"`
	Report *domain.PathReport `json:"report,omitempty" jsonschema_description:"Per-step readiness report"`
}

// Engine is the subset of the stateline engine the MCP surface needs.
type Engine interface {
	Statuses(ctx context.Context) ([]string, error)
	Inspect(ctx context.Context) (map[string]*domain.Descriptor, map[string]error, error)
	Plan(ctx context.Context, req stateline.Request) (*stateline.Result, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("stateline-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}
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
	planTool := mcp.NewTool("plan_chain",
		mcp.WithDescription("Resolve the prerequisite chain toward a target status without executing anything."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target status name")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Path to the test data file")),
		mcp.WithString("event", mcp.Description("Explicit transition event (optional)")),
		mcp.WithOutputSchema[PlanResponse](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlan))

	s.mcpServer.AddTool(mcp.NewTool("list_statuses",
		mcp.WithDescription("List all registered status names."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		statuses, err := s.engine.Statuses(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("statuses failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(statuses)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PlanResponse, error) {
	target, _ := args["target"].(string)
	dataPath, _ := args["data"].(string)
	event, _ := args["event"].(string)
	if target == "" || dataPath == "" {
		return PlanResponse{}, fmt.Errorf("target and data are required")
	}

	res, err := s.engine.Plan(ctx, stateline.Request{Target: target, DataPath: dataPath, Event: event})
	if err != nil {
		return PlanResponse{}, fmt.Errorf("plan failed: %w", err)
	}
	return PlanResponse{Ready: res.Ready, Chain: res.Chain, Report: res.Report}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("stateline://graph", "Status Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		descriptors, failures, err := s.engine.Inspect(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect graph: %w", err)
		}
		for status, loadErr := range failures {
			slog.Warn("descriptor skipped in graph resource", "status", status, "err", loadErr)
		}
		jsonBytes, _ := json.Marshal(descriptors)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "stateline://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
