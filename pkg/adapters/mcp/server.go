package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/sensact"
	"github.com/aretw0/sensact/pkg/adapters/memory"
	"github.com/aretw0/sensact/pkg/domain"
	"github.com/aretw0/sensact/pkg/ports"
	"github.com/aretw0/sensact/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const rulesetsURI = "sensact://rulesets"

// Engine defines the parts of sensact.Engine exposed over MCP.
type Engine interface {
	Library() *domain.Library
	Run(ctx context.Context, goal *domain.Record, root ports.Element, opts ...sensact.RunOption) (*domain.Snapshot, error)
	Sessions() *session.Manager
}

// RootFunc returns the UI tree a run drives.
type RootFunc func(ctx context.Context) (ports.Element, error)

// RunGoalArgs are the arguments of the run_goal tool.
type RunGoalArgs struct {
	Goal       string            `json:"goal" jsonschema_description:"Name of the rule set to run; empty runs the default goal"`
	Attributes map[string]string `json:"attributes,omitempty" jsonschema_description:"Goal attributes bound to the rule-set parameters"`
	Variables  map[string]string `json:"variables,omitempty" jsonschema_description:"Initial run variables"`
	Model      string            `json:"model,omitempty" jsonschema_description:"GUI-model YAML simulating the application"`
}

// GetRunArgs are the arguments of the get_run tool.
type GetRunArgs struct {
	ID string `json:"id" jsonschema_description:"Run id"`
}

// RunGoalResult is the structured result of the run_goal tool.
type RunGoalResult struct {
	Snapshot *domain.Snapshot `json:"snapshot" jsonschema_description:"Record of the run"`
	Error    string           `json:"error,omitempty" jsonschema_description:"Why the run was aborted"`
}

// Server exposes a sensact Engine as an MCP server.
type Server struct {
	engine    Engine
	root      RootFunc
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithRoot attaches the application runs drive when no model is given.
func WithRoot(fn RootFunc) Option {
	return func(s *Server) {
		s.root = fn
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("sensact-mcp", strings.TrimSpace(sensact.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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
	s.mcpServer.AddTool(mcp.NewTool("list_rulesets",
		mcp.WithDescription("List the rule sets of the library with their parameters."),
	), s.handleListRuleSets)

	s.mcpServer.AddTool(mcp.NewTool("run_goal",
		mcp.WithDescription("Run a goal against the application under test and return the run snapshot."),
		mcp.WithString("goal", mcp.Description("Rule-set name; empty runs the default goal")),
		mcp.WithObject("attributes", mcp.Description("Goal attributes, e.g. {\"file\": \"notes.txt\"}")),
		mcp.WithObject("variables", mcp.Description("Initial run variables")),
		mcp.WithString("model", mcp.Description("GUI-model YAML document simulating the application")),
		mcp.WithOutputSchema[RunGoalResult](),
	), mcp.NewStructuredToolHandler(s.handleRunGoal))

	s.mcpServer.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Get the snapshot of a finished run."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Run id")),
	), mcp.NewStructuredToolHandler(s.handleGetRun))

	s.mcpServer.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List the ids of stored runs."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.Sessions().List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		return jsonResult(ids)
	})
}

func (s *Server) handleListRuleSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.summaries())
}

func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest, args GetRunArgs) (*domain.Snapshot, error) {
	if args.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	snap, err := s.engine.Sessions().Load(ctx, args.ID)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("run %q not found", args.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}
	return snap, nil
}

func (s *Server) handleRunGoal(ctx context.Context, request mcp.CallToolRequest, args RunGoalArgs) (RunGoalResult, error) {
	var goal *domain.Record
	if args.Goal != "" {
		goal = domain.NewRecord(args.Goal)
		for _, name := range sortedKeys(args.Attributes) {
			goal.Set(name, args.Attributes[name])
		}
	}

	root, err := s.resolveRoot(ctx, args.Model)
	if err != nil {
		return RunGoalResult{}, err
	}

	var opts []sensact.RunOption
	if len(args.Variables) > 0 {
		opts = append(opts, sensact.WithInitialVariables(args.Variables))
	}

	snap, err := s.engine.Run(ctx, goal, root, opts...)
	if err != nil && snap == nil {
		return RunGoalResult{}, fmt.Errorf("run failed: %w", err)
	}
	res := RunGoalResult{Snapshot: snap}
	if err != nil {
		s.logger.Warn("MCP run aborted", "run_id", snap.ID, "err", err)
		res.Error = err.Error()
	}
	return res, nil
}

func (s *Server) resolveRoot(ctx context.Context, model string) (ports.Element, error) {
	if model != "" {
		tree, err := memory.LoadTree([]byte(model))
		if err != nil {
			return nil, err
		}
		return tree.Root, nil
	}
	if s.root == nil {
		return nil, fmt.Errorf("no model given and no application attached")
	}
	return s.root(ctx)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(rulesetsURI, "Rule-set library",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Library().RuleSets())
		if err != nil {
			return nil, fmt.Errorf("failed to encode library: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      rulesetsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

type summary struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Params      []domain.Param `json:"params,omitempty"`
}

func (s *Server) summaries() []summary {
	lib := s.engine.Library()
	out := make([]summary, 0, lib.Len())
	for _, name := range lib.SortedNames() {
		rs, _ := lib.Get(name)
		out = append(out, summary{Name: rs.Name, Description: rs.Description, Params: rs.Params})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
