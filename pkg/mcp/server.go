// Package mcp implements a Model Context Protocol server exposing the
// namefang review engine and terminology dictionary as MCP tools over
// stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/namefang/pkg/review"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
	"github.com/Sumatoshi-tech/namefang/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "namefang"

	// toolCount is the expected number of registered tools.
	toolCount = 2
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Provider serves dictionary snapshots. Nil uses the builtin
	// dictionary.
	Provider term.Provider

	// Options are the base review options; per-call input fields
	// override them.
	Options review.Options

	// Observer is an optional review metrics sink.
	Observer review.Observer
}

// Server wraps the MCP SDK server with namefang tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	mu       sync.RWMutex
	tools    []string
	engine   *review.Engine
	provider term.Provider
	baseOpts review.Options
}

// NewServer creates a new MCP server with all namefang tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	engineOpts := []review.EngineOption{}
	if deps.Logger != nil {
		engineOpts = append(engineOpts, review.WithLogger(deps.Logger))
	}

	if deps.Observer != nil {
		engineOpts = append(engineOpts, review.WithObserver(deps.Observer))
	}

	provider := deps.Provider
	if provider == nil {
		provider = term.NewStore(term.Builtin())
	}

	srv := &Server{
		inner:    inner,
		tools:    make([]string, 0, toolCount),
		engine:   review.NewEngine(engineOpts...),
		provider: provider,
		baseOpts: deps.Options,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the
// context is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It
// blocks until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all namefang MCP tools to the server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameReview,
		Description: reviewToolDescription,
	}, s.handleReview)
	s.trackTool(ToolNameReview)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameLookup,
		Description: lookupToolDescription,
	}, s.handleLookup)
	s.trackTool(ToolNameLookup)
}

// handleReview runs the review engine over an inline Python fragment.
func (s *Server) handleReview(ctx context.Context, _ *mcpsdk.CallToolRequest, input ReviewInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCodeInput(input.Code); err != nil {
		return errorResult(err)
	}

	opts := s.baseOpts
	if input.MinConfidence > 0 {
		opts.MinConfidence = input.MinConfidence
	}

	if input.TargetConvention != "" {
		opts.TargetConvention = input.TargetConvention
	}

	opts.FileID = input.FileID

	// A failed snapshot degrades to a nil dictionary: every token
	// reports as unmatched instead of failing the call.
	dict, err := s.provider.Snapshot()
	if err != nil {
		dict = nil
	}

	result, err := s.engine.Review(ctx, []byte(input.Code), dict, opts)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

// handleLookup resolves a term against the dictionary.
func (s *Server) handleLookup(_ context.Context, _ *mcpsdk.CallToolRequest, input LookupInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	query := term.Normalize(input.Term)
	if query == "" {
		return errorResult(ErrEmptyTerm)
	}

	dict, err := s.provider.Snapshot()
	if err != nil {
		return errorResult(fmt.Errorf("dictionary unavailable: %w", err))
	}

	out := LookupOutput{Related: relatedEntries(dict, query)}

	if entry, ok := dict.Lookup(query); ok {
		out.Entry = &entry
	}

	return jsonResult(out)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// Tool description constants.
const (
	reviewToolDescription = "Review a Python code fragment for abbreviated or " +
		"non-standard identifiers. Returns the rewritten fragment, rename " +
		"suggestions with confidence scores, and an issue count."

	lookupToolDescription = "Look up an abbreviation or word in the terminology " +
		"dictionary. Returns the exact entry when present plus related entries."
)
