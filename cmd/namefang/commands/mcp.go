package commands

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/namefang/internal/config"
	"github.com/Sumatoshi-tech/namefang/internal/observability"
	"github.com/Sumatoshi-tech/namefang/pkg/mcp"
	"github.com/Sumatoshi-tech/namefang/pkg/review"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
)

// metricsReadTimeout bounds request header reads on the metrics listener.
const metricsReadTimeout = 10 * time.Second

// MCPCommand holds flags for the mcp command.
type MCPCommand struct {
	cfgPath     string
	dictPath    string
	metricsAddr string
	debug       bool
}

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	mc := &MCPCommand{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the review engine as tools that AI agents can
discover and invoke:
  - namefang_review: Review a Python fragment and suggest renames
  - namefang_lookup: Look up a term in the terminology dictionary`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          mc.run,
	}

	cmd.Flags().StringVarP(&mc.cfgPath, "config", "c", "", "Config file path")
	cmd.Flags().StringVar(&mc.dictPath, "dict", "", "Dictionary file (.csv or .json; overrides config)")
	cmd.Flags().StringVar(&mc.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&mc.debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}

func (mc *MCPCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(mc.cfgPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if mc.debug {
		level = "debug"
	}

	log := observability.NewLogger(level)

	provider, err := mc.dictionaryProvider(cfg)
	if err != nil {
		return err
	}

	observer, err := mc.startMetrics(log)
	if err != nil {
		return err
	}

	deps := mcp.ServerDeps{
		Logger:   log,
		Provider: provider,
		Options:  cfg.Review.Options(""),
		Observer: observer,
	}

	srv := mcp.NewServer(deps)

	log.Info("mcp server starting", slog.Any("tools", srv.ListToolNames()))

	return srv.Run(cmd.Context())
}

func (mc *MCPCommand) dictionaryProvider(cfg *config.Config) (term.Provider, error) {
	path := mc.dictPath
	if path == "" {
		path = cfg.Dictionary.Path
	}

	entries, err := term.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return term.NewStore(entries), nil
}

// startMetrics starts the Prometheus listener when configured and
// returns the review observer. Without an address both are nil.
func (mc *MCPCommand) startMetrics(log *slog.Logger) (review.Observer, error) {
	if mc.metricsAddr == "" {
		return nil, nil
	}

	handler, meter, err := observability.PrometheusHandler()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewReviewMetrics(meter)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              mc.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Warn("metrics listener stopped", slog.Any("error", serveErr))
		}
	}()

	log.Info("metrics listening", slog.String("addr", mc.metricsAddr))

	return metrics, nil
}
