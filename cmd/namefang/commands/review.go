// Package commands implements CLI command handlers for namefang.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/namefang/internal/config"
	"github.com/Sumatoshi-tech/namefang/internal/observability"
	"github.com/Sumatoshi-tech/namefang/pkg/review"
	"github.com/Sumatoshi-tech/namefang/pkg/stats"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
	"github.com/Sumatoshi-tech/namefang/pkg/textutil"
)

// pythonLanguage is the enry language name accepted by the review command.
const pythonLanguage = "Python"

// stdinFileID labels fragments read from standard input.
const stdinFileID = "stdin"

// ErrNotPython indicates the input file is written in another language.
var ErrNotPython = errors.New("input is not Python")

// ErrBinaryInput indicates the input looks like binary data.
var ErrBinaryInput = errors.New("input looks binary")

// ReviewCommand holds configuration and flags for the review command.
type ReviewCommand struct {
	cfgPath  string
	dictPath string

	minConfidence    float64
	targetConvention string
	fuzzyThreshold   float64

	write   bool
	jsonOut bool
	noColor bool
	noStats bool
}

// NewReviewCommand creates the review command.
func NewReviewCommand() *cobra.Command {
	rc := &ReviewCommand{}

	cmd := &cobra.Command{
		Use:   "review [file]",
		Short: "Review a Python fragment for abbreviated identifiers",
		Long: `Review a Python code fragment, match its identifiers against the
terminology dictionary and print rename suggestions with confidence
scores. Reads from stdin when no file is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          rc.run,
	}

	cmd.Flags().StringVarP(&rc.cfgPath, "config", "c", "", "Config file path (default: .namefang.yaml in cwd)")
	cmd.Flags().StringVar(&rc.dictPath, "dict", "", "Dictionary file (.csv or .json; overrides config)")
	cmd.Flags().Float64Var(&rc.minConfidence, "min-confidence", 0, "Drop suggestions below this confidence")
	cmd.Flags().StringVar(&rc.targetConvention, "convention", "", "Target convention: preserve, snake_case, camelCase")
	cmd.Flags().Float64Var(&rc.fuzzyThreshold, "fuzzy-threshold", 0, "Maximum edit distance ratio for partial matches")
	cmd.Flags().BoolVarP(&rc.write, "write", "w", false, "Rewrite the input file in place")
	cmd.Flags().BoolVar(&rc.jsonOut, "json", false, "Emit the full result as JSON")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored diff output")
	cmd.Flags().BoolVar(&rc.noStats, "no-stats", false, "Skip recording transformation statistics")

	return cmd
}

func (rc *ReviewCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(rc.cfgPath)
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Log.Level)

	source, path, err := rc.readInput(cmd, args)
	if err != nil {
		return err
	}

	dict := rc.loadDictionary(cfg, log)
	opts := rc.reviewOptions(cmd, cfg, path)

	engineOpts := []review.EngineOption{review.WithLogger(log)}
	if cfg.Stats.Enabled && !rc.noStats {
		engineOpts = append(engineOpts, review.WithRecorder(stats.NewStore(cfg.Stats.Path)))
	}

	engine := review.NewEngine(engineOpts...)

	result, err := engine.Review(cmd.Context(), source, dict, opts)
	if err != nil {
		return err
	}

	if rc.write && path != stdinFileID {
		err = os.WriteFile(path, []byte(result.ImprovedCode), 0o644)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return rc.render(cmd.OutOrStdout(), string(source), result)
}

// readInput reads the fragment from the file argument or stdin and
// returns it with its file identifier.
func (rc *ReviewCommand) readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		source, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		if textutil.IsBinary(source) {
			return nil, "", ErrBinaryInput
		}

		return source, stdinFileID, nil
	}

	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	if textutil.IsBinary(source) {
		return nil, "", fmt.Errorf("%w: %s", ErrBinaryInput, path)
	}

	lang := enry.GetLanguage(filepath.Base(path), source)
	if lang != "" && lang != pythonLanguage {
		return nil, "", fmt.Errorf("%w: detected %s", ErrNotPython, lang)
	}

	return source, path, nil
}

// loadDictionary resolves the dictionary file. A load failure degrades
// to a nil dictionary so the review still reports unmatched tokens.
func (rc *ReviewCommand) loadDictionary(cfg *config.Config, log *slog.Logger) *term.Dictionary {
	path := rc.dictPath
	if path == "" {
		path = cfg.Dictionary.Path
	}

	entries, err := term.LoadFile(path)
	if err != nil {
		log.Warn("dictionary unavailable, reporting all tokens as unmatched", slog.Any("error", err))

		return nil
	}

	return term.NewDictionary(entries)
}

// reviewOptions merges config values with explicit flag overrides.
func (rc *ReviewCommand) reviewOptions(cmd *cobra.Command, cfg *config.Config, fileID string) review.Options {
	opts := cfg.Review.Options(fileID)

	if cmd.Flags().Changed("min-confidence") {
		opts.MinConfidence = rc.minConfidence
	}

	if cmd.Flags().Changed("convention") {
		opts.TargetConvention = rc.targetConvention
	}

	if cmd.Flags().Changed("fuzzy-threshold") {
		opts.FuzzyThreshold = rc.fuzzyThreshold
	}

	return opts
}

func (rc *ReviewCommand) render(w io.Writer, original string, result *review.Result) error {
	if rc.jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		fmt.Fprintln(w, string(data))

		return nil
	}

	renderSuggestions(w, result.Suggestions)

	if original != result.ImprovedCode {
		fmt.Fprintln(w)
		renderDiff(w, original, result.ImprovedCode, rc.noColor)
	}

	fmt.Fprintf(w, "\n%d issue(s), confidence %.2f\n", result.IssuesCount, result.Confidence)

	return nil
}
