// Package review is the identifier standardization engine. One Review
// call parses a fragment, matches its bindings against a terminology
// dictionary snapshot, applies the accepted renames, and returns a
// single immutable Result.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/namefang/pkg/convention"
	"github.com/Sumatoshi-tech/namefang/pkg/match"
	"github.com/Sumatoshi-tech/namefang/pkg/rewrite"
	"github.com/Sumatoshi-tech/namefang/pkg/scope"
	"github.com/Sumatoshi-tech/namefang/pkg/stats"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
	"github.com/Sumatoshi-tech/namefang/pkg/textutil"
)

// DefaultMaxInputBytes caps fragment size at the engine boundary. It
// is the backpressure mechanism; nothing inside a review suspends.
const DefaultMaxInputBytes = 256 << 10

// ErrTooLarge indicates the fragment exceeds the configured size cap.
var ErrTooLarge = errors.New("fragment exceeds size limit")

// Target conventions accepted by Options.TargetConvention.
const (
	TargetPreserve = "preserve"
	TargetSnake    = "snake_case"
	TargetCamel    = "camelCase"
)

// Options configures one review call.
type Options struct {
	// MinConfidence filters suggestions below this value before the
	// rewrite; they neither apply nor appear in the Result.
	MinConfidence float64

	// TargetConvention is "preserve" (default), "snake_case" or
	// "camelCase".
	TargetConvention string

	// FuzzyThreshold overrides the maximum edit distance ratio for
	// partial matches when positive.
	FuzzyThreshold float64

	// MaxInputBytes overrides DefaultMaxInputBytes when positive.
	MaxInputBytes int

	// FileID labels the fragment in statistics records.
	FileID string
}

// Result is the engine's single output artifact. It is immutable
// after construction.
type Result struct {
	ImprovedCode string              `json:"improved_code"`
	IssuesCount  int                 `json:"issues_count"`
	Suggestions  []*match.Suggestion `json:"suggestions"`
	Confidence   float64             `json:"confidence"`
}

// Observer receives one callback per completed review for metrics.
type Observer interface {
	ObserveReview(elapsed time.Duration, applied int, err error)
}

// Engine holds the long-lived pieces: the parser pool, logger and
// optional sinks. It carries no state across reviews.
type Engine struct {
	extractor *scope.Extractor
	log       *slog.Logger
	recorder  stats.Recorder
	observer  Observer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithRecorder emits one stats record per completed review.
func WithRecorder(rec stats.Recorder) EngineOption {
	return func(e *Engine) { e.recorder = rec }
}

// WithObserver wires review metrics.
func WithObserver(obs Observer) EngineOption {
	return func(e *Engine) { e.observer = obs }
}

// NewEngine creates a review engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		extractor: scope.NewExtractor(),
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Review runs one standardization pass over source against the given
// dictionary snapshot. A nil dictionary degrades to reporting every
// token as unmatched instead of failing the review.
func (e *Engine) Review(ctx context.Context, source []byte, dict *term.Dictionary, opts Options) (*Result, error) {
	start := time.Now()

	res, applied, err := e.review(ctx, source, dict, opts)

	if e.observer != nil {
		e.observer.ObserveReview(time.Since(start), applied, err)
	}

	if err != nil {
		return nil, err
	}

	e.emitRecord(source, res, applied, opts)

	return res, nil
}

func (e *Engine) review(ctx context.Context, source []byte, dict *term.Dictionary, opts Options) (*Result, int, error) {
	limit := opts.MaxInputBytes
	if limit <= 0 {
		limit = DefaultMaxInputBytes
	}

	if len(source) > limit {
		return nil, 0, fmt.Errorf("%w: %d bytes over %d", ErrTooLarge, len(source), limit)
	}

	matcherOpts, err := matcherOptions(opts)
	if err != nil {
		return nil, 0, err
	}

	ext, err := e.extractor.Extract(ctx, source)
	if err != nil {
		return nil, 0, err
	}

	matcher := match.NewMatcher(dict, matcherOpts...)

	var (
		candidates []*match.Suggestion
		issues     int
	)

	for _, b := range ext.Bindings {
		if !b.Renameable() || len(b.Occurrences) == 0 {
			continue
		}

		s, ok := matcher.Match(b.Name, b.Role)
		if !ok {
			continue
		}

		s.Binding = b

		switch {
		case s.Actionable():
			issues++

			if s.Confidence >= opts.MinConfidence {
				sug := s
				candidates = append(candidates, &sug)
			}
		case s.Flagged():
			// No actionable fix, but partial matches still signal a
			// naming-quality issue.
			issues++
		}
	}

	rw := rewrite.Apply(source, ext, candidates)

	res := &Result{
		ImprovedCode: string(rw.Output),
		IssuesCount:  issues,
		Suggestions:  candidates,
		Confidence:   meanConfidence(candidates),
	}

	e.log.DebugContext(ctx, "review complete",
		slog.Int("bindings", len(ext.Bindings)),
		slog.Int("issues", issues),
		slog.Int("applied", len(rw.Applied)),
		slog.Int("collisions", len(rw.Failed)))

	return res, len(rw.Applied), nil
}

func matcherOptions(opts Options) ([]match.Option, error) {
	var matcherOpts []match.Option

	if opts.FuzzyThreshold > 0 {
		matcherOpts = append(matcherOpts, match.WithFuzzyThreshold(opts.FuzzyThreshold))
	}

	switch opts.TargetConvention {
	case "", TargetPreserve:
	case TargetSnake:
		matcherOpts = append(matcherOpts, match.WithTargetConvention(convention.Snake))
	case TargetCamel:
		matcherOpts = append(matcherOpts, match.WithTargetConvention(convention.Camel))
	default:
		return nil, fmt.Errorf("%w: %q", convention.ErrUnknownConvention, opts.TargetConvention)
	}

	return matcherOpts, nil
}

// meanConfidence averages per-suggestion confidences. An empty
// suggestion list means nothing is in doubt.
func meanConfidence(suggestions []*match.Suggestion) float64 {
	if len(suggestions) == 0 {
		return 1.0
	}

	sum := 0.0
	for _, s := range suggestions {
		sum += s.Confidence
	}

	return sum / float64(len(suggestions))
}

func (e *Engine) emitRecord(source []byte, res *Result, applied int, opts Options) {
	if e.recorder == nil {
		return
	}

	first := ""

	for _, s := range res.Suggestions {
		if s.FailureReason == "" {
			first = s.SuggestedName

			break
		}
	}

	rec := stats.TransformationRecord{
		Timestamp:          time.Now(),
		FileID:             opts.FileID,
		LinesCount:         textutil.CountLines(source),
		SuggestionsApplied: applied,
		SuggestedName:      first,
		AverageConfidence:  res.Confidence,
	}

	if err := e.recorder.Record(rec); err != nil {
		e.log.Warn("stats record failed", slog.Any("error", err))
	}
}
