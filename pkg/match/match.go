// Package match evaluates identifier bindings against a terminology
// dictionary and produces rename suggestions with confidence scores.
package match

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/namefang/pkg/convention"
	"github.com/Sumatoshi-tech/namefang/pkg/levenshtein"
	"github.com/Sumatoshi-tech/namefang/pkg/scope"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
)

// DefaultFuzzyThreshold is the maximum normalized edit distance for a
// token to count as a partial dictionary match. At 0.3, "ussr" still
// reaches "usr" while "result" stays clear of "res".
const DefaultFuzzyThreshold = 0.3

// Kind classifies how a token matched the dictionary.
type Kind int

// Token match kinds.
const (
	KindExact Kind = iota
	KindPartial
	KindUnmatched
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPartial:
		return "partial"
	case KindUnmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the kind names emitted by MarshalJSON.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("decode match kind: %w", err)
	}

	switch name {
	case "exact":
		*k = KindExact
	case "partial":
		*k = KindPartial
	case "unmatched":
		*k = KindUnmatched
	default:
		return fmt.Errorf("unknown match kind %q", name)
	}

	return nil
}

// TokenMatch records the outcome for one constituent word-token.
type TokenMatch struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
	Kind      Kind   `json:"kind"`

	// key is the dictionary key a partial match resolved to.
	key string

	// distance is the normalized edit distance to the matched key,
	// zero for exact matches and one for unmatched tokens.
	distance float64
}

// Suggestion is one proposed rename for one binding.
type Suggestion struct {
	Binding       *scope.Binding `json:"-"`
	OriginalName  string         `json:"original_name"`
	SuggestedName string         `json:"suggested_name"`
	Confidence    float64        `json:"confidence"`
	Rationale     string         `json:"rationale"`
	Tokens        []TokenMatch   `json:"matched_tokens"`

	// FailureReason is filled by the rewriter when the suggestion
	// could not be applied.
	FailureReason string `json:"failure_reason,omitempty"`
}

// Actionable reports whether applying the suggestion changes the name.
func (s *Suggestion) Actionable() bool {
	return s.SuggestedName != s.OriginalName
}

// Flagged reports whether the binding shows naming-quality evidence
// even without an actionable fix: some token only partially matched
// the dictionary.
func (s *Suggestion) Flagged() bool {
	for _, tm := range s.Tokens {
		if tm.Kind == KindPartial {
			return true
		}
	}

	return false
}

// Matcher evaluates names against one immutable dictionary snapshot.
// It reuses an edit-distance buffer and is therefore not safe for
// concurrent use; create one per review.
type Matcher struct {
	dict      *term.Dictionary
	canonical map[string]bool
	threshold float64
	target    convention.Convention
	preserve  bool
	lev       *levenshtein.Context
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithFuzzyThreshold sets the maximum edit distance ratio for partial
// matches. Zero disables fuzzy matching entirely.
func WithFuzzyThreshold(t float64) Option {
	return func(m *Matcher) { m.threshold = t }
}

// WithTargetConvention reassembles suggestions under the given
// convention instead of preserving each identifier's own.
func WithTargetConvention(c convention.Convention) Option {
	return func(m *Matcher) {
		m.target = c
		m.preserve = false
	}
}

// NewMatcher creates a Matcher over the given dictionary snapshot.
// A nil dictionary degrades gracefully: every token reports unmatched.
func NewMatcher(dict *term.Dictionary, opts ...Option) *Matcher {
	m := &Matcher{
		dict:      dict,
		canonical: map[string]bool{},
		threshold: DefaultFuzzyThreshold,
		preserve:  true,
		lev:       &levenshtein.Context{},
	}

	if dict != nil {
		for _, entry := range dict.Entries() {
			m.canonical[term.Normalize(entry.Canonical)] = true
		}
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Match evaluates one binding name. ok is false when the identifier
// cannot be decomposed and has no whole-name dictionary entry.
func (m *Matcher) Match(name string, role scope.Role) (Suggestion, bool) {
	id := convention.Parse(name)

	if id.Conv == convention.Mixed || len(id.Words) == 0 {
		return m.matchWhole(name)
	}

	tokens := make([]TokenMatch, 0, len(id.Words))
	words := make([]string, 0, len(id.Words))

	for _, word := range id.Words {
		tm := m.matchToken(word, role)
		tokens = append(tokens, tm)

		if tm.Kind == KindUnmatched {
			words = append(words, word)
		} else {
			words = append(words, tm.Canonical)
		}
	}

	suggested := id.Rename(words)
	if !m.preserve {
		suggested = id.RenameAs(words, m.target)
	}

	return Suggestion{
		OriginalName:  name,
		SuggestedName: suggested,
		Confidence:    confidence(tokens),
		Rationale:     rationale(tokens),
		Tokens:        tokens,
	}, true
}

// matchWhole handles identifiers that resist decomposition: only a
// verbatim whole-name dictionary entry can rename them.
func (m *Matcher) matchWhole(name string) (Suggestion, bool) {
	if m.dict == nil {
		return Suggestion{}, false
	}

	entry, ok := m.dict.Lookup(name)
	if !ok {
		return Suggestion{}, false
	}

	tm := TokenMatch{Raw: name, Canonical: entry.Canonical, Kind: KindExact}

	return Suggestion{
		OriginalName:  name,
		SuggestedName: entry.Canonical,
		Confidence:    1.0,
		Rationale:     rationale([]TokenMatch{tm}),
		Tokens:        []TokenMatch{tm},
	}, true
}

func (m *Matcher) matchToken(word string, role scope.Role) TokenMatch {
	tm := TokenMatch{Raw: word, Canonical: word, Kind: KindUnmatched, distance: 1}

	if m.dict == nil || word == "" {
		return tm
	}

	if entry, ok := m.dict.Lookup(word); ok {
		tm.Canonical = entry.Canonical
		tm.Kind = KindExact
		tm.distance = 0

		return tm
	}

	// A token that already is some entry's canonical form needs no
	// fuzzy search; reaching its own abbreviation key would flag
	// perfectly good names.
	if m.canonical[word] {
		tm.Kind = KindExact
		tm.distance = 0

		return tm
	}

	if entry, dist, ok := m.fuzzyLookup(word, role); ok {
		tm.Canonical = entry.Canonical
		tm.Kind = KindPartial
		tm.key = entry.Key
		tm.distance = dist

		return tm
	}

	return tm
}

// fuzzyLookup finds the dictionary key closest to the token within the
// threshold. Among equally close candidates the entry whose category
// matches the binding's role wins, then the lexicographically first
// key.
func (m *Matcher) fuzzyLookup(word string, role scope.Role) (term.Entry, float64, bool) {
	if m.threshold <= 0 {
		return term.Entry{}, 0, false
	}

	type candidate struct {
		entry term.Entry
		dist  float64
	}

	var candidates []candidate

	for _, key := range m.dict.Keys() {
		dist := m.lev.Ratio(word, key)
		if dist > 0 && dist <= m.threshold {
			entry, _ := m.dict.Lookup(key)
			candidates = append(candidates, candidate{entry: entry, dist: dist})
		}
	}

	if len(candidates) == 0 {
		return term.Entry{}, 0, false
	}

	preferred := roleCategory(role)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}

		iPref := candidates[i].entry.Category == preferred && preferred != ""
		jPref := candidates[j].entry.Category == preferred && preferred != ""

		if iPref != jPref {
			return iPref
		}

		return candidates[i].entry.Key < candidates[j].entry.Key
	})

	best := candidates[0]

	return best.entry, best.dist, true
}

// roleCategory maps a binding role to its preferred entry category.
func roleCategory(role scope.Role) string {
	switch role {
	case scope.RoleFunction:
		return "action"
	case scope.RoleClass:
		return "entity"
	default:
		return ""
	}
}

// confidence combines per-token outcomes weighted by each token's
// length share of the identifier. Exact matches carry full weight,
// partial matches a distance-scaled fraction, unmatched tokens none.
func confidence(tokens []TokenMatch) float64 {
	total := 0

	for _, tm := range tokens {
		total += utf8.RuneCountInString(tm.Raw)
	}

	if total == 0 {
		return 0
	}

	allExact := true
	score := 0.0

	for _, tm := range tokens {
		weight := float64(utf8.RuneCountInString(tm.Raw)) / float64(total)
		score += weight * (1 - tm.distance)

		if tm.Kind != KindExact {
			allExact = false
		}
	}

	if allExact {
		return 1.0
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

// rationale renders a short per-token explanation for display.
func rationale(tokens []TokenMatch) string {
	parts := make([]string, 0, len(tokens))

	for _, tm := range tokens {
		switch tm.Kind {
		case KindExact:
			if tm.Raw == tm.Canonical {
				parts = append(parts, fmt.Sprintf("%s already canonical", tm.Raw))
			} else {
				parts = append(parts, fmt.Sprintf("%s -> %s (exact)", tm.Raw, tm.Canonical))
			}
		case KindPartial:
			parts = append(parts, fmt.Sprintf("%s -> %s (close to %q)", tm.Raw, tm.Canonical, tm.key))
		case KindUnmatched:
			parts = append(parts, fmt.Sprintf("%s kept (no dictionary entry)", tm.Raw))
		}
	}

	return strings.Join(parts, "; ")
}
