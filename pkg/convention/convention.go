// Package convention classifies identifier naming conventions and
// decomposes identifiers into word tokens that can be reassembled
// without losing a single byte of the original spelling.
package convention

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Convention is the casing/separator pattern of an identifier.
type Convention int

// Supported naming conventions.
const (
	// FlatLower is a single lowercase word with no separators ("result").
	FlatLower Convention = iota
	// Snake is lowercase words joined by underscores ("usr_id").
	Snake
	// Camel is lowerCamelCase ("usrId").
	Camel
	// Pascal is UpperCamelCase ("UsrId").
	Pascal
	// ScreamingSnake is uppercase words joined by underscores ("MAX_CNT").
	ScreamingSnake
	// Mixed is anything that does not fit a single convention. Mixed
	// identifiers are treated as opaque: they decompose into one token
	// and always reassemble verbatim.
	Mixed
)

// ErrUnknownConvention is returned by ParseConvention for unrecognized names.
var ErrUnknownConvention = errors.New("unknown naming convention")

func (c Convention) String() string {
	switch c {
	case FlatLower:
		return "flat-lower"
	case Snake:
		return "snake_case"
	case Camel:
		return "camelCase"
	case Pascal:
		return "PascalCase"
	case ScreamingSnake:
		return "SCREAMING_SNAKE"
	case Mixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// ParseConvention resolves a convention name as used in configuration files.
func ParseConvention(name string) (Convention, error) {
	switch name {
	case "flat-lower", "flat":
		return FlatLower, nil
	case "snake_case", "snake":
		return Snake, nil
	case "camelCase", "camel":
		return Camel, nil
	case "PascalCase", "pascal":
		return Pascal, nil
	case "SCREAMING_SNAKE", "screaming_snake":
		return ScreamingSnake, nil
	case "mixed":
		return Mixed, nil
	default:
		return Mixed, fmt.Errorf("%w: %q", ErrUnknownConvention, name)
	}
}

// Identifier is a decomposed identifier. Prefix and Suffix hold the
// underscore frame (leading and trailing underscores carry meaning in
// Python and are never rewritten). Words are the lowercase tokens of
// the core; empty tokens mark runs of interior underscores so the
// frame-and-separator structure survives reassembly.
type Identifier struct {
	Raw    string
	Conv   Convention
	Prefix string
	Suffix string
	Words  []string
}

// caser is one convention's pure decompose/assemble pair over the
// identifier core (the part between the underscore frame).
type caser interface {
	split(core string) []string
	join(words []string) string
}

var casers = map[Convention]caser{
	FlatLower:      flatCaser{},
	Snake:          snakeCaser{},
	Camel:          camelCaser{upperFirst: false},
	Pascal:         camelCaser{upperFirst: true},
	ScreamingSnake: screamingCaser{},
	Mixed:          flatCaser{},
}

// Parse detects the convention of name and decomposes it. The
// round-trip law holds for every input: Parse(x).Assemble() == x.
func Parse(name string) Identifier {
	prefix, core, suffix := splitFrame(name)
	conv := detectCore(core)

	id := Identifier{
		Raw:    name,
		Conv:   conv,
		Prefix: prefix,
		Suffix: suffix,
	}

	if core != "" {
		id.Words = casers[conv].split(core)
	}

	return id
}

// Detect classifies the naming convention of name.
func Detect(name string) Convention {
	_, core, _ := splitFrame(name)

	return detectCore(core)
}

// Assemble reconstructs the original identifier from its parts.
func (id Identifier) Assemble() string {
	// Mixed cores lose casing information during decomposition, so they
	// reassemble from the stored raw spelling.
	if id.Conv == Mixed {
		return id.Raw
	}

	return id.Rename(id.Words)
}

// Rename reassembles the identifier with new words under its original
// convention, keeping the underscore frame intact.
func (id Identifier) Rename(words []string) string {
	return id.Prefix + casers[id.Conv].join(words) + id.Suffix
}

// RenameAs reassembles the identifier with new words under an explicit
// target convention, keeping the underscore frame intact.
func (id Identifier) RenameAs(words []string, conv Convention) string {
	return id.Prefix + casers[conv].join(words) + id.Suffix
}

// Assemble joins words under the given convention without any frame.
func Assemble(words []string, conv Convention) string {
	return casers[conv].join(words)
}

// splitFrame separates leading and trailing underscores from the core.
func splitFrame(name string) (prefix, core, suffix string) {
	start := 0
	for start < len(name) && name[start] == '_' {
		start++
	}

	end := len(name)
	for end > start && name[end-1] == '_' {
		end--
	}

	return name[:start], name[start:end], name[end:]
}

// detectCore classifies the identifier core by structural inspection.
func detectCore(core string) Convention {
	if core == "" {
		return FlatLower
	}

	var hasUpper, hasLower, hasUnderscore bool

	for _, r := range core {
		switch {
		case r == '_':
			hasUnderscore = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	if hasUnderscore {
		switch {
		case hasUpper && hasLower:
			return Mixed
		case hasUpper:
			return ScreamingSnake
		default:
			return Snake
		}
	}

	switch {
	case !hasUpper:
		return FlatLower
	case !hasLower:
		return ScreamingSnake
	}

	// Consecutive uppercase runs ("parseHTTPResponse") cannot survive a
	// lowercase round trip; classify them as mixed and leave them alone.
	if hasUpperRun(core) {
		return Mixed
	}

	first := rune(core[0])
	if unicode.IsUpper(first) {
		return Pascal
	}

	if unicode.IsLower(first) {
		return Camel
	}

	return Mixed
}

// hasUpperRun reports whether the core contains two adjacent uppercase letters.
func hasUpperRun(core string) bool {
	prevUpper := false

	for _, r := range core {
		upper := unicode.IsUpper(r)
		if upper && prevUpper {
			return true
		}

		prevUpper = upper
	}

	return false
}

type flatCaser struct{}

func (flatCaser) split(core string) []string {
	return []string{strings.ToLower(core)}
}

func (flatCaser) join(words []string) string {
	return strings.Join(words, "")
}

type snakeCaser struct{}

func (snakeCaser) split(core string) []string {
	return strings.Split(core, "_")
}

func (snakeCaser) join(words []string) string {
	return strings.Join(words, "_")
}

type screamingCaser struct{}

func (screamingCaser) split(core string) []string {
	parts := strings.Split(core, "_")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}

	return parts
}

func (screamingCaser) join(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.ToUpper(w)
	}

	return strings.Join(parts, "_")
}

type camelCaser struct {
	upperFirst bool
}

func (camelCaser) split(core string) []string {
	var words []string

	start := 0

	for i, r := range core {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, strings.ToLower(core[start:i]))
			start = i
		}
	}

	words = append(words, strings.ToLower(core[start:]))

	return words
}

func (c camelCaser) join(words []string) string {
	var b strings.Builder

	wordIndex := 0

	for _, w := range words {
		if w == "" {
			continue
		}

		if wordIndex == 0 && !c.upperFirst {
			b.WriteString(w)
		} else {
			b.WriteString(titleWord(w))
		}

		wordIndex++
	}

	return b.String()
}

// titleWord uppercases the first rune of a lowercase word.
func titleWord(w string) string {
	for i, r := range w {
		return string(unicode.ToUpper(r)) + w[i+len(string(r)):]
	}

	return w
}
