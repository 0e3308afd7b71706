// Package rewrite applies accepted rename suggestions to source text.
// Replacement is span-based: everything outside the renamed
// occurrences stays byte-for-byte identical.
package rewrite

import (
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/namefang/pkg/match"
	"github.com/Sumatoshi-tech/namefang/pkg/scope"
)

// CollisionError reports a rename that would make two distinct
// bindings share one name within reachable scopes. It is localized to
// a single suggestion; the rest of the rewrite proceeds.
type CollisionError struct {
	Original  string
	Suggested string
	Reason    string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("cannot rename %s to %s: %s", e.Original, e.Suggested, e.Reason)
}

// Result describes one rewrite pass.
type Result struct {
	Output  []byte
	Applied []*match.Suggestion
	Failed  []*match.Suggestion
	Errors  []error
}

type replacement struct {
	start int
	end   int
	text  string
}

// Apply rewrites every occurrence of each accepted suggestion's
// binding. Suggestions that would collide are skipped with their
// FailureReason set, leaving their occurrences untouched.
func Apply(source []byte, ext *scope.Extraction, suggestions []*match.Suggestion) *Result {
	res := &Result{}

	var repls []replacement

	for _, s := range suggestions {
		if s.Binding == nil || !s.Actionable() {
			continue
		}

		err := checkCollision(ext, res.Applied, s)
		if err != nil {
			s.FailureReason = err.Error()
			res.Failed = append(res.Failed, s)
			res.Errors = append(res.Errors, err)

			continue
		}

		res.Applied = append(res.Applied, s)

		for _, occ := range s.Binding.Occurrences {
			repls = append(repls, replacement{start: occ.StartByte, end: occ.EndByte, text: s.SuggestedName})
		}
	}

	res.Output = replaceAll(source, repls)

	return res
}

// replaceAll substitutes spans in descending start order so earlier
// offsets stay valid while later ones are rewritten.
func replaceAll(source []byte, repls []replacement) []byte {
	sort.Slice(repls, func(i, j int) bool {
		return repls[i].start > repls[j].start
	})

	out := make([]byte, len(source))
	copy(out, source)

	for _, r := range repls {
		if r.start < 0 || r.end > len(out) || r.start > r.end {
			continue
		}

		rest := append([]byte(r.text), out[r.end:]...)
		out = append(out[:r.start], rest...)
	}

	return out
}

// checkCollision enforces the shadowing-safety invariant: the new
// name must not denote a distinct binding reachable from the renamed
// binding's scope, nor clash with an already accepted rename.
func checkCollision(ext *scope.Extraction, accepted []*match.Suggestion, s *match.Suggestion) error {
	b := s.Binding
	name := s.SuggestedName

	for _, v := range ext.VisibleBindings(b.ScopeID) {
		if v != b && v.Name == name {
			return &CollisionError{
				Original:  s.OriginalName,
				Suggested: name,
				Reason:    fmt.Sprintf("%s already names a %s in a reachable scope", name, v.Role),
			}
		}
	}

	for _, prev := range accepted {
		if prev.SuggestedName != name || prev.Binding == b {
			continue
		}

		if !scopesRelated(ext, prev.Binding.ScopeID, b.ScopeID) {
			continue
		}

		// Renaming a shadow pair to the same new name keeps the
		// original shadowing structure and is safe.
		if prev.Binding.Name == b.Name && prev.Binding.ScopeID != b.ScopeID {
			continue
		}

		return &CollisionError{
			Original:  s.OriginalName,
			Suggested: name,
			Reason:    fmt.Sprintf("%s is already the accepted rename of %s", name, prev.OriginalName),
		}
	}

	return nil
}

// scopesRelated reports whether one scope encloses the other (or they
// are the same scope), which is when two equal names would interfere.
func scopesRelated(ext *scope.Extraction, a, b int) bool {
	for cur := a; cur >= 0; cur = ext.Scopes[cur].ParentID {
		if cur == b {
			return true
		}
	}

	for cur := b; cur >= 0; cur = ext.Scopes[cur].ParentID {
		if cur == a {
			return true
		}
	}

	return false
}
