// Package scope extracts identifier bindings and their lexical scopes
// from Python source fragments using tree-sitter. It is the structural
// front end of the standardization engine: every rename decision
// downstream operates on the bindings produced here.
package scope

import "errors"

// ErrParse indicates the fragment is not syntactically valid Python.
// The review fails as a whole; no partial analysis is attempted.
var ErrParse = errors.New("code could not be parsed")

// Kind classifies a lexical scope.
type Kind int

// Scope kinds.
const (
	KindModule Kind = iota
	KindFunction
	KindClass
	KindComprehension
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindComprehension:
		return "comprehension"
	case KindLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// Role classifies what a binding names.
type Role int

// Binding roles.
const (
	RoleLocal Role = iota
	RoleParameter
	RoleFunction
	RoleClass
	RoleAttribute
	RoleGlobal
)

func (r Role) String() string {
	switch r {
	case RoleLocal:
		return "local"
	case RoleParameter:
		return "parameter"
	case RoleFunction:
		return "function"
	case RoleClass:
		return "class"
	case RoleAttribute:
		return "attribute"
	case RoleGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Span is one identifier occurrence in the source, as half-open byte
// offsets plus 1-based line/column positions.
type Span struct {
	StartByte int
	EndByte   int
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Scope is one node of the lexical scope tree. ParentID is -1 for the
// module scope.
type Scope struct {
	ID       int
	ParentID int
	Kind     Kind
}

// Binding is one declared identifier within one scope together with
// every occurrence that resolves to it. Shadowing in a nested scope
// produces a distinct Binding with its own ScopeID.
type Binding struct {
	Name        string
	Role        Role
	ScopeID     int
	Occurrences []Span

	// External marks names bound by imports. They are recorded for
	// collision checks but never offered for renaming.
	External bool
}

// Renameable reports whether the binding may be offered a rename
// suggestion. Imported names and Python builtins keep their spelling
// to avoid breaking external contracts.
func (b *Binding) Renameable() bool {
	return !b.External && !IsBuiltin(b.Name)
}

// Extraction is the full result of analyzing one fragment.
type Extraction struct {
	Source   []byte
	Scopes   []*Scope
	Bindings []*Binding
}

// ScopeByID returns the scope with the given ID, or nil.
func (e *Extraction) ScopeByID(id int) *Scope {
	if id < 0 || id >= len(e.Scopes) {
		return nil
	}

	return e.Scopes[id]
}

// Resolve finds the binding a name refers to when read from the given
// scope, following the lexical chain upward. Class scopes are skipped
// for lookups that originate in a nested scope, matching Python name
// resolution.
func (e *Extraction) Resolve(name string, scopeID int) *Binding {
	first := true

	for sid := scopeID; sid >= 0; {
		sc := e.Scopes[sid]

		if first || sc.Kind != KindClass {
			if b := e.bindingIn(name, sid); b != nil {
				return b
			}
		}

		first = false
		sid = sc.ParentID
	}

	return nil
}

func (e *Extraction) bindingIn(name string, scopeID int) *Binding {
	for _, b := range e.Bindings {
		if b.ScopeID == scopeID && b.Name == name {
			return b
		}
	}

	return nil
}

// VisibleBindings returns every binding that is reachable from the
// given scope: declared in it, in any enclosing scope, or in any scope
// nested inside it. The rewriter uses this set for collision checks.
func (e *Extraction) VisibleBindings(scopeID int) []*Binding {
	related := make(map[int]bool)

	// Enclosing chain, including the scope itself.
	for sid := scopeID; sid >= 0; sid = e.Scopes[sid].ParentID {
		related[sid] = true
	}

	// All scopes nested inside scopeID.
	for _, sc := range e.Scopes {
		for sid := sc.ID; sid >= 0; sid = e.Scopes[sid].ParentID {
			if sid == scopeID {
				related[sc.ID] = true

				break
			}
		}
	}

	var out []*Binding

	for _, b := range e.Bindings {
		if related[b.ScopeID] {
			out = append(out, b)
		}
	}

	return out
}
