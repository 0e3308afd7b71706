package scope

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/namefang/pkg/safeconv"
)

var errPoolType = errors.New("unexpected type in parser pool")

// Extractor parses Python fragments and builds their scope tree. It is
// safe for concurrent use; parsers are pooled per goroutine.
type Extractor struct {
	parserPool sync.Pool
}

// NewExtractor creates an Extractor with the Python grammar loaded.
func NewExtractor() *Extractor {
	lang := sitter.NewLanguage(python.GetLanguage())

	return &Extractor{
		parserPool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Extract parses source and returns its scopes and bindings. A syntax
// error anywhere in the fragment yields ErrParse; no partial result is
// produced.
func (x *Extractor) Extract(ctx context.Context, source []byte) (*Extraction, error) {
	tsParser, ok := x.parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer x.parserPool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, fmt.Errorf("%w: no root node", ErrParse)
	}

	if root.HasError() {
		return nil, fmt.Errorf("%w: syntax error", ErrParse)
	}

	w := newWalker(source)

	// First pass collects declarations for every scope so that later
	// references to names assigned further down still resolve, matching
	// Python's function-body hoisting. Second pass records occurrences.
	w.phase = phaseDeclare
	w.walk(root, moduleScopeID)

	w.phase = phaseResolve
	w.cursor = 1
	w.walk(root, moduleScopeID)

	return &Extraction{
		Source:   source,
		Scopes:   w.scopes,
		Bindings: w.bindings,
	}, nil
}

const (
	phaseDeclare = iota
	phaseResolve

	moduleScopeID = 0
	noParent      = -1
)

// walker performs the two traversal passes. Both passes visit nodes in
// the exact same order so that scope IDs assigned in the declare pass
// line up with the cursor positions of the resolve pass.
type walker struct {
	src      []byte
	phase    int
	cursor   int
	scopes   []*Scope
	decls    []map[string]*Binding
	redirect []map[string]int
	bindings []*Binding
}

func newWalker(src []byte) *walker {
	w := &walker{src: src}

	w.scopes = append(w.scopes, &Scope{ID: moduleScopeID, ParentID: noParent, Kind: KindModule})
	w.decls = append(w.decls, map[string]*Binding{})
	w.redirect = append(w.redirect, map[string]int{})

	return w
}

func (w *walker) enterScope(kind Kind, parentID int) int {
	if w.phase == phaseDeclare {
		id := len(w.scopes)
		w.scopes = append(w.scopes, &Scope{ID: id, ParentID: parentID, Kind: kind})
		w.decls = append(w.decls, map[string]*Binding{})
		w.redirect = append(w.redirect, map[string]int{})

		return id
	}

	id := w.cursor
	w.cursor++

	return id
}

func (w *walker) text(n sitter.Node) string {
	return string(w.src[n.StartByte():n.EndByte()])
}

func (w *walker) span(n sitter.Node) Span {
	start := n.StartPoint()
	end := n.EndPoint()

	return Span{
		StartByte: safeconv.MustUintToInt(n.StartByte()),
		EndByte:   safeconv.MustUintToInt(n.EndByte()),
		StartLine: safeconv.MustUintToInt(start.Row) + 1,
		StartCol:  safeconv.MustUintToInt(start.Column) + 1,
		EndLine:   safeconv.MustUintToInt(end.Row) + 1,
		EndCol:    safeconv.MustUintToInt(end.Column) + 1,
	}
}

func (w *walker) walk(n sitter.Node, sid int) {
	if n.IsNull() {
		return
	}

	switch n.Type() {
	case "function_definition":
		w.walkFunction(n, sid)
	case "lambda":
		w.walkLambda(n, sid)
	case "class_definition":
		w.walkClass(n, sid)
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		w.walkComprehension(n, sid)
	case "assignment", "augmented_assignment":
		w.bindTargets(n.ChildByFieldName("left"), sid, RoleLocal)
		w.walk(n.ChildByFieldName("type"), sid)
		w.walk(n.ChildByFieldName("right"), sid)
	case "named_expression":
		w.bindTargets(n.ChildByFieldName("name"), sid, RoleLocal)
		w.walk(n.ChildByFieldName("value"), sid)
	case "for_statement":
		w.bindTargets(n.ChildByFieldName("left"), sid, RoleLocal)
		w.walk(n.ChildByFieldName("right"), sid)
		w.walk(n.ChildByFieldName("body"), sid)
		w.walk(n.ChildByFieldName("alternative"), sid)
	case "as_pattern":
		w.walk(n.NamedChild(0), sid)
		w.bindTargets(n.ChildByFieldName("alias"), sid, RoleLocal)
	case "global_statement":
		w.walkGlobal(n, sid)
	case "nonlocal_statement":
		w.walkNonlocal(n, sid)
	case "import_statement", "import_from_statement":
		w.walkImport(n, sid)
	case "keyword_argument":
		// The keyword name belongs to the callee's signature, not this
		// fragment's scope chain.
		w.walk(n.ChildByFieldName("value"), sid)
	case "attribute":
		w.walkAttribute(n, sid, false)
	case "identifier":
		w.recordReference(n, sid)
	default:
		for idx := range n.NamedChildCount() {
			w.walk(n.NamedChild(idx), sid)
		}
	}
}

func (w *walker) walkFunction(n sitter.Node, sid int) {
	if name := n.ChildByFieldName("name"); !name.IsNull() {
		w.bindIdentifier(name, sid, RoleFunction)
	}

	fnScope := w.enterScope(KindFunction, sid)

	w.walkParameters(n.ChildByFieldName("parameters"), fnScope, sid)

	// Return annotations are evaluated at definition time in the
	// enclosing scope.
	w.walk(n.ChildByFieldName("return_type"), sid)

	w.walk(n.ChildByFieldName("body"), fnScope)
}

func (w *walker) walkLambda(n sitter.Node, sid int) {
	lamScope := w.enterScope(KindLambda, sid)

	w.walkParameters(n.ChildByFieldName("parameters"), lamScope, sid)
	w.walk(n.ChildByFieldName("body"), lamScope)
}

func (w *walker) walkClass(n sitter.Node, sid int) {
	if name := n.ChildByFieldName("name"); !name.IsNull() {
		w.bindIdentifier(name, sid, RoleClass)
	}

	w.walk(n.ChildByFieldName("superclasses"), sid)

	clsScope := w.enterScope(KindClass, sid)
	w.walk(n.ChildByFieldName("body"), clsScope)
}

func (w *walker) walkComprehension(n sitter.Node, sid int) {
	compScope := w.enterScope(KindComprehension, sid)

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		if child.Type() == "for_in_clause" {
			w.bindTargets(child.ChildByFieldName("left"), compScope, RoleLocal)
			w.walk(child.ChildByFieldName("right"), compScope)

			continue
		}

		w.walk(child, compScope)
	}
}

// walkParameters declares parameter names in fnScope while annotations
// and default values resolve in the enclosing scope.
func (w *walker) walkParameters(params sitter.Node, fnScope, enclosing int) {
	if params.IsNull() {
		return
	}

	for idx := range params.NamedChildCount() {
		p := params.NamedChild(idx)

		switch p.Type() {
		case "identifier":
			w.bindIdentifier(p, fnScope, RoleParameter)
		case "typed_parameter":
			w.bindTargets(p.NamedChild(0), fnScope, RoleParameter)
			w.walk(p.ChildByFieldName("type"), enclosing)
		case "default_parameter":
			w.bindTargets(p.ChildByFieldName("name"), fnScope, RoleParameter)
			w.walk(p.ChildByFieldName("value"), enclosing)
		case "typed_default_parameter":
			w.bindTargets(p.ChildByFieldName("name"), fnScope, RoleParameter)
			w.walk(p.ChildByFieldName("type"), enclosing)
			w.walk(p.ChildByFieldName("value"), enclosing)
		case "list_splat_pattern", "dictionary_splat_pattern":
			w.bindTargets(p.NamedChild(0), fnScope, RoleParameter)
		}
	}
}

// bindTargets handles assignment-target positions: identifiers declare
// bindings, destructuring patterns recurse, and anything else is
// walked as an ordinary expression.
func (w *walker) bindTargets(n sitter.Node, sid int, role Role) {
	if n.IsNull() {
		return
	}

	switch n.Type() {
	case "identifier":
		w.bindIdentifier(n, sid, role)
	case "pattern_list", "tuple_pattern", "list_pattern", "expression_list":
		for idx := range n.NamedChildCount() {
			w.bindTargets(n.NamedChild(idx), sid, role)
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		w.bindTargets(n.NamedChild(0), sid, role)
	case "attribute":
		w.walkAttribute(n, sid, true)
	case "as_pattern_target":
		// Depending on grammar version the target either wraps an
		// identifier child or is itself the renamed identifier node.
		if n.NamedChildCount() > 0 {
			w.bindTargets(n.NamedChild(0), sid, role)
		} else {
			w.bindIdentifier(n, sid, role)
		}
	default:
		w.walk(n, sid)
	}
}

func (w *walker) bindIdentifier(n sitter.Node, sid int, role Role) {
	name := w.text(n)

	if w.phase == phaseDeclare {
		w.ensureBinding(name, role, sid, false)

		return
	}

	w.recordReference(n, sid)
}

// walkAttribute resolves the object expression normally and treats the
// attribute name as a class-level binding when the object is self.
func (w *walker) walkAttribute(n sitter.Node, sid int, isTarget bool) {
	object := n.ChildByFieldName("object")
	attr := n.ChildByFieldName("attribute")

	w.walk(object, sid)

	if attr.IsNull() || object.IsNull() || object.Type() != "identifier" || w.text(object) != "self" {
		return
	}

	clsScope := w.nearestClassScope(sid)
	if clsScope < 0 {
		return
	}

	name := w.text(attr)

	if w.phase == phaseDeclare {
		if isTarget {
			w.ensureBinding(name, RoleAttribute, clsScope, false)
		}

		return
	}

	// Methods and class attributes alike: a rename of the class-level
	// binding must reach every self.<name> site.
	if b := w.decls[clsScope][name]; b != nil {
		b.Occurrences = append(b.Occurrences, w.span(attr))
	}
}

func (w *walker) walkGlobal(n sitter.Node, sid int) {
	for idx := range n.NamedChildCount() {
		id := n.NamedChild(idx)
		if id.Type() != "identifier" {
			continue
		}

		if w.phase == phaseDeclare {
			name := w.text(id)
			w.redirect[sid][name] = moduleScopeID
			w.ensureBinding(name, RoleGlobal, moduleScopeID, false)

			continue
		}

		w.recordReference(id, sid)
	}
}

func (w *walker) walkNonlocal(n sitter.Node, sid int) {
	target := w.nearestFunctionScope(w.scopes[sid].ParentID)

	for idx := range n.NamedChildCount() {
		id := n.NamedChild(idx)
		if id.Type() != "identifier" || target < 0 {
			continue
		}

		if w.phase == phaseDeclare {
			name := w.text(id)
			w.redirect[sid][name] = target
			w.ensureBinding(name, RoleLocal, target, false)

			continue
		}

		w.recordReference(id, sid)
	}
}

// walkImport records the names an import statement binds and skips the
// rest of the subtree: imported names are collision material, never
// rename candidates.
func (w *walker) walkImport(n sitter.Node, sid int) {
	if w.phase != phaseDeclare {
		return
	}

	moduleName := n.ChildByFieldName("module_name")

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		// The module path of "from x import y" is not bound.
		if !moduleName.IsNull() && child.StartByte() == moduleName.StartByte() {
			continue
		}

		switch child.Type() {
		case "dotted_name":
			if first := child.NamedChild(0); !first.IsNull() {
				w.ensureBinding(w.text(first), RoleGlobal, sid, true)
			}
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); !alias.IsNull() {
				w.ensureBinding(w.text(alias), RoleGlobal, sid, true)
			}
		}
	}
}

func (w *walker) ensureBinding(name string, role Role, sid int, external bool) *Binding {
	if rid, ok := w.redirect[sid][name]; ok {
		sid = rid
	}

	if b, ok := w.decls[sid][name]; ok {
		return b
	}

	if role == RoleLocal && sid == moduleScopeID {
		role = RoleGlobal
	}

	b := &Binding{Name: name, Role: role, ScopeID: sid, External: external}
	w.decls[sid][name] = b
	w.bindings = append(w.bindings, b)

	return b
}

// recordReference appends an occurrence to the binding the identifier
// resolves to. Unresolved names reference the surrounding program and
// are left untouched.
func (w *walker) recordReference(n sitter.Node, sid int) {
	if w.phase != phaseResolve {
		return
	}

	name := w.text(n)

	b := w.resolve(name, sid)
	if b == nil {
		return
	}

	b.Occurrences = append(b.Occurrences, w.span(n))
}

// resolve walks the scope chain upward. A global or nonlocal redirect
// in the reading scope wins; class scopes are invisible to scopes
// nested inside them.
func (w *walker) resolve(name string, sid int) *Binding {
	if rid, ok := w.redirect[sid][name]; ok {
		return w.decls[rid][name]
	}

	first := true

	for cur := sid; cur >= 0; {
		sc := w.scopes[cur]

		if first || sc.Kind != KindClass {
			if b, ok := w.decls[cur][name]; ok {
				return b
			}
		}

		first = false
		cur = sc.ParentID
	}

	return nil
}

func (w *walker) nearestClassScope(sid int) int {
	for cur := sid; cur >= 0; cur = w.scopes[cur].ParentID {
		if w.scopes[cur].Kind == KindClass {
			return cur
		}
	}

	return noParent
}

func (w *walker) nearestFunctionScope(sid int) int {
	for cur := sid; cur >= 0; cur = w.scopes[cur].ParentID {
		if k := w.scopes[cur].Kind; k == KindFunction || k == KindLambda {
			return cur
		}
	}

	return noParent
}
