package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, src string) *Extraction {
	t.Helper()

	ext, err := NewExtractor().Extract(context.Background(), []byte(src))
	require.NoError(t, err)

	return ext
}

func findBinding(e *Extraction, name string, kind Kind) *Binding {
	for _, b := range e.Bindings {
		if b.Name == name && e.Scopes[b.ScopeID].Kind == kind {
			return b
		}
	}

	return nil
}

func TestExtractFunctionAndLocals(t *testing.T) {
	t.Parallel()

	src := "def process_usr_data(usr_id, pwd):\n" +
		"    usr_obj = get_user(usr_id)\n" +
		"    return usr_obj\n"

	ext := extract(t, src)

	fn := findBinding(ext, "process_usr_data", KindModule)
	require.NotNil(t, fn)
	assert.Equal(t, RoleFunction, fn.Role)
	assert.Len(t, fn.Occurrences, 1)

	usrID := findBinding(ext, "usr_id", KindFunction)
	require.NotNil(t, usrID)
	assert.Equal(t, RoleParameter, usrID.Role)
	assert.Len(t, usrID.Occurrences, 2)

	pwd := findBinding(ext, "pwd", KindFunction)
	require.NotNil(t, pwd)
	assert.Len(t, pwd.Occurrences, 1)

	usrObj := findBinding(ext, "usr_obj", KindFunction)
	require.NotNil(t, usrObj)
	assert.Equal(t, RoleLocal, usrObj.Role)
	assert.Len(t, usrObj.Occurrences, 2)

	// get_user is never declared in the fragment, so it stays a free
	// reference without a binding.
	assert.Nil(t, findBinding(ext, "get_user", KindModule))
}

func TestExtractOccurrenceSpansMatchSource(t *testing.T) {
	t.Parallel()

	src := "usr = 1\nval = usr\n"
	ext := extract(t, src)

	usr := findBinding(ext, "usr", KindModule)
	require.NotNil(t, usr)
	require.Len(t, usr.Occurrences, 2)

	for _, occ := range usr.Occurrences {
		assert.Equal(t, "usr", src[occ.StartByte:occ.EndByte])
	}

	assert.Equal(t, RoleGlobal, usr.Role)
}

func TestExtractShadowing(t *testing.T) {
	t.Parallel()

	src := "res = 1\n" +
		"def f():\n" +
		"    res = 2\n" +
		"    return res\n"

	ext := extract(t, src)

	outer := findBinding(ext, "res", KindModule)
	require.NotNil(t, outer)
	assert.Len(t, outer.Occurrences, 1)

	inner := findBinding(ext, "res", KindFunction)
	require.NotNil(t, inner)
	assert.Len(t, inner.Occurrences, 2)
	assert.NotEqual(t, outer.ScopeID, inner.ScopeID)
}

func TestExtractGlobalStatement(t *testing.T) {
	t.Parallel()

	src := "cnt = 0\n" +
		"def bump():\n" +
		"    global cnt\n" +
		"    cnt = cnt + 1\n"

	ext := extract(t, src)

	cnt := findBinding(ext, "cnt", KindModule)
	require.NotNil(t, cnt)
	assert.Equal(t, RoleGlobal, cnt.Role)
	assert.Len(t, cnt.Occurrences, 4)

	assert.Nil(t, findBinding(ext, "cnt", KindFunction))
}

func TestExtractClassScopeInvisibleToMethods(t *testing.T) {
	t.Parallel()

	src := "class Usr:\n" +
		"    limit = 10\n" +
		"    def bump(self, amt):\n" +
		"        return limit\n"

	ext := extract(t, src)

	limit := findBinding(ext, "limit", KindClass)
	require.NotNil(t, limit)

	// The read inside bump must not resolve to the class attribute.
	assert.Len(t, limit.Occurrences, 1)
}

func TestExtractSelfAttributes(t *testing.T) {
	t.Parallel()

	src := "class Acct:\n" +
		"    def add(self, amt):\n" +
		"        self.total = self.total + amt\n"

	ext := extract(t, src)

	total := findBinding(ext, "total", KindClass)
	require.NotNil(t, total)
	assert.Equal(t, RoleAttribute, total.Role)
	assert.Len(t, total.Occurrences, 2)

	self := findBinding(ext, "self", KindFunction)
	require.NotNil(t, self)
	assert.False(t, self.Renameable())
}

func TestExtractBuiltinShadowNotRenameable(t *testing.T) {
	t.Parallel()

	src := "list = [1]\n" +
		"print(list)\n"

	ext := extract(t, src)

	// Assigning a builtin name records the binding with its uses.
	lst := findBinding(ext, "list", KindModule)
	require.NotNil(t, lst)
	assert.Len(t, lst.Occurrences, 2)

	// It still must not be offered for renaming.
	assert.False(t, lst.Renameable())

	// A builtin that is only referenced produces no binding.
	assert.Nil(t, findBinding(ext, "print", KindModule))
}

func TestExtractImportsAreExternal(t *testing.T) {
	t.Parallel()

	src := "import os\n" +
		"from json import dumps as dump_json\n" +
		"res = dump_json(os.environ)\n"

	ext := extract(t, src)

	osb := findBinding(ext, "os", KindModule)
	require.NotNil(t, osb)
	assert.True(t, osb.External)
	assert.False(t, osb.Renameable())
	assert.Len(t, osb.Occurrences, 1)

	dj := findBinding(ext, "dump_json", KindModule)
	require.NotNil(t, dj)
	assert.True(t, dj.External)

	// "dumps" and "json" are part of the import clause, not bindings.
	assert.Nil(t, findBinding(ext, "dumps", KindModule))
	assert.Nil(t, findBinding(ext, "json", KindModule))
}

func TestExtractComprehensionScope(t *testing.T) {
	t.Parallel()

	src := "items = [1, 2]\n" +
		"vals = [v * v for v in items]\n"

	ext := extract(t, src)

	v := findBinding(ext, "v", KindComprehension)
	require.NotNil(t, v)
	assert.Len(t, v.Occurrences, 3)

	items := findBinding(ext, "items", KindModule)
	require.NotNil(t, items)
	assert.Len(t, items.Occurrences, 2)
}

func TestExtractLambdaParameters(t *testing.T) {
	t.Parallel()

	src := "inc = lambda n: n + 1\n"
	ext := extract(t, src)

	n := findBinding(ext, "n", KindLambda)
	require.NotNil(t, n)
	assert.Equal(t, RoleParameter, n.Role)
	assert.Len(t, n.Occurrences, 2)
}

func TestExtractSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := NewExtractor().Extract(context.Background(), []byte("def f(:\n"))
	require.ErrorIs(t, err, ErrParse)
}

func TestResolveWalksEnclosingScopes(t *testing.T) {
	t.Parallel()

	src := "top = 1\n" +
		"def f():\n" +
		"    return top\n"

	ext := extract(t, src)

	top := findBinding(ext, "top", KindModule)
	require.NotNil(t, top)
	require.Len(t, top.Occurrences, 2)

	var fnScope *Scope

	for _, sc := range ext.Scopes {
		if sc.Kind == KindFunction {
			fnScope = sc
		}
	}

	require.NotNil(t, fnScope)
	assert.Same(t, top, ext.Resolve("top", fnScope.ID))
}

func TestVisibleBindingsCoversNestedScopes(t *testing.T) {
	t.Parallel()

	src := "a = 1\n" +
		"def f():\n" +
		"    b = 2\n" +
		"    def g():\n" +
		"        c = 3\n"

	ext := extract(t, src)

	names := map[string]bool{}
	for _, b := range ext.VisibleBindings(moduleScopeID) {
		names[b.Name] = true
	}

	for _, want := range []string{"a", "b", "c", "f", "g"} {
		assert.True(t, names[want], "missing %s", want)
	}
}
