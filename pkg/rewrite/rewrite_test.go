package rewrite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/namefang/pkg/match"
	"github.com/Sumatoshi-tech/namefang/pkg/scope"
)

func extract(t *testing.T, src string) *scope.Extraction {
	t.Helper()

	ext, err := scope.NewExtractor().Extract(context.Background(), []byte(src))
	require.NoError(t, err)

	return ext
}

func binding(t *testing.T, ext *scope.Extraction, name string, kind scope.Kind) *scope.Binding {
	t.Helper()

	for _, b := range ext.Bindings {
		if b.Name == name && ext.Scopes[b.ScopeID].Kind == kind {
			return b
		}
	}

	t.Fatalf("binding %s not found", name)

	return nil
}

func suggestion(b *scope.Binding, to string) *match.Suggestion {
	return &match.Suggestion{
		Binding:       b,
		OriginalName:  b.Name,
		SuggestedName: to,
		Confidence:    1,
	}
}

func TestApplyRewritesAllOccurrences(t *testing.T) {
	t.Parallel()

	src := "usr = load()\nsave(usr)\nother = usr\n"
	ext := extract(t, src)

	usr := binding(t, ext, "usr", scope.KindModule)
	res := Apply([]byte(src), ext, []*match.Suggestion{suggestion(usr, "user")})

	require.Empty(t, res.Errors)
	assert.Equal(t, "user = load()\nsave(user)\nother = user\n", string(res.Output))
}

func TestApplyLeavesUnrelatedTextIntact(t *testing.T) {
	t.Parallel()

	src := "# usr stays in comments\nusr = 1\nmsg = \"usr\"\n"
	ext := extract(t, src)

	usr := binding(t, ext, "usr", scope.KindModule)
	res := Apply([]byte(src), ext, []*match.Suggestion{suggestion(usr, "user")})

	require.Empty(t, res.Errors)
	assert.Equal(t, "# usr stays in comments\nuser = 1\nmsg = \"usr\"\n", string(res.Output))
}

func TestApplyShadowingIsolation(t *testing.T) {
	t.Parallel()

	src := "def outer():\n" +
		"    res = 1\n" +
		"    def inner():\n" +
		"        res = 2\n" +
		"        return res\n" +
		"    return res\n"

	ext := extract(t, src)

	// The innermost res binding lives in the deepest (last-created) scope.
	var inner *scope.Binding

	for _, b := range ext.Bindings {
		if b.Name == "res" && (inner == nil || b.ScopeID > inner.ScopeID) {
			inner = b
		}
	}

	require.NotNil(t, inner)

	res := Apply([]byte(src), ext, []*match.Suggestion{suggestion(inner, "result")})
	require.Empty(t, res.Errors)

	want := "def outer():\n" +
		"    res = 1\n" +
		"    def inner():\n" +
		"        result = 2\n" +
		"        return result\n" +
		"    return res\n"
	assert.Equal(t, want, string(res.Output))
}

func TestApplyCollisionWithExistingBinding(t *testing.T) {
	t.Parallel()

	src := "usr = 1\nuser = 2\n"
	ext := extract(t, src)

	usr := binding(t, ext, "usr", scope.KindModule)
	sug := suggestion(usr, "user")
	res := Apply([]byte(src), ext, []*match.Suggestion{sug})

	require.Len(t, res.Errors, 1)

	var collErr *CollisionError

	require.ErrorAs(t, res.Errors[0], &collErr)
	assert.Equal(t, "usr", collErr.Original)
	assert.NotEmpty(t, sug.FailureReason)

	// Occurrences stay untouched on conflict.
	assert.Equal(t, src, string(res.Output))
}

func TestApplyConvergingRenamesCollide(t *testing.T) {
	t.Parallel()

	src := "usr = 1\nusr2 = 2\n"
	ext := extract(t, src)

	a := binding(t, ext, "usr", scope.KindModule)
	b := binding(t, ext, "usr2", scope.KindModule)

	res := Apply([]byte(src), ext, []*match.Suggestion{
		suggestion(a, "user"),
		suggestion(b, "user"),
	})

	// Exactly one collision; at most one of the two is rewritten.
	require.Len(t, res.Errors, 1)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "user = 1\nusr2 = 2\n", string(res.Output))
}

func TestApplyShadowPairSameRenameAllowed(t *testing.T) {
	t.Parallel()

	src := "def outer():\n" +
		"    res = 1\n" +
		"    def inner():\n" +
		"        res = 2\n" +
		"        return res\n" +
		"    return res\n"

	ext := extract(t, src)

	var pair []*match.Suggestion

	for _, b := range ext.Bindings {
		if b.Name == "res" {
			pair = append(pair, suggestion(b, "result"))
		}
	}

	require.Len(t, pair, 2)

	res := Apply([]byte(src), ext, pair)
	require.Empty(t, res.Errors)
	assert.NotContains(t, string(res.Output), "res =")
	assert.Contains(t, string(res.Output), "result = 1")
	assert.Contains(t, string(res.Output), "result = 2")
}

func TestApplyLongerAndShorterReplacements(t *testing.T) {
	t.Parallel()

	src := "tmp = amount + tmp\n"
	ext := extract(t, src)

	tmp := binding(t, ext, "tmp", scope.KindModule)
	res := Apply([]byte(src), ext, []*match.Suggestion{suggestion(tmp, "temporary_value")})

	require.Empty(t, res.Errors)
	assert.Equal(t, "temporary_value = amount + temporary_value\n", string(res.Output))
}
