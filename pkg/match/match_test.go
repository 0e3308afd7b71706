package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/namefang/pkg/convention"
	"github.com/Sumatoshi-tech/namefang/pkg/scope"
	"github.com/Sumatoshi-tech/namefang/pkg/term"
)

func scenarioDict() *term.Dictionary {
	return term.NewDictionary([]term.Entry{
		{Key: "usr", Canonical: "user"},
		{Key: "pwd", Canonical: "password"},
		{Key: "obj", Canonical: "object"},
	})
}

func TestMatchExactTokens(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict())

	s, ok := m.Match("usr_obj", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "user_object", s.SuggestedName)
	assert.True(t, s.Actionable())
	assert.InDelta(t, 1.0, s.Confidence, 1e-9)

	s, ok = m.Match("pwd", scope.RoleParameter)
	require.True(t, ok)
	assert.Equal(t, "password", s.SuggestedName)
	assert.InDelta(t, 1.0, s.Confidence, 1e-9)
}

func TestMatchMixedTokens(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict())

	s, ok := m.Match("process_usr_data", scope.RoleFunction)
	require.True(t, ok)
	assert.Equal(t, "process_user_data", s.SuggestedName)
	assert.True(t, s.Actionable())

	// usr carries 3 of 14 characters; the rest is unmatched.
	assert.InDelta(t, 3.0/14.0, s.Confidence, 1e-9)

	require.Len(t, s.Tokens, 3)
	assert.Equal(t, KindUnmatched, s.Tokens[0].Kind)
	assert.Equal(t, KindExact, s.Tokens[1].Kind)
	assert.Equal(t, KindUnmatched, s.Tokens[2].Kind)
}

func TestMatchCanonicalNameNotFlagged(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict())

	// "user" is the canonical form of "usr"; it must not fuzzy-match
	// back to its own abbreviation.
	s, ok := m.Match("get_user", scope.RoleFunction)
	require.True(t, ok)
	assert.Equal(t, "get_user", s.SuggestedName)
	assert.False(t, s.Actionable())
	assert.False(t, s.Flagged())
}

func TestMatchPartialViaEditDistance(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict())

	s, ok := m.Match("ussr", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "user", s.SuggestedName)
	assert.True(t, s.Actionable())
	assert.True(t, s.Flagged())
	require.Len(t, s.Tokens, 1)
	assert.Equal(t, KindPartial, s.Tokens[0].Kind)

	// Distance 1 over 4 runes: confidence scales to 0.75.
	assert.InDelta(t, 0.75, s.Confidence, 1e-9)
}

func TestMatchFuzzyDisabled(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict(), WithFuzzyThreshold(0))

	s, ok := m.Match("ussr", scope.RoleLocal)
	require.True(t, ok)
	assert.False(t, s.Actionable())
	require.Len(t, s.Tokens, 1)
	assert.Equal(t, KindUnmatched, s.Tokens[0].Kind)
}

func TestMatchTieBreakPrefersRoleCategory(t *testing.T) {
	t.Parallel()

	dict := term.NewDictionary([]term.Entry{
		{Key: "chk", Canonical: "check", Category: "action"},
		{Key: "chz", Canonical: "choice", Category: "entity"},
	})
	m := NewMatcher(dict, WithFuzzyThreshold(0.5))

	// "chs" is distance 1 from both keys. A function-role binding
	// prefers the action-category entry.
	s, ok := m.Match("chs", scope.RoleFunction)
	require.True(t, ok)
	assert.Equal(t, "check", s.SuggestedName)

	// Without a role preference the lexicographically first key wins.
	s, ok = m.Match("chs", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "check", s.SuggestedName)
}

func TestMatchTieBreakLexicographic(t *testing.T) {
	t.Parallel()

	dict := term.NewDictionary([]term.Entry{
		{Key: "zb", Canonical: "zebra"},
		{Key: "ab", Canonical: "able"},
	})
	m := NewMatcher(dict, WithFuzzyThreshold(0.5))

	s, ok := m.Match("bb", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "able", s.SuggestedName)
}

func TestMatchPreservesConvention(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict())

	s, ok := m.Match("usrObj", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "userObject", s.SuggestedName)

	s, ok = m.Match("UsrObj", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "UserObject", s.SuggestedName)

	s, ok = m.Match("USR_OBJ", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "USER_OBJECT", s.SuggestedName)
}

func TestMatchTargetConvention(t *testing.T) {
	t.Parallel()

	m := NewMatcher(scenarioDict(), WithTargetConvention(convention.Camel))

	s, ok := m.Match("usr_obj", scope.RoleLocal)
	require.True(t, ok)
	assert.Equal(t, "userObject", s.SuggestedName)
}

func TestMatchNilDictionaryDegrades(t *testing.T) {
	t.Parallel()

	m := NewMatcher(nil)

	s, ok := m.Match("usr_obj", scope.RoleLocal)
	require.True(t, ok)
	assert.False(t, s.Actionable())

	for _, tm := range s.Tokens {
		assert.Equal(t, KindUnmatched, tm.Kind)
	}
}

func TestMatchWholeNameOnly(t *testing.T) {
	t.Parallel()

	dict := term.NewDictionary([]term.Entry{
		{Key: "httpsrv", Canonical: "http_server"},
	})
	m := NewMatcher(dict)

	// Mixed-convention names resist decomposition; only a verbatim
	// dictionary entry can rename them.
	_, ok := m.Match("HTTPServer_x", scope.RoleLocal)
	assert.False(t, ok)
}
