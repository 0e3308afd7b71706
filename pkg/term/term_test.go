package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryLookup(t *testing.T) {
	t.Parallel()

	dict := NewDictionary([]Entry{
		{Key: "Usr", Canonical: "user"},
		{Key: "pwd", Canonical: "password", Category: "auth"},
	})

	e, ok := dict.Lookup("usr")
	require.True(t, ok)
	assert.Equal(t, "user", e.Canonical)

	e, ok = dict.Lookup("PWD")
	require.True(t, ok)
	assert.Equal(t, "auth", e.Category)

	_, ok = dict.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"pwd", "usr"}, dict.Keys())
}

func TestStoreCopyOnWriteSnapshot(t *testing.T) {
	t.Parallel()

	store := NewStore([]Entry{{Key: "usr", Canonical: "user"}})

	snap, err := store.Snapshot()
	require.NoError(t, err)

	require.NoError(t, store.Add(Entry{Key: "pwd", Canonical: "password"}))

	// The old snapshot must not see the new entry.
	_, ok := snap.Lookup("pwd")
	assert.False(t, ok)

	fresh, err := store.Snapshot()
	require.NoError(t, err)

	_, ok = fresh.Lookup("pwd")
	assert.True(t, ok)
}

func TestStoreMutations(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)

	require.NoError(t, store.Add(Entry{Key: "obj", Canonical: "object"}))
	require.ErrorIs(t, store.Add(Entry{Key: "obj", Canonical: "object"}), ErrDuplicate)

	require.NoError(t, store.Update(Entry{Key: "obj", Canonical: "entity"}))
	e, ok := store.Lookup("obj")
	require.True(t, ok)
	assert.Equal(t, "entity", e.Canonical)

	require.ErrorIs(t, store.Update(Entry{Key: "nope", Canonical: "x"}), ErrNotFound)

	require.NoError(t, store.Delete("obj"))
	require.ErrorIs(t, store.Delete("obj"), ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestStoreSearch(t *testing.T) {
	t.Parallel()

	store := NewStore([]Entry{
		{Key: "usr", Canonical: "user", Tags: []string{"account"}},
		{Key: "pwd", Canonical: "password"},
		{Key: "acct", Canonical: "account"},
	})

	got := store.Search("account")
	require.Len(t, got, 2)
	assert.Equal(t, "acct", got[0].Key)
	assert.Equal(t, "usr", got[1].Key)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# comment line",
		"usr,user,entity,account;login",
		"pwd,password,auth",
		"cnt,count",
		"",
	}, "\n")

	entries, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Key: "usr", Canonical: "user", Category: "entity", Tags: []string{"account", "login"}}, entries[0])
	assert.Equal(t, "auth", entries[1].Category)
	assert.Empty(t, entries[2].Category)
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	entries := Builtin()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, back)
}

func TestReadJSONValidates(t *testing.T) {
	t.Parallel()

	good := `[{"key": "usr", "canonical": "user", "category": "entity"}]`

	entries, err := ReadJSON([]byte(good))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user", entries[0].Canonical)

	bad := `[{"key": "usr"}]`

	_, err = ReadJSON([]byte(bad))
	require.ErrorIs(t, err, ErrInvalidDictionary)
}

func TestWriteJSONIsSchemaValid(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Key: "usr", Canonical: "user", Category: "entity", Tags: []string{"auth"}},
		{Key: "pwd", Canonical: "password"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, entries))

	back, err := ReadJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, entries, back)

	// An empty dictionary still writes a valid document.
	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))

	back, err = ReadJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, back)
}
