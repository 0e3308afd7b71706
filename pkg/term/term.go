// Package term provides the terminology dictionary: a mapping from
// normalized word tokens to their canonical replacements, with
// category and tag metadata. Reviews consume immutable snapshots so
// concurrent reviews never observe a half-applied dictionary update.
package term

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnavailable indicates the dictionary provider could not produce a
// snapshot. Callers degrade to treating every token as unmatched
// instead of failing the review.
var ErrUnavailable = errors.New("terminology dictionary unavailable")

// Entry is one terminology dictionary record. Key is the normalized
// lowercase word the entry is looked up by; Canonical is the approved
// replacement token.
type Entry struct {
	Key       string   `json:"key"`
	Canonical string   `json:"canonical"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Normalize lowercases and trims a raw token into dictionary key form.
func Normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// Provider exposes read access to the terminology dictionary. The
// engine never mutates a provider.
type Provider interface {
	// Lookup returns the entry for a normalized token.
	Lookup(token string) (Entry, bool)
	// Snapshot returns an immutable dictionary view valid for the full
	// duration of one review.
	Snapshot() (*Dictionary, error)
}

// Dictionary is an immutable snapshot of terminology entries. It is
// safe for concurrent use without locking.
type Dictionary struct {
	entries map[string]Entry
	keys    []string
}

// NewDictionary builds a snapshot from entries. Later duplicates of a
// key overwrite earlier ones. Keys are normalized.
func NewDictionary(entries []Entry) *Dictionary {
	byKey := make(map[string]Entry, len(entries))

	for _, e := range entries {
		e.Key = Normalize(e.Key)
		if e.Key == "" {
			continue
		}

		byKey[e.Key] = e
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return &Dictionary{entries: byKey, keys: keys}
}

// Lookup returns the entry for a normalized token.
func (d *Dictionary) Lookup(token string) (Entry, bool) {
	e, ok := d.entries[Normalize(token)]

	return e, ok
}

// Snapshot implements Provider; a Dictionary is already a snapshot.
func (d *Dictionary) Snapshot() (*Dictionary, error) {
	return d, nil
}

// Keys returns the sorted entry keys. The returned slice is shared and
// must not be mutated.
func (d *Dictionary) Keys() []string {
	return d.keys
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns all entries in key order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.entries[k])
	}

	return out
}

// Builtin returns the default terminology entries shipped with the
// tool. They cover the abbreviations the original dictionary curated.
func Builtin() []Entry {
	return []Entry{
		{Key: "amt", Canonical: "amount", Category: "quantity"},
		{Key: "arg", Canonical: "argument", Category: "entity"},
		{Key: "btn", Canonical: "button", Category: "entity"},
		{Key: "cfg", Canonical: "config", Category: "entity"},
		{Key: "cnt", Canonical: "count", Category: "quantity"},
		{Key: "db", Canonical: "database", Category: "entity"},
		{Key: "dest", Canonical: "destination", Category: "entity"},
		{Key: "dir", Canonical: "directory", Category: "entity"},
		{Key: "err", Canonical: "error", Category: "entity"},
		{Key: "idx", Canonical: "index", Category: "quantity"},
		{Key: "img", Canonical: "image", Category: "entity"},
		{Key: "lst", Canonical: "list", Category: "entity"},
		{Key: "msg", Canonical: "message", Category: "entity"},
		{Key: "num", Canonical: "number", Category: "quantity"},
		{Key: "obj", Canonical: "object", Category: "entity"},
		{Key: "param", Canonical: "parameter", Category: "entity"},
		{Key: "pwd", Canonical: "password", Category: "auth"},
		{Key: "req", Canonical: "request", Category: "entity"},
		{Key: "res", Canonical: "result", Category: "entity"},
		{Key: "resp", Canonical: "response", Category: "entity"},
		{Key: "src", Canonical: "source", Category: "entity"},
		{Key: "tkn", Canonical: "token", Category: "auth"},
		{Key: "tmp", Canonical: "temporary", Category: "entity"},
		{Key: "usr", Canonical: "user", Category: "entity"},
		{Key: "val", Canonical: "value", Category: "entity"},
	}
}
