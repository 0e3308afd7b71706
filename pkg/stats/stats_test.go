package stats

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() TransformationRecord {
	return TransformationRecord{
		Timestamp:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		FileID:             "fragment.py",
		LinesCount:         12,
		SuggestionsApplied: 3,
		SuggestedName:      "user_id",
		AverageConfidence:  0.82,
	}
}

func TestRecordMarshalEmitsBothKeys(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleRecord())
	require.NoError(t, err)

	var raw map[string]any

	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "user_id", raw["suggested_name"])
	assert.Equal(t, "user_id", raw["suggestion"])
}

func TestRecordUnmarshalAcceptsLegacyKey(t *testing.T) {
	t.Parallel()

	legacy := `{"timestamp":"2025-06-01T12:00:00Z","file_identifier":"a.py","suggestion":"count"}`

	var rec TransformationRecord

	require.NoError(t, json.Unmarshal([]byte(legacy), &rec))
	assert.Equal(t, "count", rec.SuggestedName)

	// The canonical key wins when both are present.
	both := `{"suggested_name":"user","suggestion":"usr"}`

	require.NoError(t, json.Unmarshal([]byte(both), &rec))
	assert.Equal(t, "user", rec.SuggestedName)
}

func TestStoreRecordAndLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "stats.jsonl"))

	require.NoError(t, store.Record(sampleRecord()))
	require.NoError(t, store.Record(sampleRecord()))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fragment.py", records[0].FileID)
	assert.InDelta(t, 0.82, records[1].AverageConfidence, 1e-9)
}

func TestStoreLoadMissingFile(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "absent.jsonl"))

	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "stats.jsonl"))

	require.NoError(t, store.Record(sampleRecord()))

	archivePath := filepath.Join(dir, "stats.jsonl.lz4")
	require.NoError(t, store.Archive(archivePath))

	// Live log is empty after archival.
	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	archived, err := LoadArchive(archivePath)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "user_id", archived[0].SuggestedName)
}

func TestStoreArchiveEmptyLog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "stats.jsonl")
	require.NoError(t, os.WriteFile(logPath, nil, 0o644))

	store := NewStore(logPath)

	archivePath := filepath.Join(dir, "stats.jsonl.lz4")
	require.NoError(t, store.Archive(archivePath))

	// Nothing to archive means no archive file.
	_, err := os.Stat(archivePath)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadArchiveRejectsCorruptHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// A header claiming an absurd uncompressed size must not be
	// trusted for allocation.
	corrupt := make([]byte, archiveHeaderSize+4)
	binary.LittleEndian.PutUint64(corrupt, 1<<40)

	path := filepath.Join(dir, "corrupt.lz4")
	require.NoError(t, os.WriteFile(path, corrupt, 0o644))

	_, err := LoadArchive(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "implausible")

	// Shorter than the header is rejected outright.
	short := filepath.Join(dir, "short.lz4")
	require.NoError(t, os.WriteFile(short, []byte{0x01, 0x02}, 0o644))

	_, err = LoadArchive(short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	records := []TransformationRecord{
		{LinesCount: 10, SuggestionsApplied: 2, AverageConfidence: 0.8},
		{LinesCount: 20, SuggestionsApplied: 4, AverageConfidence: 0.6},
	}

	s := Summarize(records)
	assert.Equal(t, 2, s.Reviews)
	assert.Equal(t, 30, s.TotalLines)
	assert.Equal(t, 6, s.TotalApplied)
	assert.InDelta(t, 0.7, s.AverageConfidence, 1e-9)
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	RenderTable(&buf, []TransformationRecord{sampleRecord()})

	out := buf.String()
	assert.Contains(t, out, "fragment.py")
	assert.Contains(t, out, "0.82")
	assert.Contains(t, out, "1 reviews")
}

func TestRenderPlot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, RenderPlot(&buf, []TransformationRecord{sampleRecord()}))
	assert.True(t, strings.Contains(buf.String(), "echarts"))
}
