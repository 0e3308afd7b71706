package stats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pierrec/lz4/v4"
)

const (
	logFileMode = 0o644

	// archiveHeaderSize prefixes each archive with the uncompressed
	// length so decompression can preallocate.
	archiveHeaderSize = 8

	// maxExpansionRatio bounds how much larger than the compressed
	// block the header may claim the payload is. LZ4 blocks never
	// expand past 255x.
	maxExpansionRatio = 255
)

// Store appends TransformationRecords to a JSONL file. Writes are
// serialized; reads see the file as of the call.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given JSONL file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Record appends one record to the log.
func (s *Store) Record(rec TransformationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return fmt.Errorf("open stats log: %w", err)
	}
	defer f.Close()

	_, err = f.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	return nil
}

// Load reads every record currently in the log. A missing file is an
// empty log.
func (s *Store) Load() ([]TransformationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open stats log: %w", err)
	}
	defer f.Close()

	var records []TransformationRecord

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec TransformationRecord

		if err := json.Unmarshal(line, &rec); err != nil {
			// Tolerate a torn trailing line from an interrupted write.
			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stats log: %w", err)
	}

	return records, nil
}

// Archive compresses the current log with LZ4 into path and truncates
// the live log. The archive is a little-endian uncompressed-length
// header followed by one LZ4 block.
func (s *Store) Archive(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read stats log: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	compressed := make([]byte, archiveHeaderSize+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint64(compressed, uint64(len(data)))

	written, err := lz4.CompressBlock(data, compressed[archiveHeaderSize:], nil)
	if err != nil {
		return fmt.Errorf("compress stats log: %w", err)
	}

	// A zero write means the block was incompressible; truncating the
	// live log then would lose it.
	if written == 0 {
		return fmt.Errorf("compress stats log: incompressible %d-byte block", len(data))
	}

	if err := os.WriteFile(path, compressed[:archiveHeaderSize+written], logFileMode); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if err := os.Truncate(s.path, 0); err != nil {
		return fmt.Errorf("truncate stats log: %w", err)
	}

	return nil
}

// LoadArchive reads records back from an LZ4 archive produced by
// Archive.
func LoadArchive(path string) ([]TransformationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	if len(data) < archiveHeaderSize {
		return nil, fmt.Errorf("archive %s: truncated header", path)
	}

	size := binary.LittleEndian.Uint64(data)
	if size > uint64(len(data)-archiveHeaderSize)*maxExpansionRatio {
		return nil, fmt.Errorf("archive %s: implausible uncompressed size %d", path, size)
	}

	raw := make([]byte, size)

	if _, err := lz4.UncompressBlock(data[archiveHeaderSize:], raw); err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}

	var records []TransformationRecord

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec TransformationRecord

		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode archived record: %w", err)
		}

		records = append(records, rec)
	}

	return records, scanner.Err()
}
