package term

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// csvColumns is the expected minimum column count: key, canonical.
const csvColumns = 2

// tagSeparator separates tags inside the CSV tags column.
const tagSeparator = ";"

// ErrInvalidDictionary indicates a dictionary file failed schema validation.
var ErrInvalidDictionary = errors.New("invalid dictionary file")

// entriesSchema validates JSON dictionary files before loading.
const entriesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["key", "canonical"],
    "properties": {
      "key": {"type": "string", "minLength": 1},
      "canonical": {"type": "string", "minLength": 1},
      "category": {"type": "string"},
      "tags": {"type": "array", "items": {"type": "string"}}
    },
    "additionalProperties": false
  }
}`

// ReadCSV parses terminology entries from CSV rows of the form
// key,canonical[,category[,tags]] where tags are semicolon-separated.
// Blank lines and rows starting with "#" are skipped.
func ReadCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var entries []Entry

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if len(row) == 0 || strings.HasPrefix(row[0], "#") {
			continue
		}

		if len(row) < csvColumns || strings.TrimSpace(row[0]) == "" {
			continue
		}

		e := Entry{
			Key:       Normalize(row[0]),
			Canonical: strings.TrimSpace(row[1]),
		}

		if len(row) > 2 {
			e.Category = strings.TrimSpace(row[2])
		}

		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			for _, tag := range strings.Split(row[3], tagSeparator) {
				if t := strings.TrimSpace(tag); t != "" {
					e.Tags = append(e.Tags, t)
				}
			}
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// WriteCSV writes entries as CSV rows in key order.
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)

	for _, e := range entries {
		row := []string{e.Key, e.Canonical, e.Category, strings.Join(e.Tags, tagSeparator)}

		err := writer.Write(row)
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// WriteJSON writes entries as a JSON dictionary document that ReadJSON
// accepts.
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dictionary: %w", err)
	}

	_, err = w.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("write dictionary: %w", err)
	}

	return nil
}

// ReadJSON parses and schema-validates a JSON dictionary document.
func ReadJSON(data []byte) ([]Entry, error) {
	schemaLoader := gojsonschema.NewStringLoader(entriesSchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate dictionary: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidDictionary, strings.Join(details, "; "))
	}

	var entries []Entry

	err = json.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}

	return entries, nil
}

// LoadFile loads a dictionary file by extension (.csv or .json).
// An empty path returns the builtin entries.
func LoadFile(path string) ([]Entry, error) {
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if strings.HasSuffix(path, ".json") {
		return ReadJSON(data)
	}

	return ReadCSV(strings.NewReader(string(data)))
}
