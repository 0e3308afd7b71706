// Package stats collects one TransformationRecord per completed
// review and renders aggregate views over the accumulated log.
package stats

import (
	"encoding/json"
	"time"
)

// TransformationRecord summarizes one review for the statistics log.
// SuggestedName is the canonical field; the wire format also carries
// the legacy "suggestion" key so older consumers keep working.
type TransformationRecord struct {
	Timestamp          time.Time
	FileID             string
	LinesCount         int
	SuggestionsApplied int
	SuggestedName      string
	AverageConfidence  float64
}

// wireRecord is the dual-key JSON shape. Writers populate both name
// spellings; readers accept either, preferring suggested_name.
type wireRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	FileID             string    `json:"file_identifier"`
	LinesCount         int       `json:"lines_count"`
	SuggestionsApplied int       `json:"suggestions_applied"`
	SuggestedName      string    `json:"suggested_name,omitempty"`
	LegacySuggestion   string    `json:"suggestion,omitempty"`
	AverageConfidence  float64   `json:"average_confidence"`
}

// MarshalJSON emits both key spellings for the suggested name.
func (r TransformationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		Timestamp:          r.Timestamp,
		FileID:             r.FileID,
		LinesCount:         r.LinesCount,
		SuggestionsApplied: r.SuggestionsApplied,
		SuggestedName:      r.SuggestedName,
		LegacySuggestion:   r.SuggestedName,
		AverageConfidence:  r.AverageConfidence,
	})
}

// UnmarshalJSON accepts either key spelling, preferring the canonical
// suggested_name.
func (r *TransformationRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord

	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}

	name := w.SuggestedName
	if name == "" {
		name = w.LegacySuggestion
	}

	*r = TransformationRecord{
		Timestamp:          w.Timestamp,
		FileID:             w.FileID,
		LinesCount:         w.LinesCount,
		SuggestionsApplied: w.SuggestionsApplied,
		SuggestedName:      name,
		AverageConfidence:  w.AverageConfidence,
	}

	return nil
}

// Recorder is the sink interface the review engine emits to.
type Recorder interface {
	Record(rec TransformationRecord) error
}
