package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/namefang/pkg/term"
)

// Tool name constants.
const (
	ToolNameReview = "namefang_review"
	ToolNameLookup = "namefang_lookup"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrEmptyTerm indicates the term parameter is empty.
	ErrEmptyTerm = errors.New("term parameter is required and must not be empty")
)

// ReviewInput is the input schema for the namefang_review tool.
type ReviewInput struct {
	Code             string  `json:"code"                        jsonschema:"Python source fragment to review"`
	MinConfidence    float64 `json:"min_confidence,omitempty"    jsonschema:"drop suggestions below this confidence (0 to 1)"`
	TargetConvention string  `json:"target_convention,omitempty" jsonschema:"preserve, snake_case or camelCase"`
	FileID           string  `json:"file_id,omitempty"           jsonschema:"label for the fragment in statistics"`
}

// LookupInput is the input schema for the namefang_lookup tool.
type LookupInput struct {
	Term string `json:"term" jsonschema:"abbreviation or word to look up in the terminology dictionary"`
}

// LookupOutput is the structured result of a dictionary lookup.
type LookupOutput struct {
	Entry   *term.Entry  `json:"entry,omitempty"`
	Related []term.Entry `json:"related,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateCodeInput checks the shared constraints on inline code input.
func validateCodeInput(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}

// relatedEntries finds entries whose key, canonical form or tags
// contain the normalized query as a substring. The exact-key hit, if
// any, is excluded.
func relatedEntries(dict *term.Dictionary, query string) []term.Entry {
	if dict == nil {
		return nil
	}

	var out []term.Entry

	for _, entry := range dict.Entries() {
		if entry.Key == query {
			continue
		}

		if containsQuery(entry, query) {
			out = append(out, entry)
		}
	}

	return out
}

func containsQuery(entry term.Entry, query string) bool {
	if strings.Contains(entry.Key, query) || strings.Contains(term.Normalize(entry.Canonical), query) {
		return true
	}

	for _, tag := range entry.Tags {
		if strings.Contains(term.Normalize(tag), query) {
			return true
		}
	}

	return false
}
