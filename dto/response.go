package dto

import "errors"

// Input errors abort a run before any output is written.
var (
	ErrMissingColumn       = errors.New("required column not found in workbook")
	ErrNoDocuments         = errors.New("no PDF documents found")
	ErrUnsupportedWorkbook = errors.New("unsupported workbook format")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// Per-document errors. They only abort a run in strict mode.
var (
	ErrExtractionFailed = errors.New("document text extraction failed")
	ErrNoText           = errors.New("no text could be extracted")
)

// IsInputError reports whether err is a caller mistake rather than a
// processing failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrNoDocuments) ||
		errors.Is(err, ErrUnsupportedWorkbook) ||
		errors.Is(err, ErrInvalidConfig)
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// LookupResult summarises one workbook run.
type LookupResult struct {
	RunID          string            `json:"run_id"`
	OutputPath     string            `json:"output_path"`
	DocumentCount  int               `json:"document_count"`
	NameCount      int               `json:"name_count"`
	Matched        map[string]string `json:"matched"`
	Unmatched      []string          `json:"unmatched"`
	FailedDocument []DocumentFailure `json:"failed_documents,omitempty"`
	ProcessedAt    string            `json:"processed_at"`
}

// ResolveResponse is returned by the text-only resolve endpoint.
type ResolveResponse struct {
	Results   map[string]string `json:"results"`
	Unmatched []string          `json:"unmatched"`
}
