package dto

// ExtractionMethod records how a document's text was obtained.
type ExtractionMethod string

const (
	MethodPDFText ExtractionMethod = "pdf-text"
	MethodOCR     ExtractionMethod = "pdf-ocr"
	MethodCache   ExtractionMethod = "cache"
)

// DocumentText is the extracted text of one document.
type DocumentText struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DocumentFailure records a document excluded from the search.
type DocumentFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ExtractedDocument is the outcome of extracting one PDF.
type ExtractedDocument struct {
	Path    string
	Text    string
	Method  ExtractionMethod
	Pages   int
	Quality float64
}
