package services

import "strings"

// Engine selects which extraction backend serves a request
type Engine string

const (
	EngineText  Engine = "text"
	EngineTable Engine = "table"
)

// ParseEngine maps a form value onto an Engine; empty means text
func ParseEngine(value string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(EngineText):
		return EngineText, nil
	case string(EngineTable):
		return EngineTable, nil
	default:
		return "", &UnsupportedEngineError{Value: value}
	}
}

// TextDocument is an open document handle able to return plain text per page
type TextDocument interface {
	NumPages() int
	// PageText returns the text of 1-based page n, or "" when the page has none
	PageText(n int) (string, error)
	Close() error
}

// TextBackend opens documents for text extraction
type TextBackend interface {
	Name() string
	Open(path string) (TextDocument, error)
}

// TableDocument is an open document handle able to detect tables per page
type TableDocument interface {
	NumPages() int
	// PageGrids returns zero or more cell grids found on 1-based page n
	PageGrids(n int) ([]Grid, error)
	Close() error
}

// TableBackend opens documents for table extraction
type TableBackend interface {
	Name() string
	Open(path string) (TableDocument, error)
}
