package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF text extraction using ledongthuc/pdf (MIT license)
type PDFExtractor struct{}

// Compile-time interface assertion
var _ TextBackend = (*PDFExtractor)(nil)

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (p *PDFExtractor) Name() string {
	return "ledongthuc-pdf"
}

// Open opens the PDF at path. The returned document owns the file handle.
func (p *PDFExtractor) Open(path string) (TextDocument, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return &pdfDocument{file: file, reader: reader}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *pdfDocument) NumPages() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageText(n int) (string, error) {
	page := d.reader.Page(n)
	if page.V.IsNull() {
		log.Debugf("PDF Extractor: Page %d is null, treating as empty", n)
		return "", nil
	}

	// Try to extract text by row for better structure preservation
	rows, err := page.GetTextByRow()
	if err != nil {
		log.Debugf("PDF Extractor: Row extraction failed for page %d, trying plain text: %v", n, err)
		text, plainErr := page.GetPlainText(nil)
		if plainErr != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", n, plainErr)
		}
		return strings.TrimSpace(text), nil
	}

	return rowsToText(rows), nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

// rowsToText builds page text from rows - this preserves document structure better
func rowsToText(rows pdf.Rows) string {
	var textBuilder strings.Builder
	for _, row := range rows {
		var rowText strings.Builder
		for _, word := range row.Content {
			rowText.WriteString(word.S)
		}
		line := strings.TrimSpace(rowText.String())
		if line != "" {
			textBuilder.WriteString(line)
			textBuilder.WriteString("\n")
		}
	}
	return strings.TrimSpace(textBuilder.String())
}

// sanitizePDF fixes common PDF issues like trailing garbage data
// Many PDFs downloaded from web have HTML or other data appended after %%EOF
// This function truncates the content at the last valid %%EOF marker
func sanitizePDF(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	// Check if content starts with PDF header
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content // Not a PDF, return as-is
	}

	// Find the last occurrence of %%EOF (valid PDF end marker)
	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)

	if lastEOF == -1 {
		// No %%EOF found - PDF is likely truncated, return as-is and let parser handle it
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)

	// Allow for trailing newlines after %%EOF (valid per PDF spec)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	// If there's significant extra content after %%EOF, truncate it
	if pdfEnd < len(content) {
		extraBytes := len(content) - pdfEnd
		if extraBytes > 10 { // More than just whitespace
			log.Infof("PDF Sanitizer: Removing %d bytes of trailing garbage after %%EOF", extraBytes)
			return content[:pdfEnd]
		}
	}

	return content
}

// metadataLines returns the lines of text that precede the first line mentioning
// any header keyword. With no keywords, or no matching line, nothing is returned.
func metadataLines(text string, headerKeywords []string) []string {
	keywords := normalizeKeywords(headerKeywords)
	if len(keywords) == 0 {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if rowHasKeyword([]string{line}, keywords) {
			return lines
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return nil
}
