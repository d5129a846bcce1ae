package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const statementPages = 3

// writeStatementPDF renders a small statement: every page has a heading line and
// a ruled two column table whose cells name their page, e.g. "P2R1".
func writeStatementPDF(t *testing.T) string {
	t.Helper()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)

	for page := 1; page <= statementPages; page++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 10, fmt.Sprintf("Hello page %d", page))
		pdf.Ln(14)

		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(60, 8, "Date", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, "Amount", "1", 1, "L", false, 0, "")
		for row := 1; row <= 3; row++ {
			pdf.CellFormat(60, 8, fmt.Sprintf("P%dR%d", page, row), "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 8, fmt.Sprintf("%d.%02d", page, row), "1", 1, "L", false, 0, "")
		}
	}

	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func newRealService(t *testing.T) *ExtractionService {
	t.Helper()
	return NewExtractionService(NewPDFExtractor(), NewTableExtractor(), ServiceOptions{
		ScratchDir:       t.TempDir(),
		HeaderKeywords:   []string{"date", "amount"},
		MetadataKeywords: []string{"statement"},
	})
}

func flatten(grids []Grid) string {
	var sb strings.Builder
	for _, grid := range grids {
		for _, row := range grid {
			sb.WriteString(strings.Join(row, "|"))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func TestPDFExtractorReadsEveryPage(t *testing.T) {
	doc, err := NewPDFExtractor().Open(writeStatementPDF(t))
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, statementPages, doc.NumPages())
	for n := 1; n <= statementPages; n++ {
		text, err := doc.PageText(n)
		require.NoError(t, err)
		assert.Contains(t, text, "Hello", "page %d", n)
		assert.Contains(t, text, fmt.Sprintf("P%dR1", n), "page %d", n)
	}
}

func TestTableExtractorFindsRuledGrids(t *testing.T) {
	doc, err := NewTableExtractor().Open(writeStatementPDF(t))
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, statementPages, doc.NumPages())
	for n := 1; n <= statementPages; n++ {
		grids, err := doc.PageGrids(n)
		require.NoError(t, err)
		require.NotEmpty(t, grids, "page %d", n)
		assert.NotEmpty(t, grids[0], "page %d", n)

		cells := flatten(grids)
		assert.Contains(t, cells, fmt.Sprintf("P%dR1", n), "grids must come from page %d", n)
		for other := 1; other <= statementPages; other++ {
			if other != n {
				assert.NotContains(t, cells, fmt.Sprintf("P%dR1", other), "page %d", n)
			}
		}
	}
}

func TestExtractTextRoundTrip(t *testing.T) {
	content, err := os.ReadFile(writeStatementPDF(t))
	require.NoError(t, err)

	result, err := newRealService(t).Extract(context.Background(), ExtractRequest{
		FileName: "statement.pdf",
		Content:  content,
		Pages:    "all",
	})
	require.NoError(t, err)

	assert.Equal(t, "ledongthuc-pdf", result.EngineUsed)
	assert.Equal(t, statementPages, result.TotalPages)
	assert.Equal(t, result.TotalPages, result.PagesProcessed)
	assert.Equal(t, statementPages, strings.Count(result.Text, "=== Page "))

	last := -1
	for n := 1; n <= statementPages; n++ {
		idx := strings.Index(result.Text, fmt.Sprintf("=== Page %d ===\n", n))
		require.GreaterOrEqual(t, idx, 0, "page %d section", n)
		assert.Greater(t, idx, last, "page %d out of order", n)
		last = idx
	}
}

func TestExtractTableEngineRoundTrip(t *testing.T) {
	content, err := os.ReadFile(writeStatementPDF(t))
	require.NoError(t, err)
	svc := newRealService(t)

	result, err := svc.Extract(context.Background(), ExtractRequest{
		FileName: "statement.pdf",
		Content:  content,
		Pages:    "all",
		Engine:   "table",
	})
	require.NoError(t, err)

	assert.Equal(t, "tabula-geometric", result.EngineUsed)
	assert.Equal(t, statementPages, result.PagesProcessed)
	require.NotNil(t, result.TablesFound)
	assert.GreaterOrEqual(t, *result.TablesFound, statementPages)
	require.NotNil(t, result.Rows)
	assert.Positive(t, *result.Rows)
	for n := 1; n <= statementPages; n++ {
		assert.Contains(t, result.Text, fmt.Sprintf("P%dR3", n))
	}

	converted, err := svc.ConvertToExcel(context.Background(), ConvertRequest{
		FileName:        "statement.pdf",
		Content:         content,
		IncludeMetadata: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "statement.xlsx", converted.FileName)
	assert.Equal(t, statementPages, converted.PagesProcessed)

	raw, err := base64.StdEncoding.DecodeString(converted.ExcelBase64)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
}
