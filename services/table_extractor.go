package services

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// TableExtractor detects tables with tabula's geometric detector. Ruling lines
// drawn in the page content stream are fed to the detector when available.
type TableExtractor struct {
	detector *tables.GeometricDetector
}

var _ TableBackend = (*TableExtractor)(nil)

// NewTableExtractor creates a table backend with the default detector config
func NewTableExtractor() *TableExtractor {
	return &TableExtractor{detector: tables.NewGeometricDetector()}
}

func (e *TableExtractor) Name() string {
	return "tabula-geometric"
}

func (e *TableExtractor) Open(path string) (TableDocument, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for table extraction: %w", err)
	}

	count, err := r.PageCount()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to read page tree: %w", err)
	}

	return &tableDocument{reader: r, pageCount: count, detector: e.detector}, nil
}

type tableDocument struct {
	reader    *reader.Reader
	pageCount int
	detector  *tables.GeometricDetector
}

func (d *tableDocument) NumPages() int {
	return d.pageCount
}

func (d *tableDocument) PageGrids(n int) ([]Grid, error) {
	page, err := d.reader.GetPage(n - 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %d: %w", n, err)
	}

	fragments, err := d.reader.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text fragments from page %d: %w", n, err)
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	width, _ := page.Width()
	height, _ := page.Height()

	modelPage := model.NewPage(width, height)
	modelPage.Number = n
	modelPage.RawText = toModelFragments(fragments)
	modelPage.RawLines = rulingLines(page, n)

	detected, err := d.detector.Detect(modelPage)
	if err != nil {
		return nil, fmt.Errorf("table detection failed on page %d: %w", n, err)
	}

	grids := make([]Grid, 0, len(detected))
	for _, table := range detected {
		if grid := tableToGrid(table); len(grid) > 0 {
			grids = append(grids, grid)
		}
	}
	return grids, nil
}

func (d *tableDocument) Close() error {
	return d.reader.Close()
}

func toModelFragments(fragments []text.TextFragment) []model.TextFragment {
	result := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		result[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return result
}

// rulingLines returns the stroked lines of the page. A page whose graphics cannot
// be parsed is still searched for tables, only without line hints.
func rulingLines(page *pages.Page, n int) []model.Line {
	contents, err := page.Contents()
	if err != nil || len(contents) == 0 {
		return nil
	}

	var data []byte
	for _, obj := range contents {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			log.Debugf("Table Extractor: skipping undecodable content stream on page %d: %v", n, err)
			continue
		}
		data = append(data, decoded...)
		data = append(data, '\n')
	}

	ge := graphicsstate.NewGraphicsExtractor()
	if err := ge.ExtractFromBytes(data); err != nil {
		log.Debugf("Table Extractor: no ruling lines on page %d: %v", n, err)
		return nil
	}

	extracted := ge.GetFilteredLines()
	lines := make([]model.Line, 0, len(extracted))
	for _, l := range extracted {
		lines = append(lines, model.Line{Start: l.Start, End: l.End, Width: l.Width})
	}
	return lines
}

// tableToGrid flattens detected cells to trimmed strings, dropping empty rows
func tableToGrid(table *model.Table) Grid {
	grid := make(Grid, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell.Text)
		}
		if isBlankRow(cells) {
			continue
		}
		grid = append(grid, cells)
	}
	return grid
}
