package services

import (
	"fmt"
	"strings"
)

// Merge strategy names accepted by NewTableMerger
const (
	StrategyTemplate = "template"
	StrategyKeyword  = "keyword"
)

// Grid is one table as extracted from a page: rows of string cells
type Grid [][]string

// PageGrids holds every grid found on one page, in extraction order
type PageGrids struct {
	Page  int
	Grids []Grid
}

// LogicalTable is the single table reassembled from per-page grids
type LogicalTable struct {
	Header            []string
	Rows              [][]string
	Pages             []int
	ContinuationPages []int
	GridCount         int

	// Preamble holds the metadata rows excluded from the first grid
	Preamble [][]string
}

// Records returns the header (when present) followed by every row
func (t *LogicalTable) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	if len(t.Header) > 0 {
		records = append(records, t.Header)
	}
	return append(records, t.Rows...)
}

// Text renders the table as tab separated lines, header first
func (t *LogicalTable) Text() string {
	var sb strings.Builder
	for i, record := range t.Records() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(record, "\t"))
	}
	return sb.String()
}

func (t *LogicalTable) notePage(page int) {
	if n := len(t.Pages); n > 0 && t.Pages[n-1] == page {
		return
	}
	t.Pages = append(t.Pages, page)
}

func (t *LogicalTable) noteContinuation(page int) {
	if n := len(t.ContinuationPages); n > 0 && t.ContinuationPages[n-1] == page {
		return
	}
	t.ContinuationPages = append(t.ContinuationPages, page)
}

func (t *LogicalTable) appendRows(rows [][]string) {
	for _, row := range rows {
		t.Rows = append(t.Rows, cloneRow(row))
	}
}

// MergeOptions configures header handling shared by every strategy
type MergeOptions struct {
	HeaderKeywords   []string
	MetadataKeywords []string
	JoinWrappedRows  bool
}

// TableMerger stitches per-page grids into one LogicalTable
type TableMerger interface {
	Name() string
	Merge(pages []PageGrids) *LogicalTable
}

// NewTableMerger returns the merger registered under strategy
func NewTableMerger(strategy string, opts MergeOptions) (TableMerger, error) {
	opts.HeaderKeywords = normalizeKeywords(opts.HeaderKeywords)
	opts.MetadataKeywords = normalizeKeywords(opts.MetadataKeywords)

	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyTemplate:
		return &TemplateMerger{opts: opts}, nil
	case StrategyKeyword:
		return &KeywordMerger{opts: opts}, nil
	default:
		return nil, &UnsupportedStrategyError{Value: strategy}
	}
}

// TemplateMerger remembers the first header row and uses it to recognise
// continuation grids that lost their header on a page break.
type TemplateMerger struct {
	opts MergeOptions
}

func (m *TemplateMerger) Name() string { return StrategyTemplate }

func (m *TemplateMerger) Merge(pages []PageGrids) *LogicalTable {
	if len(m.opts.HeaderKeywords) == 0 {
		return concatenate(pages, m.opts)
	}

	table := &LogicalTable{}
	seenFirst := false

	for _, page := range pages {
		for _, grid := range page.Grids {
			if len(grid) == 0 {
				continue
			}
			table.GridCount++
			table.notePage(page.Page)

			if !seenFirst {
				seenFirst = true
				header, preamble, rows := m.splitFirstGrid(grid)
				table.Header = header
				table.Preamble = preamble
				table.appendRows(rows)
				continue
			}

			width := gridWidth(grid)
			if !sameRow(fitRow(grid[0], width), fitRow(table.Header, width)) {
				// Headerless continuation: rows inherit the template header,
				// widened when the continuation carries extra columns.
				if width > len(table.Header) {
					table.Header = fitRow(table.Header, width)
				}
				table.noteContinuation(page.Page)
			}
			// A repeated header row is kept as ordinary content.
			table.appendRows(grid)
		}
	}

	return finish(table, m.opts)
}

// splitFirstGrid separates a metadata preamble from the first table. When the
// grid mentions a metadata keyword, rows before the first header-keyword row are
// preamble; a preamble block without such a row is dropped whole and its last
// row becomes the header template.
func (m *TemplateMerger) splitFirstGrid(grid Grid) (header []string, preamble [][]string, rows [][]string) {
	if !gridHasKeyword(grid, m.opts.MetadataKeywords) {
		return cloneRow(grid[0]), nil, grid[1:]
	}

	for i, row := range grid {
		if rowHasKeyword(row, m.opts.HeaderKeywords) {
			return cloneRow(row), grid[:i], grid[i+1:]
		}
	}
	return cloneRow(grid[len(grid)-1]), grid, nil
}

// KeywordMerger drops the first row of any grid that mentions a header keyword.
// It never compares rows against a template, so a continuation whose first data
// row happens to contain a keyword loses that row.
type KeywordMerger struct {
	opts MergeOptions
}

func (m *KeywordMerger) Name() string { return StrategyKeyword }

func (m *KeywordMerger) Merge(pages []PageGrids) *LogicalTable {
	if len(m.opts.HeaderKeywords) == 0 {
		return concatenate(pages, m.opts)
	}

	table := &LogicalTable{}
	for _, page := range pages {
		for _, grid := range page.Grids {
			if len(grid) == 0 {
				continue
			}
			table.GridCount++
			table.notePage(page.Page)

			rows := [][]string(grid)
			if rowHasKeyword(grid[0], m.opts.HeaderKeywords) {
				if table.Header == nil {
					table.Header = cloneRow(grid[0])
				}
				rows = rows[1:]
			}
			table.appendRows(rows)
		}
	}

	return finish(table, m.opts)
}

// concatenate is the degenerate merge used when no header keywords are configured
func concatenate(pages []PageGrids, opts MergeOptions) *LogicalTable {
	table := &LogicalTable{}
	for _, page := range pages {
		for _, grid := range page.Grids {
			if len(grid) == 0 {
				continue
			}
			table.GridCount++
			table.notePage(page.Page)
			table.appendRows(grid)
		}
	}
	return finish(table, opts)
}

func finish(table *LogicalTable, opts MergeOptions) *LogicalTable {
	if opts.JoinWrappedRows {
		table.Rows = JoinWrappedRows(table.Rows)
	}
	if table.Rows == nil {
		table.Rows = [][]string{}
	}
	return table
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func rowHasKeyword(row []string, keywords []string) bool {
	for _, cell := range row {
		cell = strings.ToLower(strings.TrimSpace(cell))
		if cell == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(cell, kw) {
				return true
			}
		}
	}
	return false
}

func gridHasKeyword(grid Grid, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, row := range grid {
		if rowHasKeyword(row, keywords) {
			return true
		}
	}
	return false
}

func gridWidth(grid Grid) int {
	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}
	return width
}

// fitRow pads with blanks or truncates row to width cells
func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func sameRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

func cloneRow(row []string) []string {
	return append([]string(nil), row...)
}

// String is used in log lines
func (t *LogicalTable) String() string {
	return fmt.Sprintf("LogicalTable{header=%d cols, rows=%d, pages=%v}", len(t.Header), len(t.Rows), t.Pages)
}
