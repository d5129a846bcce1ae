package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/sahilchouksey/pdf-extractor-api/model"
	"gorm.io/datatypes"
)

// Endpoint names recorded in the audit log
const (
	EndpointExtract = "extract"
	EndpointConvert = "convert-to-excel"
)

// ServiceOptions is the immutable configuration of an ExtractionService
type ServiceOptions struct {
	ScratchDir       string
	DefaultPageLimit int
	MaxPages         int
	Timeout          time.Duration
	HeaderKeywords   []string
	MetadataKeywords []string
	Strategy         string
	JoinWrappedRows  bool
}

// JobRecorder receives one audit entry per request
type JobRecorder interface {
	Record(ctx context.Context, job *model.ExtractionJob)
}

// SheetWriterFactory creates an empty workbook with the given sheet
type SheetWriterFactory func(sheet string) (SheetWriter, error)

// ExtractionService turns uploaded PDFs into text, tables or spreadsheets.
// It holds configuration and stateless collaborators only, so one instance
// serves every request.
type ExtractionService struct {
	text     TextBackend
	tables   TableBackend
	newSheet SheetWriterFactory
	opts     ServiceOptions
	cache    *ResultCache
	recorder JobRecorder
}

// NewExtractionService creates the service with the excelize sheet writer
func NewExtractionService(text TextBackend, tables TableBackend, opts ServiceOptions) *ExtractionService {
	if opts.DefaultPageLimit <= 0 {
		opts.DefaultPageLimit = DefaultPageLimit
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyTemplate
	}
	return &ExtractionService{
		text:     text,
		tables:   tables,
		newSheet: NewExcelWriter,
		opts:     opts,
	}
}

// WithCache enables the /extract result cache
func (s *ExtractionService) WithCache(c *ResultCache) *ExtractionService {
	s.cache = c
	return s
}

// WithRecorder enables the audit log
func (s *ExtractionService) WithRecorder(r JobRecorder) *ExtractionService {
	s.recorder = r
	return s
}

// WithSheetWriter replaces the spreadsheet writer
func (s *ExtractionService) WithSheetWriter(f SheetWriterFactory) *ExtractionService {
	s.newSheet = f
	return s
}

// ExtractRequest is one /extract call
type ExtractRequest struct {
	RequestID string
	FileName  string
	Content   []byte
	Pages     string
	Engine    string
	Strategy  string
	// HeaderKeywords overrides the configured set when non-nil; an empty,
	// non-nil slice disables header handling.
	HeaderKeywords []string
}

// ExtractResult is the success payload of /extract
type ExtractResult struct {
	FileName       string `json:"file_name"`
	TotalPages     int    `json:"total_pages"`
	PagesProcessed int    `json:"pages_processed"`
	TextLength     int    `json:"text_length"`
	Text           string `json:"text"`
	EngineUsed     string `json:"engine_used"`
	Rows           *int   `json:"rows,omitempty"`
	TablesFound    *int   `json:"tables_found,omitempty"`

	pages []int
}

// ConvertRequest is one /convert-to-excel call
type ConvertRequest struct {
	RequestID       string
	FileName        string
	Content         []byte
	Pages           string
	Strategy        string
	HeaderKeywords  []string
	IncludeMetadata bool
}

// ConvertResult is the success payload of /convert-to-excel
type ConvertResult struct {
	FileName        string `json:"file_name"`
	TablesExtracted int    `json:"tables_extracted"`
	Rows            int    `json:"rows"`
	PagesProcessed  int    `json:"pages_processed"`
	ExcelBase64     string `json:"excel_base64"`
}

// Extract returns the text of the selected pages, or the merged table rendered
// as text when the table engine is requested.
func (s *ExtractionService) Extract(ctx context.Context, req ExtractRequest) (result *ExtractResult, err error) {
	started := time.Now()
	job := s.newJob(EndpointExtract, req.RequestID, req.FileName, req.Content, req.Pages)
	defer func() { s.finishJob(ctx, job, started, err) }()

	engine, err := ParseEngine(req.Engine)
	if err != nil {
		return nil, err
	}
	job.Engine = string(engine)

	keywords := s.headerKeywords(req.HeaderKeywords)
	var merger TableMerger
	if engine == EngineTable {
		if merger, err = s.merger(req.Strategy, keywords); err != nil {
			return nil, err
		}
		job.Strategy = merger.Name()
		job.Backend = s.tables.Name()
	} else {
		job.Backend = s.text.Name()
	}

	if len(req.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	cacheKey := ResultKey(req.Content, engine, req.Pages, job.Strategy, keywords)
	if cached, ok := s.cache.Lookup(ctx, cacheKey); ok {
		cached.FileName = req.FileName
		job.Backend = cached.EngineUsed
		s.noteResult(job, cached.TotalPages, cached.PagesProcessed, cached.TextLength, cached.pages)
		return cached, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	scratch, err := NewScratch(s.opts.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer scratch.Close()

	path, err := scratch.WriteFile(safeUploadName(req.FileName), sanitizePDF(req.Content))
	if err != nil {
		return nil, err
	}

	switch engine {
	case EngineTable:
		result, err = s.extractTable(ctx, path, req.Pages, merger)
	default:
		result, err = s.extractText(ctx, path, req.Pages)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Store(ctx, cacheKey, result)
	result.FileName = req.FileName
	s.noteResult(job, result.TotalPages, result.PagesProcessed, result.TextLength, result.pages)
	if result.Rows != nil {
		job.Rows = *result.Rows
		job.TablesFound = *result.TablesFound
	}
	return result, nil
}

func (s *ExtractionService) extractText(ctx context.Context, path, pages string) (*ExtractResult, error) {
	doc, err := s.text.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	total := doc.NumPages()
	if err := s.checkPageCount(total); err != nil {
		return nil, err
	}

	selected, err := resolvePages(pages, total, s.opts.DefaultPageLimit)
	if err != nil {
		return nil, err
	}

	var sections []string
	var processed []int
	for n := 1; n <= total; n++ {
		if !selected.Contains(n) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction stopped before page %d: %w", n, err)
		}
		text, err := doc.PageText(n)
		if err != nil {
			return nil, err
		}
		sections = append(sections, fmt.Sprintf("=== Page %d ===\n%s", n, text))
		processed = append(processed, n)
	}

	text := strings.Join(sections, "\n")
	return &ExtractResult{
		TotalPages:     total,
		PagesProcessed: len(sections),
		TextLength:     utf8.RuneCountInString(text),
		Text:           text,
		EngineUsed:     s.text.Name(),
		pages:          processed,
	}, nil
}

func (s *ExtractionService) extractTable(ctx context.Context, path, pages string, merger TableMerger) (*ExtractResult, error) {
	total, table, err := s.mergeTables(ctx, path, pages, merger)
	if err != nil {
		return nil, err
	}

	text := table.Text()
	rows := len(table.Rows)
	found := table.GridCount
	return &ExtractResult{
		TotalPages:     total,
		PagesProcessed: len(table.Pages),
		TextLength:     utf8.RuneCountInString(text),
		Text:           text,
		EngineUsed:     s.tables.Name(),
		Rows:           &rows,
		TablesFound:    &found,
		pages:          table.Pages,
	}, nil
}

// ConvertToExcel merges the tables of the selected pages into one worksheet
// and returns the workbook base64 encoded.
func (s *ExtractionService) ConvertToExcel(ctx context.Context, req ConvertRequest) (result *ConvertResult, err error) {
	started := time.Now()
	job := s.newJob(EndpointConvert, req.RequestID, req.FileName, req.Content, req.Pages)
	job.Engine = string(EngineTable)
	job.Backend = s.tables.Name()
	defer func() { s.finishJob(ctx, job, started, err) }()

	keywords := s.headerKeywords(req.HeaderKeywords)
	merger, err := s.merger(req.Strategy, keywords)
	if err != nil {
		return nil, err
	}
	job.Strategy = merger.Name()

	if len(req.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	pages := req.Pages
	if strings.TrimSpace(pages) == "" {
		pages = "all"
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	scratch, err := NewScratch(s.opts.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer scratch.Close()

	uploadName := safeUploadName(req.FileName)
	path, err := scratch.WriteFile(uploadName, sanitizePDF(req.Content))
	if err != nil {
		return nil, err
	}

	total, table, err := s.mergeTables(ctx, path, pages, merger)
	if err != nil {
		return nil, err
	}

	var metadata []string
	if req.IncludeMetadata {
		metadata = s.metadata(path, keywords)
	}

	workbookName := strings.TrimSuffix(uploadName, filepath.Ext(uploadName)) + ".xlsx"
	encoded, err := s.renderWorkbook(scratch.Path(workbookName), metadata, table)
	if err != nil {
		return nil, err
	}

	result = &ConvertResult{
		FileName:        strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName)) + ".xlsx",
		TablesExtracted: table.GridCount,
		Rows:            len(table.Rows),
		PagesProcessed:  len(table.Pages),
		ExcelBase64:     encoded,
	}
	s.noteResult(job, total, result.PagesProcessed, 0, table.Pages)
	job.TablesFound = result.TablesExtracted
	job.Rows = result.Rows
	return result, nil
}

// mergeTables opens the document once, collects grids from the selected pages
// in document order and merges them into one logical table.
func (s *ExtractionService) mergeTables(ctx context.Context, path, pages string, merger TableMerger) (int, *LogicalTable, error) {
	doc, err := s.tables.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer doc.Close()

	total := doc.NumPages()
	if err := s.checkPageCount(total); err != nil {
		return 0, nil, err
	}

	selected, err := resolvePages(pages, total, s.opts.DefaultPageLimit)
	if err != nil {
		return 0, nil, err
	}

	var collected []PageGrids
	for n := 1; n <= total; n++ {
		if !selected.Contains(n) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, nil, fmt.Errorf("extraction stopped before page %d: %w", n, err)
		}
		grids, err := doc.PageGrids(n)
		if err != nil {
			return 0, nil, err
		}
		if len(grids) > 0 {
			collected = append(collected, PageGrids{Page: n, Grids: grids})
		}
	}

	table := merger.Merge(collected)
	if table.GridCount == 0 {
		return 0, nil, ErrNoTablesFound
	}

	log.Debugf("Extraction: merged %s with %s strategy", table, merger.Name())
	return total, table, nil
}

// metadata reads the document's first page through the text backend. The block
// is optional decoration, so failures only drop it.
func (s *ExtractionService) metadata(path string, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	doc, err := s.text.Open(path)
	if err != nil {
		log.Warnf("Extraction: skipping metadata block: %v", err)
		return nil
	}
	defer doc.Close()

	if doc.NumPages() < 1 {
		return nil
	}
	text, err := doc.PageText(1)
	if err != nil {
		log.Warnf("Extraction: skipping metadata block: %v", err)
		return nil
	}
	return metadataLines(text, keywords)
}

func (s *ExtractionService) renderWorkbook(path string, metadata []string, table *LogicalTable) (string, error) {
	writer, err := s.newSheet(SheetName)
	if err != nil {
		return "", err
	}
	defer writer.Close()

	if _, err := WriteWorkbook(writer, metadata, table.Records()); err != nil {
		return "", fmt.Errorf("failed to write worksheet: %w", err)
	}
	if err := writer.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read workbook: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (s *ExtractionService) merger(strategy string, keywords []string) (TableMerger, error) {
	if strings.TrimSpace(strategy) == "" {
		strategy = s.opts.Strategy
	}
	return NewTableMerger(strategy, MergeOptions{
		HeaderKeywords:   keywords,
		MetadataKeywords: s.opts.MetadataKeywords,
		JoinWrappedRows:  s.opts.JoinWrappedRows,
	})
}

func (s *ExtractionService) headerKeywords(override []string) []string {
	if override != nil {
		return override
	}
	return s.opts.HeaderKeywords
}

func (s *ExtractionService) checkPageCount(total int) error {
	if s.opts.MaxPages > 0 && total > s.opts.MaxPages {
		return fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, total, s.opts.MaxPages)
	}
	return nil
}

func (s *ExtractionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *ExtractionService) newJob(endpoint, requestID, fileName string, content []byte, pages string) *model.ExtractionJob {
	return &model.ExtractionJob{
		ID:             uuid.NewString(),
		RequestID:      requestID,
		Endpoint:       endpoint,
		FileName:       fileName,
		FileSize:       int64(len(content)),
		PagesRequested: pages,
	}
}

func (s *ExtractionService) noteResult(job *model.ExtractionJob, total, processed, textLength int, pages []int) {
	job.TotalPages = total
	job.PagesProcessed = processed
	job.TextLength = textLength
	if raw, err := json.Marshal(pages); err == nil {
		job.Pages = datatypes.JSON(raw)
	}
}

func (s *ExtractionService) finishJob(ctx context.Context, job *model.ExtractionJob, started time.Time, err error) {
	job.Duration = int(time.Since(started).Milliseconds())
	job.Status = model.JobStatusCompleted
	if err != nil {
		job.Status = model.JobStatusFailed
		job.ErrorMsg = err.Error()
		log.Warnf("Extraction: %s %q failed after %dms: %v", job.Endpoint, job.FileName, job.Duration, err)
	} else {
		log.Infow("Extraction completed",
			"endpoint", job.Endpoint,
			"file", job.FileName,
			"backend", job.Backend,
			"pages_processed", job.PagesProcessed,
			"duration_ms", job.Duration,
		)
	}

	if s.recorder != nil {
		s.recorder.Record(context.WithoutCancel(ctx), job)
	}
}
