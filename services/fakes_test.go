package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sahilchouksey/pdf-extractor-api/model"
	"github.com/sahilchouksey/pdf-extractor-api/utils/cache"
)

type fakeTextBackend struct {
	pages   []string
	openErr error
	pageErr map[int]error
	opened  []string
}

func (b *fakeTextBackend) Name() string { return "fake-text" }

func (b *fakeTextBackend) Open(path string) (TextDocument, error) {
	b.opened = append(b.opened, path)
	if b.openErr != nil {
		return nil, b.openErr
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("upload not on disk: %w", err)
	}
	return &fakeTextDoc{backend: b}, nil
}

type fakeTextDoc struct {
	backend *fakeTextBackend
}

func (d *fakeTextDoc) NumPages() int { return len(d.backend.pages) }

func (d *fakeTextDoc) PageText(n int) (string, error) {
	if err := d.backend.pageErr[n]; err != nil {
		return "", err
	}
	return d.backend.pages[n-1], nil
}

func (d *fakeTextDoc) Close() error { return nil }

type fakeTableBackend struct {
	pages  [][]Grid
	opened int
}

func (b *fakeTableBackend) Name() string { return "fake-table" }

func (b *fakeTableBackend) Open(path string) (TableDocument, error) {
	b.opened++
	return &fakeTableDoc{pages: b.pages}, nil
}

type fakeTableDoc struct {
	pages [][]Grid
}

func (d *fakeTableDoc) NumPages() int { return len(d.pages) }

func (d *fakeTableDoc) PageGrids(n int) ([]Grid, error) { return d.pages[n-1], nil }

func (d *fakeTableDoc) Close() error { return nil }

type fakeSheet struct {
	sheet string
	rows  map[int][]string
	saved string
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{rows: map[int][]string{}}
}

func (f *fakeSheet) WriteRows(sheet string, startRow int, rows [][]string) error {
	f.sheet = sheet
	for i, row := range rows {
		if len(row) > 0 {
			f.rows[startRow+i] = row
		}
	}
	return nil
}

func (f *fakeSheet) SaveAs(path string) error {
	f.saved = path
	return os.WriteFile(path, []byte("fake-workbook"), 0o600)
}

func (f *fakeSheet) Close() error { return nil }

type fakeRecorder struct {
	mu   sync.Mutex
	jobs []*model.ExtractionJob
}

func (r *fakeRecorder) Record(_ context.Context, job *model.ExtractionJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (m *memoryStore) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryStore) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}
