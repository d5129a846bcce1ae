package cron

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/model"
	"github.com/sahilchouksey/pdf-extractor-api/services"
)

const (
	jobSweepScratch = "sweep_scratch"
	jobPurgeLogs    = "purge_old_logs"
)

// SweepScratch removes per-request scratch directories older than ScratchMaxAge.
// Requests remove their own directory; this only catches ones orphaned by a crash.
func (m *CronManager) SweepScratch() {
	cronLog := m.logJobStart(jobSweepScratch)

	removed, err := SweepScratchDir(m.config.ScratchRoot, m.config.ScratchMaxAge, time.Now())
	if err != nil {
		m.logJobError(cronLog, err)
		return
	}

	m.logJobComplete(cronLog, fmt.Sprintf("Removed %d orphaned scratch directories", removed), map[string]interface{}{
		"removed": removed,
		"root":    m.config.ScratchRoot,
	})
}

// SweepScratchDir deletes scratch directories under root last modified before
// now-maxAge and returns how many were removed. A missing root is not an error.
func SweepScratchDir(root string, maxAge time.Duration, now time.Time) (int, error) {
	if root == "" {
		root = os.TempDir()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list scratch root: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), services.ScratchPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Warnf("[CRON] Failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// PurgeOldLogs deletes extraction audit entries and cron logs past LogRetention
func (m *CronManager) PurgeOldLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cronLog := m.logJobStart(jobPurgeLogs)
	cutoff := time.Now().Add(-m.config.LogRetention)

	jobs, err := services.NewExtractionLogService(m.db).PurgeBefore(ctx, cutoff)
	if err != nil {
		m.logJobError(cronLog, fmt.Errorf("failed to purge extraction jobs: %w", err))
		return
	}

	result := m.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ? AND status <> ?", cutoff, model.CronStatusRunning).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(cronLog, fmt.Errorf("failed to purge cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(cronLog, fmt.Sprintf("Purged %d extraction jobs and %d cron logs", jobs, result.RowsAffected), map[string]interface{}{
		"extraction_jobs": jobs,
		"cron_logs":       result.RowsAffected,
		"cutoff":          cutoff.Format(time.RFC3339),
	})
}
