package cron

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/pdf-extractor-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Schedules, with seconds precision
const (
	ScheduleScratchSweep = "0 */10 * * * *" // every 10 minutes
	ScheduleLogRetention = "0 0 3 * * *"    // daily at 3 AM
)

// Config controls the housekeeping jobs
type Config struct {
	ScratchRoot   string
	ScratchMaxAge time.Duration
	LogRetention  time.Duration
	SweepSchedule string
	PurgeSchedule string
}

// CronManager manages all scheduled cron jobs. db may be nil, in which case
// runs are only logged and audit retention is skipped.
type CronManager struct {
	cron   *cron.Cron
	db     *gorm.DB
	config Config
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, config Config) *CronManager {
	if config.SweepSchedule == "" {
		config.SweepSchedule = ScheduleScratchSweep
	}
	if config.PurgeSchedule == "" {
		config.PurgeSchedule = ScheduleLogRetention
	}

	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:   c,
		db:     db,
		config: config,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Info("Starting cron jobs...")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Info("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Info("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Remove scratch directories left behind by crashed requests
	_, err := m.cron.AddFunc(m.config.SweepSchedule, func() {
		m.SweepScratch()
	})
	if err != nil {
		return err
	}

	// 2. Drop audit and cron logs past retention
	if m.db != nil {
		_, err = m.cron.AddFunc(m.config.PurgeSchedule, func() {
			m.PurgeOldLogs()
		})
		if err != nil {
			return err
		}
	}

	log.Info("All cron jobs registered successfully")
	return nil
}

// logJobStart logs the start of a cron job and returns its log row
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	log.Infof("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronStatusRunning,
		StartedAt: time.Now(),
		Metadata:  datatypes.JSON("{}"),
	}
	if m.db != nil {
		if err := m.db.Create(cronLog).Error; err != nil {
			log.Warnf("[CRON] Failed to record start of %s: %v", jobName, err)
		}
	}
	return cronLog
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(cronLog *model.CronJobLog, message string, metadata map[string]interface{}) {
	log.Infof("[CRON] Completed job: %s - %s", cronLog.JobName, message)

	updates := map[string]interface{}{
		"status":       model.CronStatusCompleted,
		"completed_at": time.Now(),
		"duration":     int(time.Since(cronLog.StartedAt).Milliseconds()),
		"message":      message,
	}
	if raw, err := json.Marshal(metadata); err == nil && metadata != nil {
		updates["metadata"] = datatypes.JSON(raw)
	}
	m.updateLog(cronLog, updates)
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(cronLog *model.CronJobLog, err error) {
	log.Errorf("[CRON] Error in job: %s - %v", cronLog.JobName, err)

	m.updateLog(cronLog, map[string]interface{}{
		"status":       model.CronStatusFailed,
		"completed_at": time.Now(),
		"duration":     int(time.Since(cronLog.StartedAt).Milliseconds()),
		"error_msg":    err.Error(),
	})
}

func (m *CronManager) updateLog(cronLog *model.CronJobLog, updates map[string]interface{}) {
	if m.db == nil || cronLog.ID == 0 {
		return
	}
	if err := m.db.Model(&model.CronJobLog{}).Where("id = ?", cronLog.ID).Updates(updates).Error; err != nil {
		log.Warnf("[CRON] Failed to update log for %s: %v", cronLog.JobName, err)
	}
}
