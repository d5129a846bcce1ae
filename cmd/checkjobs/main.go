package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sahilchouksey/pdf-extractor-api/config"
	"github.com/sahilchouksey/pdf-extractor-api/database"
	"github.com/sahilchouksey/pdf-extractor-api/model"
	"github.com/sahilchouksey/pdf-extractor-api/services"
)

const listLimit = 20

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load environment variables: %v", err)
	}
	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if !env.DatabaseEnabled() {
		log.Fatal("DB_HOST and DB_NAME must be set to read the audit log")
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("========================================")
	fmt.Println("EXTRACTION JOBS")
	fmt.Println("========================================")

	jobs, err := services.NewExtractionLogService(store.DB()).Recent(ctx, listLimit)
	if err != nil {
		log.Fatalf("Failed to fetch jobs: %v", err)
	}

	if len(jobs) == 0 {
		fmt.Println("\n❌ No extraction jobs found in database")
	} else {
		fmt.Printf("\n📋 Latest %d extraction jobs:\n\n", len(jobs))
		for _, job := range jobs {
			printJob(job)
		}
	}

	var cronLogs []model.CronJobLog
	if err := store.DB().WithContext(ctx).Order("started_at DESC").Limit(listLimit).Find(&cronLogs).Error; err != nil {
		log.Fatalf("Failed to fetch cron logs: %v", err)
	}

	fmt.Println("\n========================================")
	fmt.Printf("CRON RUNS: %d\n", len(cronLogs))
	fmt.Println("========================================")

	for _, run := range cronLogs {
		statusIcon := "🔄"
		switch run.Status {
		case model.CronStatusCompleted:
			statusIcon = "✅"
		case model.CronStatusFailed:
			statusIcon = "❌"
		}
		fmt.Printf("%s %s at %s (%dms) %s%s\n",
			statusIcon, run.JobName, run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Duration, run.Message, run.ErrorMsg)
	}
}

func printJob(job model.ExtractionJob) {
	statusIcon := "✅"
	if job.Status == model.JobStatusFailed {
		statusIcon = "❌"
	}

	fmt.Printf("─────────────────────────────────────\n")
	fmt.Printf("%s %s /%s\n", statusIcon, job.ID, job.Endpoint)
	fmt.Printf("   File: %s (%d bytes)\n", truncate(job.FileName, 60), job.FileSize)
	fmt.Printf("   Engine: %s via %s", job.Engine, job.Backend)
	if job.Strategy != "" {
		fmt.Printf(", strategy %s", job.Strategy)
	}
	fmt.Println()
	fmt.Printf("   Pages: %q -> %d of %d processed\n", job.PagesRequested, job.PagesProcessed, job.TotalPages)
	if job.TablesFound > 0 {
		fmt.Printf("   Tables: %d, rows: %d\n", job.TablesFound, job.Rows)
	}
	fmt.Printf("   Took: %dms at %s\n", job.Duration, job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.ErrorMsg != "" {
		fmt.Printf("   Error: %s\n", job.ErrorMsg)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
