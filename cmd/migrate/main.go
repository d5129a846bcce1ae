// Command migrate creates or updates the audit tables.
// Usage: go run ./cmd/migrate
package main

import (
	"log"

	"github.com/sahilchouksey/pdf-extractor-api/config"
	"github.com/sahilchouksey/pdf-extractor-api/database"
)

func main() {
	log.Println("=== GORM Migration ===")

	if err := config.LoadENV(); err != nil {
		log.Fatal("Failed to load environment variables:", err)
	}
	env, err := config.Get()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := store.HealthCheck(); err != nil {
		log.Fatal("Database health check failed:", err)
	}

	log.Println("✅ Migrations completed, tables: extraction_jobs, cron_job_logs")
}
