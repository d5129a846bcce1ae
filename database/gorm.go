package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/config"
	"github.com/sahilchouksey/pdf-extractor-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// DSN builds the PostgreSQL Data Source Name from the environment
func DSN(env *config.Environment) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM(env *config.Environment) (*GORMStore, error) {
	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		log.Errorf("Unable to connect to PostgreSQL with GORM: %v", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Audit writes are small and infrequent
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Info("Running GORM AutoMigrate...")

	err := s.db.AutoMigrate(
		&model.ExtractionJob{},
		&model.CronJobLog{},
	)
	if err != nil {
		log.Errorf("Error running AutoMigrate: %v", err)
		return err
	}

	log.Info("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Info("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the GORM DB instance
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
