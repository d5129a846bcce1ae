package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// This function will Load the ENVIRONMENT VARIABLES from .env if GO_ENV variable is not set.
// A missing .env file is not an error: the service runs fine on plain environment variables.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// Environment holds every setting the service reads from the environment
type Environment struct {
	GO_ENV    string
	PORT      int    `validate:"gte=1,lte=65535"`
	LOG_LEVEL string `validate:"oneof=trace debug info warn error"`

	// Upload / processing limits
	MAX_UPLOAD_MB      int           `validate:"gte=1"`
	MAX_PAGES          int           `validate:"gte=1"`
	DEFAULT_PAGE_LIMIT int           `validate:"gte=1"`
	PROCESSING_TIMEOUT time.Duration `validate:"gt=0"`
	SCRATCH_DIR        string

	// Table merging
	HEADER_KEYWORDS   []string
	METADATA_KEYWORDS []string
	MERGE_STRATEGY    string `validate:"oneof=template keyword"`
	JOIN_WRAPPED_ROWS bool

	// HTTP
	ALLOWED_ORIGINS string

	// Redis Configuration (optional result cache)
	REDIS_URL string
	CACHE_TTL time.Duration `validate:"gte=0"`

	// Database Configuration (optional extraction audit log)
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string

	// Cron
	CRON_ENABLED    bool
	// The janitor must never see a directory whose request could still be running
	JANITOR_MAX_AGE time.Duration `validate:"gt=0,gtfield=PROCESSING_TIMEOUT"`
	LOG_RETENTION   time.Duration `validate:"gt=0"`
}

var (
	DefaultHeaderKeywords   = []string{"date", "description", "details", "amount", "debit", "credit"}
	DefaultMetadataKeywords = []string{"statement", "balance", "account holder", "account number", "period"}
)

func Get() (*Environment, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	sslMode := os.Getenv("DB_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	env := &Environment{
		GO_ENV:    os.Getenv("GO_ENV"),
		PORT:      port,
		LOG_LEVEL: strings.ToLower(getString("LOG_LEVEL", "info")),

		MAX_UPLOAD_MB:      getInt("MAX_UPLOAD_MB", 50),
		MAX_PAGES:          getInt("MAX_PAGES", 2000),
		DEFAULT_PAGE_LIMIT: getInt("DEFAULT_PAGE_LIMIT", 6),
		PROCESSING_TIMEOUT: getDuration("PROCESSING_TIMEOUT", 2*time.Minute),
		SCRATCH_DIR:        getString("SCRATCH_DIR", os.TempDir()),

		HEADER_KEYWORDS:   getList("HEADER_KEYWORDS", DefaultHeaderKeywords),
		METADATA_KEYWORDS: getList("METADATA_KEYWORDS", DefaultMetadataKeywords),
		MERGE_STRATEGY:    strings.ToLower(getString("MERGE_STRATEGY", "template")),
		JOIN_WRAPPED_ROWS: getBool("JOIN_WRAPPED_ROWS", false),

		ALLOWED_ORIGINS: getString("ALLOWED_ORIGINS", "*"),

		REDIS_URL: os.Getenv("REDIS_URL"),
		CACHE_TTL: getDuration("CACHE_TTL", 10*time.Minute),

		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      os.Getenv("DB_HOST"),
		DB_PORT:      dbPort,
		DB_SSL_MODE:  sslMode,

		CRON_ENABLED:    os.Getenv("CRON_ENABLED") != "false", // Default to enabled
		JANITOR_MAX_AGE: getDuration("JANITOR_MAX_AGE", 30*time.Minute),
		LOG_RETENTION:   getDuration("LOG_RETENTION", 30*24*time.Hour),
	}

	if err := validator.New().Struct(env); err != nil {
		return nil, err
	}

	return env, nil
}

// DatabaseEnabled reports whether enough DB settings are present to open a connection
func (e *Environment) DatabaseEnabled() bool {
	return e.DB_HOST != "" && e.DB_NAME != ""
}

// CacheEnabled reports whether a Redis URL was configured
func (e *Environment) CacheEnabled() bool {
	return e.REDIS_URL != ""
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

// getList reads a comma separated variable. An explicitly empty value ("HEADER_KEYWORDS=")
// yields an empty list, which disables header handling in the table merger.
func getList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return append([]string(nil), fallback...)
	}
	return SplitList(raw)
}

// SplitList splits a comma separated string, trimming and lower-casing each entry
func SplitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
