package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExtractionJobStatus represents the outcome of an extraction request
type ExtractionJobStatus string

const (
	JobStatusCompleted ExtractionJobStatus = "completed"
	JobStatusFailed    ExtractionJobStatus = "failed"
)

// ExtractionJob is the audit record of one /extract or /convert-to-excel call.
// Only metadata is kept: never document bytes, text or spreadsheets.
type ExtractionJob struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	RequestID string `gorm:"type:varchar(64);index" json:"request_id"`
	Endpoint  string `gorm:"type:varchar(50);not null;index" json:"endpoint"`

	FileName string `gorm:"type:varchar(255)" json:"file_name"`
	FileSize int64  `json:"file_size"`

	Engine         string `gorm:"type:varchar(20)" json:"engine"`
	Backend        string `gorm:"type:varchar(50)" json:"backend"`
	Strategy       string `gorm:"type:varchar(20)" json:"strategy,omitempty"`
	PagesRequested string `gorm:"type:varchar(255)" json:"pages_requested"`

	// Pages lists the page numbers that produced content
	Pages          datatypes.JSON `gorm:"type:jsonb" json:"pages"`
	TotalPages     int            `json:"total_pages"`
	PagesProcessed int            `json:"pages_processed"`
	TablesFound    int            `json:"tables_found"`
	Rows           int            `json:"rows"`
	TextLength     int            `json:"text_length"`

	Status   ExtractionJobStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ErrorMsg string              `gorm:"type:text" json:"error_msg,omitempty"`
	Duration int                 `json:"duration_ms"` // Duration in milliseconds

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ExtractionJob
func (ExtractionJob) TableName() string {
	return "extraction_jobs"
}
