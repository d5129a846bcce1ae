package pdfvalidation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// PDFLimits defines the validation limits for PDF uploads
type PDFLimits struct {
	MaxFileSizeMB int // Maximum file size in MB
}

// DefaultLimits matches the MAX_UPLOAD_MB default
var DefaultLimits = PDFLimits{MaxFileSizeMB: 50}

// ValidationResult contains the result of PDF validation
type ValidationResult struct {
	Valid    bool
	FileSize int64
	Content  []byte
	Error    string
}

// ValidatePDFFile validates an uploaded PDF and returns its bytes when valid.
// A non-nil error means the upload could not be read at all.
func ValidatePDFFile(file *multipart.FileHeader, limits PDFLimits) (*ValidationResult, error) {
	result := &ValidationResult{
		FileSize: file.Size,
	}

	// 1. Validate file size
	if msg := checkSize(file.Size, limits); msg != "" {
		result.Error = msg
		return result, nil
	}

	// 2. Validate file extension. Names without one are allowed, automation
	// tools often upload blobs named "data" or "file".
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != "" && ext != ".pdf" {
		result.Error = "Only PDF files are supported"
		return result, nil
	}

	// 3. Open file and read content
	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fileContent.Close()

	content, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ValidatePDFBytes(content, limits)
}

// ValidatePDFBytes validates PDF content bytes against the given limits
func ValidatePDFBytes(content []byte, limits PDFLimits) (*ValidationResult, error) {
	result := &ValidationResult{
		FileSize: int64(len(content)),
	}

	// 1. Validate file size
	if msg := checkSize(result.FileSize, limits); msg != "" {
		result.Error = msg
		return result, nil
	}

	if len(content) == 0 {
		result.Error = "Uploaded file is empty"
		return result, nil
	}

	// 2. Validate PDF header
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result, nil
	}

	result.Content = content
	result.Valid = true
	return result, nil
}

func checkSize(size int64, limits PDFLimits) string {
	if limits.MaxFileSizeMB <= 0 {
		return ""
	}
	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if size > maxSize {
		return fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
	}
	return ""
}
