package pdfvalidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePDFBytes(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		limits  PDFLimits
		valid   bool
		message string
	}{
		{name: "valid", content: []byte("%PDF-1.7\n%%EOF"), limits: DefaultLimits, valid: true},
		{name: "empty", content: nil, limits: DefaultLimits, message: "Uploaded file is empty"},
		{name: "no header", content: []byte("PK\x03\x04"), limits: DefaultLimits, message: "Invalid PDF file: missing PDF header"},
		{
			name:    "too large",
			content: append([]byte("%PDF-"), make([]byte, 1<<20)...),
			limits:  PDFLimits{MaxFileSizeMB: 1},
			message: "File size exceeds maximum allowed size of 1MB",
		},
		{name: "no limit", content: append([]byte("%PDF-"), make([]byte, 1<<20)...), limits: PDFLimits{}, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidatePDFBytes(tt.content, tt.limits)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.message, result.Error)
			assert.Equal(t, int64(len(tt.content)), result.FileSize)
			if tt.valid {
				assert.Equal(t, tt.content, result.Content)
			} else {
				assert.Nil(t, result.Content)
			}
		})
	}
}
