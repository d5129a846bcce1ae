package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePDF(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "%PDF-1.4\nbody\n%%EOF\n", want: "%PDF-1.4\nbody\n%%EOF\n"},
		{name: "trailing html", in: "%PDF-1.4\nbody\n%%EOF\n<html><body>download page</body></html>", want: "%PDF-1.4\nbody\n%%EOF\n"},
		{name: "short tail kept", in: "%PDF-1.4\n%%EOF\n  x", want: "%PDF-1.4\n%%EOF\n  x"},
		{name: "not a pdf", in: "hello %%EOF and more trailing bytes", want: "hello %%EOF and more trailing bytes"},
		{name: "no eof marker", in: "%PDF-1.4\ntruncated", want: "%PDF-1.4\ntruncated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(sanitizePDF([]byte(tt.in))))
		})
	}
}

func TestParseEngine(t *testing.T) {
	for in, want := range map[string]Engine{"": EngineText, "text": EngineText, " TABLE ": EngineTable} {
		got, err := ParseEngine(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEngine("camelot")
	require.Error(t, err)
	assert.Equal(t, `Unsupported engine "camelot". Use "text" or "table".`, err.Error())
}

func TestPDFExtractorOpenMissingFile(t *testing.T) {
	_, err := NewPDFExtractor().Open(t.TempDir() + "/missing.pdf")
	assert.Error(t, err)
}
