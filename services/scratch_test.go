package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchLifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")

	s, err := NewScratch(root)
	require.NoError(t, err)
	assert.Equal(t, root, filepath.Dir(s.Dir))
	assert.True(t, strings.HasPrefix(filepath.Base(s.Dir), ScratchPrefix))

	path, err := s.WriteFile("../../escape.pdf", []byte("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "escape.pdf"), path)

	require.NoError(t, s.Close())
	_, err = os.Stat(s.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestScratchDirsAreDistinct(t *testing.T) {
	root := t.TempDir()
	a, err := NewScratch(root)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewScratch(root)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Dir, b.Dir)
}

func TestSafeUploadName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"statement.pdf", "statement.pdf"},
		{"", "upload.pdf"},
		{"/", "upload.pdf"},
		{`C:\Users\me\bank.pdf`, "bank.pdf"},
		{"../../etc/passwd", "passwd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeUploadName(tt.in), tt.in)
	}
}
