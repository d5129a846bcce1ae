package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// ScratchPrefix marks per-request directories so the janitor can find orphans
const ScratchPrefix = "pdfx-"

// Scratch is a private working directory owned by one request. Close removes it
// together with everything written inside.
type Scratch struct {
	Dir string
}

// NewScratch creates a fresh directory under root (os.TempDir when empty)
func NewScratch(root string) (*Scratch, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare scratch root: %w", err)
	}
	dir, err := os.MkdirTemp(root, ScratchPrefix+uuid.NewString()[:8]+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Scratch{Dir: dir}, nil
}

// Path joins name onto the scratch directory, keeping only its base name
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

// WriteFile stores content under name and returns the full path
func (s *Scratch) WriteFile(name string, content []byte) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s to scratch: %w", filepath.Base(path), err)
	}
	return path, nil
}

func (s *Scratch) Close() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		log.Warnf("Scratch: failed to remove %s: %v", s.Dir, err)
		return err
	}
	return nil
}

// safeUploadName reduces an uploaded filename to something usable on disk
func safeUploadName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload.pdf"
	}
	return base
}
