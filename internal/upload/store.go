// Package upload persists card attachment files to a local directory and
// enforces the per-file size ceiling and per-card count ceiling. Accepted
// files are served back by URL from the same directory.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/taskboard/internal/domain"
)

// Upload limit violations, surfaced to callers before any domain mutation.
var (
	ErrFileTooLarge = errors.New("file too large")
	ErrTooManyFiles = errors.New("too many files")
)

// Store writes attachment files under a directory and builds their public
// URLs.
type Store struct {
	dir         string
	baseURL     string
	maxFileSize int64
	maxPerCard  int
	logger      *slog.Logger
}

// NewStore creates the upload directory if needed and returns a store.
func NewStore(dir, baseURL string, maxFileSizeMB, maxPerCard int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{
		dir:         dir,
		baseURL:     baseURL,
		maxFileSize: int64(maxFileSizeMB) << 20,
		maxPerCard:  maxPerCard,
		logger:      logger,
	}, nil
}

// Dir returns the directory files are written to, for static serving.
func (s *Store) Dir() string { return s.dir }

// MaxFileSizeMB returns the per-file ceiling in megabytes.
func (s *Store) MaxFileSizeMB() int { return int(s.maxFileSize >> 20) }

// MaxPerCard returns the per-card attachment count ceiling.
func (s *Store) MaxPerCard() int { return s.maxPerCard }

// Save writes the uploaded file to disk under a generated name and returns
// its attachment descriptor. existing is the card's current attachment
// count; the ceilings are checked before anything is written.
func (s *Store) Save(r io.Reader, originalName, mimeType string, size int64, existing int) (domain.Attachment, error) {
	if existing >= s.maxPerCard {
		return domain.Attachment{}, ErrTooManyFiles
	}
	if size > s.maxFileSize {
		return domain.Attachment{}, ErrFileTooLarge
	}

	filename := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer f.Close()

	// The declared size is checked above; LimitReader guards against a body
	// longer than declared.
	written, err := io.Copy(f, io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		os.Remove(path)
		return domain.Attachment{}, fmt.Errorf("failed to write attachment file: %w", err)
	}
	if written > s.maxFileSize {
		os.Remove(path)
		return domain.Attachment{}, ErrFileTooLarge
	}

	s.logger.Debug("attachment stored",
		slog.String("filename", filename),
		slog.Int64("size", written),
	)

	return domain.Attachment{
		ID:           uuid.NewString(),
		Filename:     filename,
		OriginalName: originalName,
		Size:         written,
		MimeType:     mimeType,
		URL:          s.baseURL + "/uploads/" + filename,
		UploadedAt:   time.Now(),
	}, nil
}
