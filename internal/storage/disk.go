package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrTooLarge is returned by Save before anything touches the disk.
var ErrTooLarge = errors.New("file exceeds size limit")

// File type categories assigned once at ingestion. Detection on the
// actual bytes is authoritative; client-supplied hints are ignored.
const (
	FileTypeImage    = "image"
	FileTypeDocument = "document"
	FileTypeGeneric  = "file"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SavedFile describes a blob written under the upload root.
type SavedFile struct {
	StoredName   string
	OriginalName string
	MimeType     string
	Category     string
	Size         int64
	URL          string
}

// Store writes uploaded blobs under a single root directory and serves
// them back by stored name. Stored names never contain path separators,
// so every blob stays inside the root.
type Store struct {
	root     string
	maxBytes int64
}

func NewStore(root string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{root: root, maxBytes: maxBytes}, nil
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates size, classifies the content and writes the blob. The
// size gate runs before any disk write so an oversized payload never
// leaves a partial file behind. A failed write removes the file again.
func (s *Store) Save(originalName string, data []byte) (*SavedFile, error) {
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	if len(data) == 0 {
		return nil, errors.New("empty file payload")
	}

	mt := mimetype.Detect(data)
	storedName := storedName(originalName)
	path := filepath.Join(s.root, storedName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return &SavedFile{
		StoredName:   storedName,
		OriginalName: originalName,
		MimeType:     mt.String(),
		Category:     Classify(mt.String()),
		Size:         int64(len(data)),
		URL:          "/uploads/" + storedName,
	}, nil
}

// Path resolves a stored name to its location under the upload root.
// The name is reduced to its base first, so a crafted name can never
// escape the root.
func (s *Store) Path(storedName string) (string, error) {
	name := filepath.Base(storedName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid stored name %q", storedName)
	}
	path := filepath.Join(s.root, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// Open returns a reader over a stored blob.
func (s *Store) Open(storedName string) (io.ReadCloser, int64, error) {
	path := filepath.Join(s.root, filepath.Base(storedName))
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (s *Store) Remove(storedName string) error {
	return os.Remove(filepath.Join(s.root, filepath.Base(storedName)))
}

// Classify maps a detected mime type onto the message file categories.
func Classify(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FileTypeImage
	case mimeType == "application/pdf",
		strings.Contains(mimeType, "msword"),
		strings.Contains(mimeType, "officedocument"),
		strings.Contains(mimeType, "spreadsheet"),
		strings.Contains(mimeType, "presentation"),
		strings.HasPrefix(mimeType, "text/"):
		return FileTypeDocument
	default:
		return FileTypeGeneric
	}
}

// SanitizeName strips everything outside [A-Za-z0-9._-] from a client
// supplied file name.
func SanitizeName(name string) string {
	safe := unsafeChars.ReplaceAllString(filepath.Base(name), "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = "upload"
	}
	return safe
}

func storedName(originalName string) string {
	return fmt.Sprintf("%d_%s_%s",
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		SanitizeName(originalName),
	)
}
