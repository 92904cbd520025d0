// Package upload stores uploaded spreadsheet templates for the duration of one request.
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/meteo-template/internal/common"
)

// AllowedExtensions are the accepted spreadsheet file extensions.
var AllowedExtensions = []string{"xlsx", "xls", "xlsm"}

var (
	ErrEmptyFile     = errors.New("uploaded file is empty")
	ErrInvalidType   = errors.New("invalid file type, only Excel files (.xlsx, .xls, .xlsm) are allowed")
	ErrMissingUpload = errors.New("no file uploaded")
)

// File is a stored upload. Release must be called once the request is done.
type File struct {
	Path         string
	OriginalName string
	Extension    string
	logger       *slog.Logger
}

// Release deletes the stored file. It is safe to call more than once.
func (f *File) Release() {
	if f == nil || f.Path == "" {
		return
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Warn("failed to remove upload", "path", f.Path, "error", err)
	}
}

// Store saves uploads into a directory under unique names.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Extension returns the lower-case extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Validate checks the file name and size of an upload.
func Validate(name string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if !common.EqualFoldAny(Extension(name), AllowedExtensions...) {
		return ErrInvalidType
	}
	return nil
}

// SaveMultipart validates and stores a multipart upload.
func (s *Store) SaveMultipart(fh *multipart.FileHeader) (*File, error) {
	if fh == nil {
		return nil, ErrMissingUpload
	}
	if err := Validate(fh.Filename, fh.Size); err != nil {
		return nil, err
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	return s.save(fh.Filename, src)
}

// Save validates and stores r under a generated name derived from name.
func (s *Store) Save(name string, size int64, r io.Reader) (*File, error) {
	if err := Validate(name, size); err != nil {
		return nil, err
	}
	return s.save(name, r)
}

func (s *Store) save(name string, r io.Reader) (*File, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := Extension(name)
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.%s", uuid.NewString(), time.Now().Unix(), ext))

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	return &File{
		Path:         path,
		OriginalName: filepath.Base(name),
		Extension:    ext,
		logger:       s.logger,
	}, nil
}

// Sweep removes stored files last modified before now-maxAge and returns how many.
func (s *Store) Sweep(now time.Time, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !common.EqualFoldAny(Extension(e.Name()), AllowedExtensions...) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
