package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"image-text-reader/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const timestampLayout = "20060102_150405"

// LocalFileStore keeps uploads as plain files in one directory.
type LocalFileStore struct {
	dir     string
	allowed map[string]struct{}
	logger  domain.Logger
	now     func() time.Time
}

// NewLocalFileStore creates the store directory if needed.
func NewLocalFileStore(dir string, allowedExtensions []string, logger domain.Logger) (*LocalFileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", abs, err)
	}

	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return &LocalFileStore{
		dir:     abs,
		allowed: allowed,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Dir returns the absolute store directory.
func (s *LocalFileStore) Dir() string {
	return s.dir
}

// IsAllowed reports whether the suffix after the last dot is an allowed extension.
func (s *LocalFileStore) IsAllowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(filename[idx+1:])]
	return ok
}

// Store writes file under a generated name derived from originalName.
func (s *LocalFileStore) Store(file io.Reader, originalName string) (*domain.StoredUpload, error) {
	if !s.IsAllowed(originalName) {
		return nil, domain.ErrFileTypeNotAllowed
	}

	safe := secureFilename(originalName)
	ext := filepath.Ext(safe)
	base := strings.TrimSuffix(safe, ext)
	if base == "" {
		base = "upload"
	}
	if ext == "" {
		// secureFilename can drop a non-ASCII extension; the allow check passed on the original.
		ext = "." + strings.ToLower(originalName[strings.LastIndex(originalName, ".")+1:])
	}

	name := fmt.Sprintf("%s_%s%s", base, s.now().Format(timestampLayout), ext)
	f, path, err := s.create(name)
	if errors.Is(err, os.ErrExist) {
		s.logger.Warn("Generated filename already taken, adding suffix", "filename", name)
		name = fmt.Sprintf("%s_%s_%s%s", base, s.now().Format(timestampLayout), uuid.NewString()[:8], ext)
		f, path, err = s.create(name)
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "create", Path: filepath.Join(s.dir, name), Err: err}
	}

	size, err := io.Copy(f, file)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, &domain.StorageError{Op: "write", Path: path, Err: err}
	}

	s.logger.Debug("Stored upload", "filename", name, "size", size)
	return &domain.StoredUpload{Filename: name, Path: path, Size: size}, nil
}

func (s *LocalFileStore) create(name string) (*os.File, string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	return f, path, err
}

// Remove deletes path and reports whether a file was actually removed.
func (s *LocalFileStore) Remove(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if err := os.Remove(path); err != nil {
		s.logger.Error("Error deleting file", err, "path", path)
		return false
	}
	return true
}

// Resolve maps a stored filename to its path, refusing anything that is not a bare name.
func (s *LocalFileStore) Resolve(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return "", domain.ErrInvalidFilename
	}
	return filepath.Join(s.dir, filename), nil
}

// Exists reports whether path is a regular file.
func (s *LocalFileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// secureFilename reduces a client filename to a safe ASCII base name.
func secureFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = name[strings.LastIndex(name, "/")+1:]

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case r == '_' || r == '.' || r == '-' ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'):
			b.WriteRune(r)
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "._")
}
