package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload categories. Each category maps to a subdirectory under the base
// dir and is served at /uploads/<category>/<filename>.
const (
	CategoryNIC      = "nic"
	CategoryBR       = "br"
	CategoryForm1    = "form1"
	CategoryBanner   = "banner"
	CategoryFacility = "facility"
	CategoryMedical  = "medical"
	CategoryProfile  = "profile"
	CategorySlip     = "slips"
)

var (
	// ErrFileTooLarge indicates the file exceeds the per-category size cap
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")

	// ErrUnsupportedType indicates the file extension is not accepted for the category
	ErrUnsupportedType = errors.New("unsupported file type")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Saver persists multipart uploads to the local filesystem and returns
// web-relative paths for storage in entity rows.
type Saver struct {
	baseDir       string
	maxImageBytes int64
	maxDocBytes   int64
}

// NewSaver creates a Saver rooted at baseDir with per-file size caps in MB
func NewSaver(baseDir string, maxImageMB, maxDocMB int64) *Saver {
	return &Saver{
		baseDir:       baseDir,
		maxImageBytes: maxImageMB * 1024 * 1024,
		maxDocBytes:   maxDocMB * 1024 * 1024,
	}
}

// Save validates and writes one uploaded file, returning its web-relative
// path (/uploads/<category>/<filename>). The stored filename is a random
// UUID so client-supplied names never reach the filesystem.
func (s *Saver) Save(fh *multipart.FileHeader, category string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))

	if err := s.checkLimits(ext, category, fh.Size); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/uploads/" + category + "/" + filename, nil
}

// checkLimits enforces the per-category extension and size rules
func (s *Saver) checkLimits(ext, category string, size int64) error {
	switch category {
	case CategoryBR, CategorySlip:
		// Documents may be images or PDFs
		if ext == ".pdf" {
			if size > s.maxDocBytes {
				return ErrFileTooLarge
			}
			return nil
		}
		fallthrough
	default:
		if !imageExtensions[ext] {
			return ErrUnsupportedType
		}
		if size > s.maxImageBytes {
			return ErrFileTooLarge
		}
		return nil
	}
}

// Cleanup removes previously saved files by their web-relative paths.
// Best-effort: a failed removal is returned but callers are expected to
// log and continue, not fail the request.
func (s *Saver) Cleanup(webPaths []string) error {
	var firstErr error
	for _, p := range webPaths {
		rel, ok := strings.CutPrefix(p, "/uploads/")
		if !ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BaseDir returns the filesystem directory uploads are written to
func (s *Saver) BaseDir() string {
	return s.baseDir
}
