// Package uploads stores project images on local disk under random names
// and serves them back over HTTP.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/atelier-cms/atelier/internal/pkg/ctxlog"
)

// Upload describes a stored file.
type Upload struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Service writes uploaded files to a directory with uuid-derived names.
type Service struct {
	dir          string
	maxSizeBytes int64
	allowedTypes map[string]struct{}
}

func NewService(dir string, maxSizeBytes int64, allowedTypes []string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}

	return &Service{
		dir:          dir,
		maxSizeBytes: maxSizeBytes,
		allowedTypes: allowed,
	}, nil
}

// Store sniffs the content type from the first bytes of r, enforces the
// allow-list and size cap, and writes the file under a random name. The
// client-supplied filename and content type are never trusted.
func (s *Service) Store(ctx context.Context, r io.Reader) (*Upload, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := s.allowedTypes[contentType]; !ok {
		return nil, ErrUnsupportedType
	}

	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	// +1 so a stream exactly at the cap is distinguishable from one over it.
	limited := io.LimitReader(io.MultiReader(bytes.NewReader(head), r), s.maxSizeBytes+1)
	size, err := io.Copy(file, limited)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.remove(ctx, path)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if size > s.maxSizeBytes {
		s.remove(ctx, path)
		return nil, ErrFileTooLarge
	}

	return &Upload{
		Filename: filename,
		URL:      "/uploads/" + filename,
		Size:     size,
		Type:     contentType,
	}, nil
}

func (s *Service) remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		ctxlog.FromContext(ctx).Warn("failed to remove upload", "path", path, "error", err)
	}
}

// Dir returns the directory served under /uploads/.
func (s *Service) Dir() string {
	return s.dir
}
