// Package local implements media.Library over a directory on disk.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmorneau/marinspect/internal/domain"
	"github.com/dmorneau/marinspect/internal/media"
)

// sniffLen is how many leading bytes are read for MIME detection, matching
// net/http.DetectContentType.
const sniffLen = 512

type LocalLibrary struct {
	basePath string
}

func NewLocalLibrary(basePath string) (*LocalLibrary, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat media directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media path %s is not a directory", basePath)
	}
	return &LocalLibrary{basePath: basePath}, nil
}

// Open resolves uri under the library root, rejects unsupported formats, and
// returns the file positioned at the start together with its MIME type.
func (l *LocalLibrary) Open(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	path, err := l.safeJoin(uri)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, "", fmt.Errorf("%s: %w", uri, domain.ErrNotFound)
		case os.IsPermission(err):
			return nil, "", fmt.Errorf("%s: %w", uri, domain.ErrPermissionDenied)
		default:
			return nil, "", fmt.Errorf("failed to open media: %w", err)
		}
	}

	header := make([]byte, sniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to read media header: %w", err)
	}

	mimeType, ok := media.SniffMIME(header[:n])
	if !ok {
		_ = f.Close()
		return nil, "", fmt.Errorf("%s: unsupported image format", uri)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to rewind media: %w", err)
	}

	return f, mimeType, nil
}

// safeJoin resolves uri relative to basePath and rejects directory traversal.
// Absolute paths are accepted only when they fall under the library root.
func (l *LocalLibrary) safeJoin(uri string) (string, error) {
	absBase, err := filepath.Abs(l.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	target := uri
	if !filepath.IsAbs(target) {
		target = filepath.Join(l.basePath, target)
	}
	absPath, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("media path escapes library root")
	}
	return absPath, nil
}
