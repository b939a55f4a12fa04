// Package media abstracts the picker surface: opening user-selected images
// by their opaque reference and identifying their format.
package media

import (
	"context"
	"io"
	"net/http"
)

// Library provides read access to picked media. Open returns the content and
// the detected MIME type. A refused source yields domain.ErrPermissionDenied;
// a missing one yields domain.ErrNotFound.
type Library interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, string, error)
}

// allowedImageTypes is the set of MIME types accepted for inspection images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// SniffMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func SniffMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}
