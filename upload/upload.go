// Package upload validates label image uploads and stores them.
package upload

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/purecheck/errdefs"
	"github.com/bububa/purecheck/schema"
)

// DefaultMaxBytes is the default upload size limit, 16 MiB
const DefaultMaxBytes int64 = 16 << 20

// DefaultAllowed are the default accepted image extensions
var DefaultAllowed = []string{"png", "jpg", "jpeg", "gif", "webp"}

// AllowedFile reports whether filename has an extension separator and its last suffix,
// lowercased, is in allowed. allowed is compared case-insensitively. Only the last
// suffix counts, so "label.exe.jpg" is accepted and "label.jpg.exe" is not.
func AllowedFile(filename string, allowed []string) bool {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, v := range allowed {
		if strings.ToLower(v) == ext {
			return true
		}
	}
	return false
}

// Validator gates uploads before any external call
type Validator struct {
	Allowed  []string
	MaxBytes int64
	// SniffContent rejects bodies whose detected MIME type is not an image
	SniffContent bool
	// SingleExtension rejects filenames with more than one dot, e.g. "label.exe.jpg"
	SingleExtension bool
}

// NewValidator returns a Validator with the default limits and sniffing on
func NewValidator() *Validator {
	return &Validator{
		Allowed:      DefaultAllowed,
		MaxBytes:     DefaultMaxBytes,
		SniffContent: true,
	}
}

// Validate checks the filename and body of an upload and returns it as an Image
func (v *Validator) Validate(filename string, data []byte) (schema.Image, error) {
	const op = "upload.Validate"
	if strings.TrimSpace(filename) == "" {
		return schema.Image{}, errdefs.Validation(op, "No file selected")
	}
	if !AllowedFile(filename, v.Allowed) || (v.SingleExtension && strings.Count(filename, ".") > 1) {
		return schema.Image{}, errdefs.Validation(op, "Invalid file type. Please upload PNG, JPG, JPEG, GIF, or WEBP")
	}
	if len(data) == 0 {
		return schema.Image{}, errdefs.Validation(op, "Empty file")
	}
	if v.MaxBytes > 0 && int64(len(data)) > v.MaxBytes {
		return schema.Image{}, errdefs.Validation(op, fmt.Sprintf("File too large, the limit is %d MB", v.MaxBytes>>20))
	}
	mime := mimetype.Detect(data)
	if v.SniffContent && !strings.HasPrefix(mime.String(), "image/") {
		return schema.Image{}, errdefs.Validation(op, "File content is not an image")
	}
	return schema.Image{Data: data, MIME: mime.String()}, nil
}
