// Package imageenc turns image files into inline data URLs for archive
// attachments and avatars.
package imageenc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

// Default size limits.
const (
	ArchiveMaxBytes int64 = 10 * 1024 * 1024
	AvatarMaxBytes  int64 = 5 * 1024 * 1024
)

// Encoder validates and encodes images up to MaxBytes.
type Encoder struct {
	MaxBytes int64
}

// New returns an encoder with the given limit; non-positive limits use ArchiveMaxBytes.
func New(maxBytes int64) Encoder {
	if maxBytes <= 0 {
		maxBytes = ArchiveMaxBytes
	}
	return Encoder{MaxBytes: maxBytes}
}

// Encode reads r fully and returns data:<mime>;base64,<payload>.
func (e Encoder) Encode(r io.Reader) (string, error) {
	limit := e.MaxBytes
	if limit <= 0 {
		limit = ArchiveMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return "", appErrors.Clone(appErrors.ErrImageTooLarge, "image exceeds "+humanSize(limit))
	}
	return EncodeBytes(data)
}

// EncodeFile opens path and encodes it.
func (e Encoder) EncodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return e.Encode(f)
}

// EncodeBytes encodes data without a size check. The content must sniff as image/*.
func EncodeBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", appErrors.ErrUnsupportedImage
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", appErrors.Clone(appErrors.ErrUnsupportedImage, fmt.Sprintf("file is not an image (%s)", mime.String()))
	}
	var buf bytes.Buffer
	buf.Grow(len("data:;base64,") + len(mime.String()) + base64.StdEncoding.EncodedLen(len(data)))
	buf.WriteString("data:")
	buf.WriteString(baseType(mime.String()))
	buf.WriteString(";base64,")
	buf.WriteString(base64.StdEncoding.EncodeToString(data))
	return buf.String(), nil
}

// IsDataURL reports whether s is already an inline data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

func baseType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return mime[:i]
	}
	return mime
}

func humanSize(n int64) string {
	if n >= 1024*1024 && n%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", n/(1024*1024))
	}
	if n >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	}
	return fmt.Sprintf("%dB", n)
}

// CheckDataURL validates an inline image that was encoded elsewhere. Values
// that are not data URLs are plain references and pass unchecked.
func (e Encoder) CheckDataURL(s string) error {
	if !IsDataURL(s) {
		return nil
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
		return appErrors.Clone(appErrors.ErrUnsupportedImage, "malformed data URL")
	}
	limit := e.MaxBytes
	if limit <= 0 {
		limit = ArchiveMaxBytes
	}
	payload := s[comma+1:]
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > limit+2 {
		return appErrors.Clone(appErrors.ErrImageTooLarge, "image exceeds "+humanSize(limit))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return appErrors.Clone(appErrors.ErrUnsupportedImage, "malformed data URL")
	}
	if int64(len(data)) > limit {
		return appErrors.Clone(appErrors.ErrImageTooLarge, "image exceeds "+humanSize(limit))
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return appErrors.ErrUnsupportedImage
	}
	return nil
}
