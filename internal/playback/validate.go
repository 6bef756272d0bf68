package playback

import (
	"fmt"
	"path/filepath"
	"strings"
)

// allowedTypes maps accepted video file extensions to the content type a
// client is expected to declare for them.
var allowedTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

// ValidateUpload checks the filename extension against the allow-list and,
// when a content type was declared, that it matches the expected one for that
// extension. The content-type check is best effort: an empty declared type is
// not an error. Pure function, no side effects.
func ValidateUpload(filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	expected, ok := allowedTypes[ext]
	if !ok {
		return &ValidationError{Reason: fmt.Sprintf("unsupported extension %q", ext)}
	}
	if contentType != "" && contentType != expected {
		return &ValidationError{
			Reason: fmt.Sprintf("wrong content-type %q, expected %q", contentType, expected),
		}
	}
	return nil
}
