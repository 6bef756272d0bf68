package playback

import (
	"errors"
	"fmt"
)

// StatusIdle and StatusPlaying are the two values of the "status" field.
const (
	StatusIdle    = "idle"
	StatusPlaying = "playing"
)

// Status is the JSON payload for GET /status while a video is playing.
// The idle payload carries only the status field.
type Status struct {
	Status   string  `json:"status"`
	Filename string  `json:"filename"`
	Elapsed  float64 `json:"elapsed"`
	Viewers  int     `json:"viewers"`
}

// UploadResult describes a successfully started upload.
type UploadResult struct {
	Filename string
	Duration float64 // seconds
}

var (
	// ErrSessionActive is returned when an upload arrives while a video is
	// already playing. Maps to 409.
	ErrSessionActive = errors.New("a video is already playing")

	// ErrNoVideo is returned by queries against an idle session. Maps to 404.
	ErrNoVideo = errors.New("no video playing")
)

// ValidationError rejects an upload before any bytes are written. Maps to 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ProbeError rejects an upload whose media file could not be probed (corrupt
// file or missing video track). The written bytes have already been cleaned
// up by the time this is returned. Maps to 400.
type ProbeError struct {
	Reason string
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe failed: %s", e.Reason)
}
