// Package media shells out to ffmpeg/ffprobe to validate uploaded files and
// extract their playback duration.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ErrToolNotFound means neither an explicit path, PATH lookup, nor the known
// install locations yielded the decoding tool. This is a configuration error:
// the process should refuse to start rather than fail every upload.
var ErrToolNotFound = errors.New("ffmpeg not found; install it or set FFMPEG_PATH")

// ErrNoVideoTrack means the container holds no video track with a duration.
var ErrNoVideoTrack = errors.New("no video track found")

// ScanError carries the decoder's diagnostic output for a corrupt file.
type ScanError struct {
	Detail string
}

func (e *ScanError) Error() string {
	return "video corruption detected: " + e.Detail
}

// FFmpegProber probes media files with a decode scan (ffmpeg) followed by a
// stream inspection (ffprobe). Tool paths are discovered once at construction
// and cached.
type FFmpegProber struct {
	ffmpeg  string
	ffprobe string
}

// NewFFmpegProber locates ffmpeg and ffprobe and returns a ready prober.
// Overrides take precedence over PATH lookup and the fixed fallback install
// locations; ffprobe is additionally derived from the ffmpeg directory when
// not otherwise resolvable. Returns ErrToolNotFound when discovery fails.
func NewFFmpegProber(ffmpegOverride, ffprobeOverride string) (*FFmpegProber, error) {
	ffmpeg, err := locate("ffmpeg", ffmpegOverride, exec.LookPath, os.Stat)
	if err != nil {
		return nil, err
	}

	ffprobe := siblingTool(ffprobeOverride, ffmpeg, "ffprobe", os.Stat)
	if ffprobe == "" {
		p, err := exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("%w (ffprobe missing next to %s)", ErrToolNotFound, ffmpeg)
		}
		ffprobe = p
	}

	return &FFmpegProber{ffmpeg: ffmpeg, ffprobe: ffprobe}, nil
}

// Probe runs the decode scan and then extracts the video duration in seconds.
// A corrupt file fails with *ScanError, a container without a usable video
// track with ErrNoVideoTrack.
func (p *FFmpegProber) Probe(ctx context.Context, path string) (float64, error) {
	if err := p.scan(ctx, path); err != nil {
		return 0, err
	}
	return p.duration(ctx, path)
}

// scan decodes the whole file to null output; any decoder diagnostic marks
// the file as corrupt.
func (p *FFmpegProber) scan(ctx context.Context, path string) error {
	// #nosec G204 -- the binary path is resolved once at startup and the
	// file path is under our own video directory.
	cmd := exec.CommandContext(ctx, p.ffmpeg, "-loglevel", "error", "-i", path, "-f", "null", "-")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 4096 {
			detail = detail[:4096] + "..."
		}
		if detail == "" {
			detail = err.Error()
		}
		return &ScanError{Detail: detail}
	}
	return nil
}

type probeData struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration,omitempty"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *FFmpegProber) duration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 -- see scan.
	cmd := exec.CommandContext(ctx, p.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return 0, &ScanError{Detail: detail}
	}

	var data probeData
	if err := json.Unmarshal(out, &data); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}

	var d float64
	hasVideo := false
	for _, s := range data.Streams {
		if s.CodecType != "video" {
			continue
		}
		hasVideo = true
		if s.Duration != "" {
			if v, err := strconv.ParseFloat(s.Duration, 64); err == nil && v > 0 {
				d = v
			}
		}
	}
	if !hasVideo {
		return 0, ErrNoVideoTrack
	}

	// Matroska/WebM typically keep the duration at container level only.
	if d == 0 && data.Format.Duration != "" {
		if v, err := strconv.ParseFloat(data.Format.Duration, 64); err == nil && v > 0 {
			d = v
		}
	}
	if d == 0 {
		return 0, ErrNoVideoTrack
	}
	return d, nil
}

// locate resolves a tool binary: explicit override, then PATH, then the fixed
// per-OS install locations.
func locate(tool, override string, lookPath func(string) (string, error), stat func(string) (os.FileInfo, error)) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		if fi, err := stat(override); err == nil && !fi.IsDir() {
			return override, nil
		}
		return "", fmt.Errorf("%w (override %q is not a file)", ErrToolNotFound, override)
	}

	if p, err := lookPath(tool); err == nil {
		return p, nil
	}

	for _, guess := range fallbackGuesses(tool) {
		if fi, err := stat(guess); err == nil && !fi.IsDir() {
			return guess, nil
		}
	}
	return "", ErrToolNotFound
}

// siblingTool resolves a companion binary: explicit override, else the file
// named tool next to base (e.g. .../ffmpeg -> .../ffprobe). Returns "" when
// neither resolves; the caller may fall back to PATH.
func siblingTool(override, base, tool string, stat func(string) (os.FileInfo, error)) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	if base == "" || !strings.ContainsAny(base, `/\`) {
		return ""
	}

	name := tool
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(base), name)
	if fi, err := stat(candidate); err == nil && !fi.IsDir() {
		return candidate
	}
	return ""
}

func fallbackGuesses(tool string) []string {
	if runtime.GOOS == "windows" {
		exe := tool + ".exe"
		var guesses []string
		if user := os.Getenv("USERPROFILE"); user != "" {
			guesses = append(guesses, filepath.Join(user, "AppData", "Local", "Microsoft", "WinGet", "Links", exe))
		}
		for _, pf := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)")} {
			if pf == "" {
				continue
			}
			guesses = append(guesses,
				filepath.Join(pf, "Gyan", "FFmpeg", "bin", exe),
				filepath.Join(pf, "ffmpeg", "bin", exe),
			)
		}
		return guesses
	}
	return []string{
		"/usr/local/bin/" + tool,
		"/usr/bin/" + tool,
		"/opt/homebrew/bin/" + tool,
		"/snap/bin/" + tool,
	}
}
