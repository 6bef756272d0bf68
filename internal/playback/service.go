package playback

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

// Prober extracts the playback duration, in seconds, of a media file on disk.
// Implementations may also verify structural integrity; any failure rejects
// the upload.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// PlayCounter is the durable monotonic count of videos played.
type PlayCounter interface {
	Increment(ctx context.Context) error
}

// Service orchestrates an upload: validate, persist, probe, then start the
// shared session. It owns the rollback of written bytes on every failed path.
type Service struct {
	session *Session
	store   Store
	prober  Prober
	counter PlayCounter
	log     *slog.Logger
}

// NewService wires the coordinator. counter may be nil to disable the play
// counter (e.g. in tests).
func NewService(session *Session, store Store, prober Prober, counter PlayCounter, log *slog.Logger) *Service {
	return &Service{
		session: session,
		store:   store,
		prober:  prober,
		counter: counter,
		log:     log,
	}
}

// Session returns the shared session record.
func (s *Service) Session() *Session {
	return s.session
}

// Upload validates and persists an incoming video, probes its duration, and
// starts playback. On any failure after the bytes were written, the written
// file is removed again; no partial session state is ever observable.
//
// Failure modes: *ValidationError (bad extension or content type, nothing
// written), ErrSessionActive (a video is already playing), *ProbeError
// (corrupt file or no video track, written bytes cleaned up).
func (s *Service) Upload(ctx context.Context, filename, contentType string, body io.Reader) (UploadResult, error) {
	// Early conflict check so a doomed upload writes no bytes. The
	// authoritative check is the one inside Session.Start: of two racing
	// uploads that both pass here, exactly one will start.
	if _, err := s.session.ActiveFilename(); err == nil {
		return UploadResult{}, ErrSessionActive
	}

	if err := ValidateUpload(filename, contentType); err != nil {
		return UploadResult{}, err
	}

	name := filepath.Base(filename)
	path, err := s.store.Save(name, body)
	if err != nil {
		return UploadResult{}, err
	}

	duration, err := s.prober.Probe(ctx, path)
	if err != nil {
		s.removeStored(name)
		return UploadResult{}, &ProbeError{Reason: err.Error()}
	}

	if err := s.session.Start(name, duration); err != nil {
		// Lost the race against a concurrent upload.
		s.removeStored(name)
		return UploadResult{}, err
	}

	if s.counter != nil {
		// The session is already running; a broken counter should not fail
		// the upload.
		if err := s.counter.Increment(ctx); err != nil {
			s.log.Error("play counter increment failed", slog.String("error", err.Error()))
		}
	}

	s.log.Info("video uploaded",
		slog.String("filename", name),
		slog.Float64("duration", duration),
	)
	return UploadResult{Filename: name, Duration: duration}, nil
}

// End force-stops the current playback. Idempotent.
func (s *Service) End() {
	s.session.End()
}

// ResolvePath returns the storage path and filename of the playing video, or
// ErrNoVideo when idle.
func (s *Service) ResolvePath() (path, filename string, err error) {
	filename, err = s.session.ActiveFilename()
	if err != nil {
		return "", "", err
	}
	return s.store.Path(filename), filename, nil
}

func (s *Service) removeStored(name string) {
	if err := s.store.Remove(name); err != nil {
		s.log.Error("cleanup of rejected upload failed",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
	}
}
