package playback

import (
	"sync"
	"time"
)

// Clock supplies the current time to the stateful components. Injectable so
// tests can drive exact instants.
type Clock func() time.Time

// Session is the single shared playback record visible to all clients.
// It is either idle (all fields unset) or playing (all fields set); the two
// states are never mixed. All transitions run under one mutex so that two
// concurrent starts can never both succeed.
//
// A finished session is cleared lazily: every operation first applies expiry
// against the injected clock. There is no background timer.
type Session struct {
	mu    sync.Mutex
	clock Clock

	filename    string
	startTime   time.Time
	expectedEnd time.Time
}

// Snapshot is a consistent read of a playing session.
type Snapshot struct {
	Filename string
	Elapsed  float64 // seconds since playback began
}

// NewSession returns an idle session. A nil clock defaults to time.Now.
func NewSession(clock Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{clock: clock}
}

// Start transitions the session from idle to playing. It fails with
// ErrSessionActive, without mutating anything, if a video is already playing
// (after lazy expiry has been applied).
func (s *Session) Start(filename string, duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.expireLocked(now)

	if s.filename != "" {
		return ErrSessionActive
	}

	s.filename = filename
	s.startTime = now
	s.expectedEnd = now.Add(time.Duration(duration * float64(time.Second)))
	return nil
}

// End force-stops the current playback. Idempotent: ending an idle session is
// a no-op.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Snapshot returns the playing session's filename and elapsed seconds.
// ok is false when the session is idle (including when it expired just now).
func (s *Session) Snapshot() (snap Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.expireLocked(now)

	if s.filename == "" {
		return Snapshot{}, false
	}
	return Snapshot{
		Filename: s.filename,
		Elapsed:  now.Sub(s.startTime).Seconds(),
	}, true
}

// ActiveFilename returns the filename of the playing video, or ErrNoVideo
// when idle.
func (s *Session) ActiveFilename() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(s.clock())

	if s.filename == "" {
		return "", ErrNoVideo
	}
	return s.filename, nil
}

// Playing reports whether a video is currently playing. Used for metrics.
func (s *Session) Playing() bool {
	_, ok := s.Snapshot()
	return ok
}

// expireLocked clears the session when playback time has run out.
// Caller must hold s.mu. Expiry is evaluated before every state inspection so
// a finished video is never served as still playing.
func (s *Session) expireLocked(now time.Time) {
	if s.filename == "" {
		return
	}
	if !now.Before(s.expectedEnd) {
		s.clearLocked()
	}
}

// clearLocked resets all fields to idle. Caller must hold s.mu.
func (s *Session) clearLocked() {
	s.filename = ""
	s.startTime = time.Time{}
	s.expectedEnd = time.Time{}
}
