package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultViewerTTL is how long a viewer counts as present after its last ping.
const DefaultViewerTTL = 15 * time.Second

// Tracker approximates the number of concurrent viewers: a time-windowed set
// of recently seen client identifiers. Entries are evicted lazily whenever the
// count is read; there is no background sweep. Two clients sharing one derived
// id (e.g. behind the same NAT address) under-count, which is accepted.
type Tracker struct {
	mu    sync.Mutex
	clock Clock
	ttl   time.Duration
	seen  map[string]time.Time
}

// NewTracker returns a tracker with the given staleness window. A ttl <= 0
// defaults to DefaultViewerTTL, a nil clock to time.Now.
func NewTracker(ttl time.Duration, clock Clock) *Tracker {
	if ttl <= 0 {
		ttl = DefaultViewerTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		clock: clock,
		ttl:   ttl,
		seen:  make(map[string]time.Time),
	}
}

// Touch records (or refreshes) the last-seen time for id and returns the id
// actually recorded. An empty id gets a synthetic one so the ping still counts.
func (t *Tracker) Touch(id string) string {
	if id == "" {
		id = uuid.NewString()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[id] = t.clock()
	return id
}

// Count evicts every entry older than the staleness window, then returns the
// remaining cardinality.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	for id, last := range t.seen {
		if now.Sub(last) > t.ttl {
			delete(t.seen, id)
		}
	}
	return len(t.seen)
}
