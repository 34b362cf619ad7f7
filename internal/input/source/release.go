package source

import (
	"sort"
	"time"

	"github.com/dshills/keydrive/internal/input/key"
)

// DefaultReleaseTimeout is longer than the usual 500ms autorepeat delay,
// so a held key is not released between its first press and first repeat.
const DefaultReleaseTimeout = 600 * time.Millisecond

// releaseTracker infers key releases from the gaps between presses.
type releaseTracker struct {
	timeout  time.Duration
	lastSeen map[key.ID]time.Time
}

func newReleaseTracker(timeout time.Duration) *releaseTracker {
	if timeout <= 0 {
		timeout = DefaultReleaseTimeout
	}
	return &releaseTracker{
		timeout:  timeout,
		lastSeen: make(map[key.ID]time.Time),
	}
}

// seen records a press and reports whether the key was not already held.
func (r *releaseTracker) seen(id key.ID, now time.Time) bool {
	_, held := r.lastSeen[id]
	r.lastSeen[id] = now
	return !held
}

// expire returns, sorted, the keys silent for at least the timeout and forgets them.
func (r *releaseTracker) expire(now time.Time) []key.ID {
	var out []key.ID
	for id, t := range r.lastSeen {
		if now.Sub(t) >= r.timeout {
			out = append(out, id)
			delete(r.lastSeen, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// drain releases every held key.
func (r *releaseTracker) drain() []key.ID {
	out := make([]key.ID, 0, len(r.lastSeen))
	for id := range r.lastSeen {
		out = append(out, id)
	}
	clear(r.lastSeen)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// held returns the number of keys considered held.
func (r *releaseTracker) held() int {
	return len(r.lastSeen)
}
