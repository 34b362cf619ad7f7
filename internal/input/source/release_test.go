package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/keydrive/internal/input/key"
)

func TestReleaseTracker_Seen(t *testing.T) {
	r := newReleaseTracker(time.Second)
	now := time.Unix(100, 0)

	assert.True(t, r.seen("w", now), "first press is new")
	assert.False(t, r.seen("w", now.Add(100*time.Millisecond)), "repeat is not new")
	assert.True(t, r.seen("a", now), "other key is new")
	assert.Equal(t, 2, r.held())
}

func TestReleaseTracker_Expire(t *testing.T) {
	r := newReleaseTracker(500 * time.Millisecond)
	start := time.Unix(100, 0)

	r.seen("w", start)
	r.seen("d", start)
	r.seen("a", start.Add(400*time.Millisecond))

	assert.Empty(t, r.expire(start.Add(499*time.Millisecond)))

	got := r.expire(start.Add(500 * time.Millisecond))
	assert.Equal(t, []key.ID{"d", "w"}, got)
	assert.Equal(t, 1, r.held())

	// Repeat keeps a key alive
	r.seen("a", start.Add(800*time.Millisecond))
	assert.Empty(t, r.expire(start.Add(1200*time.Millisecond)))
	assert.Equal(t, []key.ID{"a"}, r.expire(start.Add(1300*time.Millisecond)))
	assert.Equal(t, 0, r.held())
}

func TestReleaseTracker_Drain(t *testing.T) {
	r := newReleaseTracker(0)
	assert.Equal(t, DefaultReleaseTimeout, r.timeout)

	now := time.Now()
	r.seen("s", now)
	r.seen(key.Space, now)

	assert.Equal(t, []key.ID{"s", key.Space}, r.drain())
	assert.Equal(t, 0, r.held())
	assert.Empty(t, r.drain())
}
