package translator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/input/mode"
	"github.com/dshills/keydrive/internal/protocol"
)

// recordingSink keeps every command it receives.
type recordingSink struct {
	mu   sync.Mutex
	cmds []protocol.Command
}

func (s *recordingSink) Send(cmd protocol.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
}

func (s *recordingSink) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cmds))
	for i, c := range s.cmds {
		out[i] = string(c)
	}
	s.cmds = nil
	return out
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTranslator() (*Translator, *recordingSink, *fakeClock) {
	sink := &recordingSink{}
	clock := newFakeClock()
	return New(sink, WithClock(clock.Now)), sink, clock
}

func TestPressSingleMotionKeys(t *testing.T) {
	tests := []struct {
		key  key.ID
		want string
	}{
		{"w", "C21FE"},
		{"s", "C21BE"},
		{"a", "C21ZE"},
		{"d", "C21XE"},
		{"q", "C21SE"},
		{key.Space, "C21 E"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			tr, sink, _ := newTestTranslator()
			got := tr.Press(tt.key)
			assert.Equal(t, []string{tt.want}, sink.take())
			assert.Equal(t, []protocol.Command{protocol.Command(tt.want)}, got)
		})
	}
}

func TestPressCombinationPriority(t *testing.T) {
	tests := []struct {
		name string
		held []key.ID
		want string
	}{
		{"forward-left", []key.ID{"w", "a"}, "C21LE"},
		{"forward-right", []key.ID{"w", "d"}, "C21RE"},
		{"backward-left", []key.ID{"s", "a"}, "C21lE"},
		{"backward-right", []key.ID{"s", "d"}, "C21rE"},
		{"wad picks rule one", []key.ID{"w", "a", "d"}, "C21LE"},
		{"sad picks rule three", []key.ID{"s", "d", "a"}, "C21lE"},
		{"rotation beats insert", []key.ID{"a", "i"}, "C21ZE"},
		{"insert beats forward", []key.ID{"w", "i"}, "C21IE"},
		{"forward beats backward", []key.ID{"s", "w"}, "C21FE"},
		{"backward beats stop", []key.ID{"q", "s"}, "C21BE"},
		{"stop beats space", []key.ID{key.Space, "q"}, "C21SE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, sink, _ := newTestTranslator()
			for _, k := range tt.held[:len(tt.held)-1] {
				tr.Press(k)
			}
			sink.take()

			tr.Press(tt.held[len(tt.held)-1])
			assert.Equal(t, []string{tt.want}, sink.take())
		})
	}
}

func TestPressUnknownKeyEmitsNothing(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	assert.Empty(t, tr.Press("z"))
	assert.Empty(t, tr.Press(key.Enter))
	assert.Empty(t, sink.take())
	assert.ElementsMatch(t, []key.ID{"z", key.Enter}, tr.Pressed())
}

func TestUnknownKeyReevaluatesHeldSet(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press("w")
	tr.Press("z")
	assert.Equal(t, []string{"C21FE", "C21FE"}, sink.take())
}

func TestReleaseNeverEmits(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press("w")
	tr.Press("a")
	sink.take()

	tr.Release("a")
	tr.Release("w")
	tr.Release("x")

	assert.Empty(t, sink.take())
	assert.Empty(t, tr.Pressed())
	assert.Nil(t, tr.Handle(key.NewRelease("w")))
}

func TestReleaseChangesNextCycle(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press("w")
	tr.Press("a")
	tr.Release("a")
	tr.Press("w")

	assert.Equal(t, []string{"C21FE", "C21LE", "C21FE"}, sink.take())
}

func TestModifierSidesHeldIndependently(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press("i")
	tr.Release("i")
	sink.take()

	tr.Press(key.ShiftLeft)
	tr.Press(key.ShiftRight)
	tr.Release(key.ShiftRight)

	assert.True(t, tr.IsPressed(key.ShiftLeft))
	assert.False(t, tr.IsPressed(key.ShiftRight))
	assert.Equal(t, []string{"C22shift_lE", "C22shift_rE"}, sink.take())

	tr.Release(key.ShiftLeft)
	assert.Empty(t, tr.Pressed())
}

func TestDuplicatePressReemits(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press("w")
	tr.Press("w")
	tr.Press("w")

	assert.Equal(t, []string{"C21FE", "C21FE", "C21FE"}, sink.take())
	assert.Equal(t, []key.ID{"w"}, tr.Pressed())
}

func TestEnterInsertMode(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press("i")
	assert.Equal(t, []string{"C21IE"}, sink.take())
	assert.Equal(t, mode.Insert, tr.Mode())

	tr.Release("i")
	tr.Press("x")
	assert.Equal(t, []string{"C22xE"}, sink.take())
}

func TestInsertModeRelay(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press("i")
	tr.Release("i")
	sink.take()

	tr.Press("w")
	tr.Release("w")
	tr.Press(",")
	tr.Release(",")
	tr.Press(key.Space)
	tr.Release(key.Space)
	tr.Press(key.Enter)
	tr.Release(key.Enter)

	assert.Equal(t, []string{"C22wE", "C22,E", "C22 E", "C22enterE"}, sink.take())
	assert.Equal(t, mode.Insert, tr.Mode())
}

func TestInsertSpaceHeldWins(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press("i")
	tr.Release("i")
	sink.take()

	tr.Press(key.Space)
	tr.Press("x")

	assert.Equal(t, []string{"C22 E", "C22 E"}, sink.take())
}

func TestHeldIKeyRelayedInInsert(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press("i")
	tr.Press("i")

	assert.Equal(t, []string{"C21IE", "C22iE"}, sink.take())
}

func TestExitInsertMode(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press("i")
	tr.Release("i")
	sink.take()

	tr.Press(key.Escape)
	assert.Equal(t, []string{"C22\x00E"}, sink.take())
	assert.Equal(t, mode.Normal, tr.Mode())

	tr.Release(key.Escape)
	tr.Press("w")
	assert.Equal(t, []string{"C21FE"}, sink.take())
}

func TestEscapeHeldWinsOverSpace(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press("i")
	tr.Release("i")
	tr.Press(key.Space)
	sink.take()

	tr.Press(key.Escape)
	assert.Equal(t, []string{"C22\x00E"}, sink.take())
	assert.Equal(t, mode.Normal, tr.Mode())
}

func TestEscapeInNormalModeIgnored(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	tr.Press(key.Escape)
	assert.Empty(t, sink.take())
	assert.Equal(t, mode.Normal, tr.Mode())
}

func TestInsertModeSkipsSpeedRule(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press(",")
	tr.Press("i")
	sink.take()

	tr.Press(".")
	assert.Equal(t, []string{"C22.E"}, sink.take())
}

func TestSpeedDebounceSameDirection(t *testing.T) {
	tr, sink, clock := newTestTranslator()

	tr.Press(",")
	clock.Advance(50 * time.Millisecond)
	tr.Press(",")

	assert.Equal(t, []string{"C21,E"}, sink.take())
	assert.Equal(t, uint64(1), tr.Stats().SpeedSuppressed)

	clock.Advance(50 * time.Millisecond)
	tr.Press(",")
	assert.Equal(t, []string{"C21,E"}, sink.take())
}

func TestSpeedDebounceReversalBypass(t *testing.T) {
	tr, sink, clock := newTestTranslator()

	tr.Press(",")
	clock.Advance(50 * time.Millisecond)
	tr.Press(",")
	tr.Release(",")
	tr.Press(".")

	assert.Equal(t, []string{"C21,E", "C21.E"}, sink.take())

	// Same direction again inside the window is throttled
	clock.Advance(10 * time.Millisecond)
	tr.Press(".")
	assert.Empty(t, sink.take())

	// And reversing back is immediate
	tr.Release(".")
	tr.Press(",")
	assert.Equal(t, []string{"C21,E"}, sink.take())
}

func TestSpeedFirstPressAlwaysFires(t *testing.T) {
	tr, sink, _ := newTestTranslator()
	tr.Press(".")
	assert.Equal(t, []string{"C21.E"}, sink.take())

	tr2, sink2, _ := newTestTranslator()
	tr2.Press(",")
	assert.Equal(t, []string{"C21,E"}, sink2.take())
}

func TestSlowerWinsWhenBothHeld(t *testing.T) {
	tr, sink, clock := newTestTranslator()

	tr.Press(".")
	clock.Advance(200 * time.Millisecond)
	tr.Press(",")

	assert.Equal(t, []string{"C21.E", "C21,E"}, sink.take())
	assert.Equal(t, Slower, tr.Debounce().LastDirection)
}

func TestMotionAndSpeedDualEmission(t *testing.T) {
	tr, sink, clock := newTestTranslator()

	tr.Press("w")
	clock.Advance(time.Second)
	got := tr.Press(".")

	assert.Equal(t, []string{"C21FE", "C21FE", "C21.E"}, sink.take())
	assert.Equal(t, []protocol.Command{"C21FE", "C21.E"}, got)
}

func TestHeldSpeedKeyRepeatsOnOtherPresses(t *testing.T) {
	tr, sink, clock := newTestTranslator()

	tr.Press(".")
	clock.Advance(150 * time.Millisecond)
	tr.Press("w")
	clock.Advance(20 * time.Millisecond)
	tr.Press("a")

	assert.Equal(t, []string{"C21.E", "C21FE", "C21.E", "C21LE"}, sink.take())
}

func TestDebounceWindowOption(t *testing.T) {
	sink := &recordingSink{}
	clock := newFakeClock()
	tr := New(sink, WithClock(clock.Now), WithDebounceWindow(0))

	tr.Press(",")
	tr.Press(",")
	assert.Equal(t, []string{"C21,E", "C21,E"}, sink.take())
}

func TestModeObserver(t *testing.T) {
	var seen []string
	tr := New(nil, WithModeObserver(func(from, to mode.Mode) {
		seen = append(seen, from.String()+">"+to.String())
	}))

	tr.Press("i")
	tr.Release("i")
	tr.Press(key.Escape)

	assert.Equal(t, []string{"normal>insert", "insert>normal"}, seen)
}

func TestHandleDispatch(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	assert.Equal(t, []protocol.Command{"C21SE"}, tr.Handle(key.NewPress("q")))
	tr.Handle(key.NewRelease("q"))
	assert.Nil(t, tr.Handle(key.Event{Key: "w"}))
	assert.Nil(t, tr.Handle(key.NewPress(key.None)))

	assert.Equal(t, []string{"C21SE"}, sink.take())
	assert.False(t, tr.IsPressed("q"))

	st := tr.Stats()
	assert.Equal(t, uint64(1), st.Presses)
	assert.Equal(t, uint64(1), st.Releases)
	assert.Equal(t, uint64(1), st.Commands)
}

func TestEmittedCommandsDecode(t *testing.T) {
	tr, sink, clock := newTestTranslator()
	seq := []key.Event{
		key.NewPress("w"), key.NewPress("a"), key.NewRelease("a"),
		key.NewPress(","), key.NewRelease(","), key.NewPress("."),
		key.NewPress("i"), key.NewPress("x"), key.NewPress(key.Space),
		key.NewPress(key.Escape),
	}
	for _, ev := range seq {
		clock.Advance(5 * time.Millisecond)
		tr.Handle(ev)
	}

	cmds := sink.take()
	require.NotEmpty(t, cmds)
	for _, c := range cmds {
		d, err := protocol.Decode(c)
		require.NoError(t, err, "%q", c)
		assert.Equal(t, protocol.Command(c), d.Encode())
	}
}

func TestConcurrentPresses(t *testing.T) {
	tr, sink, _ := newTestTranslator()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Press("q")
				tr.Release("q")
			}
		}()
	}
	wg.Wait()

	assert.Len(t, sink.take(), 800)
	assert.Equal(t, uint64(800), tr.Stats().Presses)
}
