package translator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/protocol"
)

func TestMotionRuleOrder(t *testing.T) {
	want := []protocol.Code{
		protocol.ForwardLeft, protocol.ForwardRight,
		protocol.BackwardLeft, protocol.BackwardRight,
		protocol.RotateLeft, protocol.RotateRight,
		protocol.EnterInsert,
		protocol.Forward, protocol.Backward, protocol.Stop,
		protocol.SpaceAction,
	}

	rules := MotionRules()
	got := make([]protocol.Code, len(rules))
	for i, r := range rules {
		got[i] = r.Code
	}
	assert.Equal(t, want, got)
}

func TestMotionRulesIsCopy(t *testing.T) {
	rules := MotionRules()
	rules[0].Keys[0] = "x"
	rules[0].Code = protocol.Stop

	r, ok := Evaluate(NewPressedKeySet("w", "a"))
	assert.True(t, ok)
	assert.Equal(t, protocol.ForwardLeft, r.Code)
}

func TestEvaluateAtMostOneMatch(t *testing.T) {
	universe := []key.ID{"w", "a", "s", "d", "i", "q", key.Space}

	// Every subset of the relevant keys resolves to the first matching rule
	for mask := 0; mask < 1<<len(universe); mask++ {
		var held []key.ID
		for i, id := range universe {
			if mask&(1<<i) != 0 {
				held = append(held, id)
			}
		}
		set := NewPressedKeySet(held...)

		r, ok := Evaluate(set)
		if len(held) == 0 {
			assert.False(t, ok)
			continue
		}
		assert.True(t, ok, "held %v", held)

		for _, earlier := range motionRules {
			if earlier.Code == r.Code {
				break
			}
			assert.False(t, earlier.Matches(set), "held %v: %s should have won", held, earlier.Code)
		}
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	_, ok := Evaluate(NewPressedKeySet("z", ",", key.Escape))
	assert.False(t, ok)
}

func TestPressedKeySet(t *testing.T) {
	var s PressedKeySet
	assert.False(t, s.Contains("w"))
	assert.False(t, s.Remove("w"))

	s.Add("w")
	s.Add("w")
	s.Add("a")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.ContainsAll("a", "w"))
	assert.False(t, s.ContainsAll("a", "s"))
	assert.Equal(t, []key.ID{"a", "w"}, s.Slice())

	assert.True(t, s.Remove("w"))
	assert.False(t, s.Contains("w"))
	assert.Equal(t, 1, s.Len())
}

func TestDebounceStateAllow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var d DebounceState

	// Zero state behaves as a past forward adjustment
	assert.True(t, d.Allow(Slower, base, DefaultDebounceWindow))
	assert.True(t, d.Allow(Faster, base, DefaultDebounceWindow))

	d.Record(Slower, base)
	assert.False(t, d.Allow(Slower, base.Add(99*time.Millisecond), DefaultDebounceWindow))
	assert.True(t, d.Allow(Slower, base.Add(100*time.Millisecond), DefaultDebounceWindow))
	assert.True(t, d.Allow(Faster, base.Add(time.Millisecond), DefaultDebounceWindow))

	assert.Equal(t, "slower", Slower.String())
	assert.Equal(t, "faster", Faster.String())
}
