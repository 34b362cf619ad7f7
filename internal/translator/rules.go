package translator

import (
	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/protocol"
)

// Rule maps a key combination to a normal-mode command code.
type Rule struct {
	// Keys must all be held for the rule to match.
	Keys []key.ID

	// Code is the command emitted on match.
	Code protocol.Code
}

// Matches returns true if every key of the rule is held.
func (r Rule) Matches(pressed PressedKeySet) bool {
	return pressed.ContainsAll(r.Keys...)
}

// Command returns the command the rule emits.
func (r Rule) Command() protocol.Command {
	return protocol.Normal(r.Code)
}

// motionRules is the motion rule table in priority order.
// Diagonals beat rotation, rotation beats insert, insert beats straight motion.
var motionRules = []Rule{
	{Keys: []key.ID{"w", "a"}, Code: protocol.ForwardLeft},
	{Keys: []key.ID{"w", "d"}, Code: protocol.ForwardRight},
	{Keys: []key.ID{"s", "a"}, Code: protocol.BackwardLeft},
	{Keys: []key.ID{"s", "d"}, Code: protocol.BackwardRight},
	{Keys: []key.ID{"a"}, Code: protocol.RotateLeft},
	{Keys: []key.ID{"d"}, Code: protocol.RotateRight},
	{Keys: []key.ID{"i"}, Code: protocol.EnterInsert},
	{Keys: []key.ID{"w"}, Code: protocol.Forward},
	{Keys: []key.ID{"s"}, Code: protocol.Backward},
	{Keys: []key.ID{"q"}, Code: protocol.Stop},
	{Keys: []key.ID{key.Space}, Code: protocol.SpaceAction},
}

// MotionRules returns a copy of the motion rule table in priority order.
func MotionRules() []Rule {
	out := make([]Rule, len(motionRules))
	for i, r := range motionRules {
		out[i] = Rule{Keys: append([]key.ID(nil), r.Keys...), Code: r.Code}
	}
	return out
}

// Evaluate returns the first motion rule matching pressed.
func Evaluate(pressed PressedKeySet) (Rule, bool) {
	for _, r := range motionRules {
		if r.Matches(pressed) {
			return r, true
		}
	}
	return Rule{}, false
}

// Speed keys.
const (
	SlowerKey key.ID = ","
	FasterKey key.ID = "."
)
