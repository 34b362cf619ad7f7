// Package mode provides the two-state mode machine used by the translator.
//
// The drive link has two modes:
//   - Normal mode: held keys are resolved into motion and speed commands
//   - Insert mode: each pressed key is relayed to the robot as a raw character
//
// # Transitions
//
//	┌─────────┐  EnterInsert ("i")  ┌─────────┐
//	│ Normal  │ ──────────────────▶ │ Insert  │
//	└─────────┘                     └─────────┘
//	     ▲                               │
//	     │      ExitInsert (Escape)      │
//	     └───────────────────────────────┘
//
// Any other (mode, trigger) pair is rejected with ErrInvalidTransition and
// leaves the machine unchanged. Change callbacks are notified after the
// transition has been applied, outside of the machine's lock.
package mode
