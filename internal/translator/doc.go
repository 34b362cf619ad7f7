// Package translator turns key press and release events into drive commands.
//
// A Translator owns the whole session state: the set of held keys, the
// normal/insert mode machine and the speed debounce state. Every Press runs
// one evaluation cycle:
//
//   - In insert mode the pressed key is relayed (Escape leaves insert mode).
//   - In normal mode the held set is matched against the ordered motion rule
//     table, first match wins, then the speed rule is checked independently,
//     so one press may emit a motion command and a speed command.
//
// Release only removes the key from the held set. It never emits and never
// re-evaluates, so letting go of every key does not send a stop.
//
// All methods are safe for concurrent use; a single lock covers a full cycle.
package translator
