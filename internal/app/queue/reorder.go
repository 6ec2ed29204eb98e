package queue

import (
	"slices"

	"github.com/mgrn/tonearm/internal/domain/track"
)

// Move removes the element at oldIndex, reinserts it at newIndex, and remaps
// the current playback index so that "now playing" stays attached to the same
// element. Splice semantics: remaining elements shift to fill the gap, then
// shift again to open space at the target. Works for both drag directions.
//
// Remap rules:
//   - current was the moved element: it follows the move.
//   - element moved from before current to at/after it: current shifts left.
//   - element moved from after current to at/before it: current shifts right.
//   - otherwise current is unaffected.
//
// Invalid indices (or oldIndex == newIndex) return the inputs unchanged.
func Move(queue []track.Ref, current, oldIndex, newIndex int) ([]track.Ref, int) {
	out := slices.Clone(queue)
	if oldIndex == newIndex ||
		oldIndex < 0 || oldIndex >= len(queue) ||
		newIndex < 0 || newIndex >= len(queue) {
		return out, current
	}

	moved := out[oldIndex]
	out = slices.Delete(out, oldIndex, oldIndex+1)
	out = slices.Insert(out, newIndex, moved)

	switch {
	case current == oldIndex:
		current = newIndex
	case oldIndex < current && current <= newIndex:
		current--
	case newIndex <= current && current < oldIndex:
		current++
	}

	return out, current
}
