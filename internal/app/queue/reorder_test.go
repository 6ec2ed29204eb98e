package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mgrn/tonearm/internal/domain/track"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name            string
		queue           []track.Ref
		current         int
		oldIndex        int
		newIndex        int
		expectedQueue   []track.Ref
		expectedCurrent int
	}{
		{
			name:            "drag playing track forward",
			queue:           []track.Ref{"A", "B", "C"},
			current:         0,
			oldIndex:        0,
			newIndex:        2,
			expectedQueue:   []track.Ref{"B", "C", "A"},
			expectedCurrent: 2,
		},
		{
			name:            "drag track from behind current to front",
			queue:           []track.Ref{"A", "B", "C"},
			current:         1,
			oldIndex:        2,
			newIndex:        0,
			expectedQueue:   []track.Ref{"C", "A", "B"},
			expectedCurrent: 2,
		},
		{
			name:            "move before current shifts it left",
			queue:           []track.Ref{"A", "B", "C", "D"},
			current:         2,
			oldIndex:        0,
			newIndex:        3,
			expectedQueue:   []track.Ref{"B", "C", "D", "A"},
			expectedCurrent: 1,
		},
		{
			name:            "move after current shifts it right",
			queue:           []track.Ref{"A", "B", "C", "D"},
			current:         1,
			oldIndex:        3,
			newIndex:        0,
			expectedQueue:   []track.Ref{"D", "A", "B", "C"},
			expectedCurrent: 2,
		},
		{
			name:            "move entirely after current leaves it alone",
			queue:           []track.Ref{"A", "B", "C", "D"},
			current:         0,
			oldIndex:        2,
			newIndex:        3,
			expectedQueue:   []track.Ref{"A", "B", "D", "C"},
			expectedCurrent: 0,
		},
		{
			name:            "move entirely before current leaves it alone",
			queue:           []track.Ref{"A", "B", "C", "D"},
			current:         3,
			oldIndex:        0,
			newIndex:        1,
			expectedQueue:   []track.Ref{"B", "A", "C", "D"},
			expectedCurrent: 3,
		},
		{
			name:            "drag playing track backward",
			queue:           []track.Ref{"A", "B", "C", "D"},
			current:         3,
			oldIndex:        3,
			newIndex:        1,
			expectedQueue:   []track.Ref{"A", "D", "B", "C"},
			expectedCurrent: 1,
		},
		{
			name:            "move to the slot right before current",
			queue:           []track.Ref{"A", "B", "C"},
			current:         1,
			oldIndex:        2,
			newIndex:        1,
			expectedQueue:   []track.Ref{"A", "C", "B"},
			expectedCurrent: 2,
		},
		{
			name:            "duplicate names keep positional identity",
			queue:           []track.Ref{"A", "A", "B"},
			current:         1,
			oldIndex:        0,
			newIndex:        2,
			expectedQueue:   []track.Ref{"A", "B", "A"},
			expectedCurrent: 0,
		},
		{
			name:            "same index is a no-op",
			queue:           []track.Ref{"A", "B", "C"},
			current:         1,
			oldIndex:        1,
			newIndex:        1,
			expectedQueue:   []track.Ref{"A", "B", "C"},
			expectedCurrent: 1,
		},
		{
			name:            "out of range is a no-op",
			queue:           []track.Ref{"A", "B", "C"},
			current:         1,
			oldIndex:        1,
			newIndex:        3,
			expectedQueue:   []track.Ref{"A", "B", "C"},
			expectedCurrent: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotQueue, gotCurrent := Move(tt.queue, tt.current, tt.oldIndex, tt.newIndex)
			assert.Equal(t, tt.expectedQueue, gotQueue)
			assert.Equal(t, tt.expectedCurrent, gotCurrent)
		})
	}
}

// Every valid move preserves the queue length and element multiset, and the
// element previously at the current index is found at the remapped index
// (the moved element itself lands at newIndex).
func TestMove_PreservesElements(t *testing.T) {
	queue := []track.Ref{"A", "B", "C", "D", "E"}

	for oldIndex := 0; oldIndex < len(queue); oldIndex++ {
		for newIndex := 0; newIndex < len(queue); newIndex++ {
			if oldIndex == newIndex {
				continue
			}
			for current := 0; current < len(queue); current++ {
				gotQueue, gotCurrent := Move(queue, current, oldIndex, newIndex)

				assert.Len(t, gotQueue, len(queue))
				assert.ElementsMatch(t, queue, gotQueue)

				if current == oldIndex {
					assert.Equal(t, newIndex, gotCurrent)
				}
				assert.Equal(t, queue[current], gotQueue[gotCurrent],
					"old=%d new=%d current=%d", oldIndex, newIndex, current)
			}
		}
	}
}

func TestMove_DoesNotMutateInput(t *testing.T) {
	queue := []track.Ref{"A", "B", "C"}
	_, _ = Move(queue, 0, 0, 2)
	assert.Equal(t, []track.Ref{"A", "B", "C"}, queue)
}
