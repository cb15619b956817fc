package board

import "slices"

// moveTask resolves a drag end into a new arrangement of b.
//
// overID may name a column (drop on the column: append) or a task (drop on a
// task: insert after it when in the same column, append otherwise). An empty
// overID means the pointer was released outside every drop target. Column ids
// win over task ids when both match.
//
// It returns false, leaving b untouched, when nothing resolves or the task
// would land where it already is.
func moveTask(b Board, activeID, overID string) (Board, bool) {
	if overID == "" {
		return b, false
	}
	src := b.columnIndexOfTask(activeID)
	if src < 0 {
		return b, false
	}
	dst := b.columnIndex(overID)
	if dst < 0 {
		dst = b.columnIndexOfTask(overID)
	}
	if dst < 0 || overID == activeID {
		return b, false
	}

	from := b[src].indexOf(activeID)
	moved := b[src].Tasks[from]
	remaining := slices.Delete(slices.Clone(b[src].Tasks), from, from+1)

	if src != dst {
		b[src].Tasks = remaining
		b[dst].Tasks = append(b[dst].Tasks, moved)
		return b, true
	}

	// Same column: insert right after the task under the pointer, or at the
	// end when the drop landed on the column itself.
	to := len(remaining)
	if i := slices.IndexFunc(remaining, func(t Task) bool { return t.ID == overID }); i >= 0 {
		to = i + 1
	}
	if to == from {
		return b, false
	}
	b[src].Tasks = slices.Insert(remaining, to, moved)
	return b, true
}
