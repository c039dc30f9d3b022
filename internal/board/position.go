package board

// NextPosition returns the ordering value for a task appended to a column
// whose current task positions are existing: one past the maximum, or 0 for
// an empty column. Gaps left by deletes or moves are never reused.
func NextPosition(existing []int) int {
	if len(existing) == 0 {
		return 0
	}
	highest := existing[0]
	for _, p := range existing[1:] {
		if p > highest {
			highest = p
		}
	}
	return highest + 1
}
