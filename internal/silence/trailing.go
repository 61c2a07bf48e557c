package silence

// Trailing reports the last interval when it ends exactly at durationMs.
// intervals must be ordered by start, as Detect returns them.
func Trailing(intervals []Interval, durationMs int64) (Interval, bool) {
	if len(intervals) == 0 {
		return Interval{}, false
	}
	last := intervals[len(intervals)-1]
	if last.EndMs != durationMs {
		return Interval{}, false
	}
	return last, true
}
