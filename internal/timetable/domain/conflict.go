package domain

import "strings"

// Overlaps reports whether two slots on the same date collide.
//
// Two slots collide when one starts strictly inside the other, or when both
// start at the same minute. Touching ranges (one ends when the next starts)
// do not collide.
func (s Slot) Overlaps(other Slot) bool {
	switch {
	case compareClock(other.StartTime, s.StartTime) > 0 && compareClock(s.EndTime, other.StartTime) > 0:
		return true
	case compareClock(s.StartTime, other.StartTime) > 0 && compareClock(other.EndTime, s.StartTime) > 0:
		return true
	default:
		return compareClock(s.StartTime, other.StartTime) == 0
	}
}

// compareClock orders two HH:MM strings chronologically. Unparseable values
// fall back to lexical order so stored data never panics the engine.
func compareClock(a, b string) int {
	am, aok := ParseClock(a)
	bm, bok := ParseClock(b)
	if aok && bok {
		switch {
		case am < bm:
			return -1
		case am > bm:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(canonicalTime(a), canonicalTime(b))
}
