package util

// Truncate shortens s to at most n runes, marking the cut with an
// ellipsis. n smaller than 4 returns the bare cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	r := []rune(s)
	if len(r) <= n {
		return s
	}

	if n < 4 {
		return string(r[:n])
	}

	return string(r[:n-3]) + "..."
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
