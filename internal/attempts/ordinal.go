package attempts

import "strconv"

// OrdinalSuffix returns the English suffix for n: st, nd, rd or th.
// 11, 12 and 13 (and 111, 212, ...) take th.
func OrdinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	if teen := n % 100; teen >= 11 && teen <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// Ordinal formats n with its suffix, e.g. "22nd".
func Ordinal(n int) string {
	return strconv.Itoa(n) + OrdinalSuffix(n)
}

// AttemptLabel formats the display label for the n-th attempt of a quiz.
func AttemptLabel(n int) string {
	return Ordinal(n) + " Attempt"
}
