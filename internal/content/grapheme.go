package content

import "github.com/rivo/uniseg"

// Caret offsets are counted in grapheme clusters so that a user-visible
// character (emoji, combining sequence) is always one step.

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// byteOffset converts a grapheme offset into a byte index of s, clamped to
// [0, len(s)].
func byteOffset(s string, k int) int {
	if k <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		if n == k {
			from, _ := g.Positions()
			return from
		}
		n++
	}
	return len(s)
}

// TextLength returns the number of grapheme clusters in s.
func TextLength(s string) int {
	return graphemeCount(s)
}

// TextSlice returns the graphemes of s in [start, end).
func TextSlice(s string, start, end int) string {
	if end < start {
		end = start
	}
	return s[byteOffset(s, start):byteOffset(s, end)]
}
