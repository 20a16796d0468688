package content

import (
	"strings"

	"pagedoc/internal/domain"
)

// Style selects one inline style flag of a TextSegment.
type Style int

const (
	StyleBold Style = iota
	StyleUnderline
)

func (s Style) has(seg domain.TextSegment) bool {
	if s == StyleBold {
		return seg.Bold
	}
	return seg.Underline
}

func (s Style) set(seg domain.TextSegment, on bool) domain.TextSegment {
	if s == StyleBold {
		seg.Bold = on
	} else {
		seg.Underline = on
	}
	return seg
}

// Empty is the canonical content of an empty block.
func Empty() []domain.TextSegment {
	return []domain.TextSegment{{Text: ""}}
}

// Plain wraps unstyled text as normalized content.
func Plain(text string) []domain.TextSegment {
	return []domain.TextSegment{{Text: text}}
}

// Normalize strips NUL characters, drops empty runs and coalesces adjacent
// runs with identical style. The result is never empty: an empty block is a
// single empty unstyled segment.
func Normalize(segs []domain.TextSegment) []domain.TextSegment {
	out := make([]domain.TextSegment, 0, len(segs))
	for _, s := range segs {
		if strings.IndexByte(s.Text, 0) >= 0 {
			s.Text = strings.ReplaceAll(s.Text, "\x00", "")
		}
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].SameStyle(s) {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return Empty()
	}
	return out
}

// PlainText joins the text of all segments.
func PlainText(segs []domain.TextSegment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Length is the caret length of the content in grapheme clusters.
func Length(segs []domain.TextSegment) int {
	n := 0
	for _, s := range segs {
		n += graphemeCount(s.Text)
	}
	return n
}

// IsEmpty reports whether the content has no visible text.
func IsEmpty(segs []domain.TextSegment) bool {
	for _, s := range segs {
		if s.Text != "" {
			return false
		}
	}
	return true
}

// Slice returns the normalized content in the caret range [start, end).
func Slice(segs []domain.TextSegment, start, end int) []domain.TextSegment {
	if start < 0 {
		start = 0
	}
	var out []domain.TextSegment
	pos := 0
	for _, s := range segs {
		n := graphemeCount(s.Text)
		from, to := max(start-pos, 0), min(end-pos, n)
		if from < to {
			s.Text = TextSlice(s.Text, from, to)
			out = append(out, s)
		}
		pos += n
		if pos >= end {
			break
		}
	}
	return Normalize(out)
}

// SplitAt cuts the content at caret offset k.
func SplitAt(segs []domain.TextSegment, k int) (before, after []domain.TextSegment) {
	n := Length(segs)
	return Slice(segs, 0, k), Slice(segs, k, n)
}

// Concat appends b to a and normalizes across the seam.
func Concat(a, b []domain.TextSegment) []domain.TextSegment {
	all := make([]domain.TextSegment, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return Normalize(all)
}

// DeleteRange removes the caret range [start, end).
func DeleteRange(segs []domain.TextSegment, start, end int) []domain.TextSegment {
	if end <= start {
		return Normalize(segs)
	}
	return Concat(Slice(segs, 0, start), Slice(segs, end, Length(segs)))
}

// styleAt returns the style of the character just before caret offset at,
// falling back to the first segment.
func styleAt(segs []domain.TextSegment, at int) domain.TextSegment {
	pos := 0
	for _, s := range segs {
		n := graphemeCount(s.Text)
		if at > pos && at <= pos+n {
			return domain.TextSegment{Bold: s.Bold, Underline: s.Underline}
		}
		pos += n
	}
	if len(segs) > 0 {
		return domain.TextSegment{Bold: segs[0].Bold, Underline: segs[0].Underline}
	}
	return domain.TextSegment{}
}

// InsertText inserts text at caret offset at, inheriting the style of the
// preceding character.
func InsertText(segs []domain.TextSegment, at int, text string) []domain.TextSegment {
	ins := styleAt(segs, at)
	ins.Text = text
	before, after := SplitAt(segs, at)
	return Normalize(append(append(append([]domain.TextSegment{}, before...), ins), after...))
}

// ToggleStyle flips style over [start, end): if every character in the range
// already carries the flag it is cleared, otherwise it is set on all of them.
func ToggleStyle(segs []domain.TextSegment, start, end int, style Style) []domain.TextSegment {
	n := Length(segs)
	start, end = max(start, 0), min(end, n)
	if start >= end {
		return Normalize(segs)
	}
	mid := Slice(segs, start, end)
	all := true
	for _, s := range mid {
		if !style.has(s) {
			all = false
			break
		}
	}
	for i := range mid {
		mid[i] = style.set(mid[i], !all)
	}
	out := append([]domain.TextSegment{}, Slice(segs, 0, start)...)
	out = append(out, mid...)
	out = append(out, Slice(segs, end, n)...)
	return Normalize(out)
}

// Equal compares two contents after normalization.
func Equal(a, b []domain.TextSegment) bool {
	a, b = Normalize(a), Normalize(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
